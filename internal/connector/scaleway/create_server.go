package scaleway

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/scaleway/scaleway-sdk-go/api/instance/v1"
	"github.com/scaleway/scaleway-sdk-go/scw"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

// CreateServer creates a new Scaleway server, attaches a routed IPv6 and powers it on
func (c *Connector) CreateServer(ctx context.Context, req connector.CreateRequest) (connector.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// Step 1: Find security group by name, if one is configured
	var securityGroup string
	if name := os.Getenv("SCW_DEFAULT_SECURITY_GROUP"); name != "" {
		id, err := c.findSecurityGroup(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("find security group: %w", err)
		}
		securityGroup = id
	}

	if c.dryrun {
		c.log.Info("[DRY-RUN] Would create server",
			"name", req.Name,
			"type", req.InstanceType,
			"security_group", securityGroup)
		return &Server{
			details: connector.Details{
				ID:           "dry-run-server-id",
				Name:         req.Name,
				State:        connector.StatePending,
				PublicIPs:    []string{"2001:db8::1"},
				InstanceType: req.InstanceType,
			},
			dryrun:    true,
			simulated: true,
			connector: c,
			log:       c.log,
		}, nil
	}

	if req.KeyPair != "" {
		c.log.Debug("scaleway injects project ssh keys, ignoring keypair", "keypair", req.KeyPair)
	}

	// Step 2: Create the server
	serverID, err := c.createServer(ctx, req, securityGroup)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	// Step 3: Attach routed IPv6
	if err := c.attachRoutedIPv6(ctx, serverID); err != nil {
		c.cleanupServer(ctx, serverID)
		return nil, fmt.Errorf("attach ipv6: %w", err)
	}

	// Step 4: Power on the server
	if err := c.powerOnServer(ctx, serverID); err != nil {
		c.cleanupServer(ctx, serverID)
		return nil, fmt.Errorf("power on server: %w", err)
	}

	return c.GetServerByID(ctx, serverID)
}

// findSecurityGroup looks up a security group by name
func (c *Connector) findSecurityGroup(ctx context.Context, name string) (string, error) {
	resp, err := c.instanceApi.ListSecurityGroups(&instance.ListSecurityGroupsRequest{
		Zone:    c.defaultZone,
		Project: &c.projectID,
		Name:    &name,
	}, scw.WithContext(ctx))
	if err != nil {
		return "", err
	}

	if len(resp.SecurityGroups) == 0 {
		return "", fmt.Errorf("security group '%s' not found", name)
	}

	return resp.SecurityGroups[0].ID, nil
}

func (c *Connector) createServer(ctx context.Context, req connector.CreateRequest, securityGroupID string) (string, error) {
	createReq := &instance.CreateServerRequest{
		Zone:              c.defaultZone,
		Name:              req.Name,
		Project:           &c.projectID,
		CommercialType:    req.InstanceType,
		Image:             &req.Image,
		Tags:              formatTags(req.Tags),
		DynamicIPRequired: scw.BoolPtr(false),
	}
	if securityGroupID != "" {
		createReq.SecurityGroup = &securityGroupID
	}

	c.log.Info("creating server", "name", req.Name, "type", req.InstanceType, "image", req.Image)
	resp, err := c.instanceApi.CreateServer(createReq, scw.WithContext(ctx))
	if err != nil {
		return "", err
	}

	return resp.Server.ID, nil
}

// formatTags renders tags as sorted key=value strings
func formatTags(tags map[string]string) []string {
	result := make([]string, 0, len(tags))
	for k, v := range tags {
		result = append(result, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(result)
	return result
}

// attachRoutedIPv6 creates and attaches a routed IPv6 address to the server
func (c *Connector) attachRoutedIPv6(ctx context.Context, serverID string) error {
	_, err := c.instanceApi.CreateIP(&instance.CreateIPRequest{
		Zone:    c.defaultZone,
		Project: &c.projectID,
		Type:    instance.IPTypeRoutedIPv6,
		Server:  &serverID,
	}, scw.WithContext(ctx))
	return err
}

func (c *Connector) powerOnServer(ctx context.Context, serverID string) error {
	_, err := c.instanceApi.ServerAction(&instance.ServerActionRequest{
		Zone:     c.defaultZone,
		ServerID: serverID,
		Action:   instance.ServerActionPoweron,
	}, scw.WithContext(ctx))
	return err
}

// cleanupServer deletes a server (used for error cleanup)
func (c *Connector) cleanupServer(ctx context.Context, serverID string) {
	err := c.instanceApi.DeleteServer(&instance.DeleteServerRequest{
		Zone:     c.defaultZone,
		ServerID: serverID,
	}, scw.WithContext(ctx))
	if err != nil {
		c.log.Error("failed to cleanup server", "server_id", serverID, "error", err)
	}
}
