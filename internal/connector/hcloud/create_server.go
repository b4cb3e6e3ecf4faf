package hcloud

import (
	"context"
	"fmt"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

const sshKeyLabel = "ssh-key"

// CreateServer creates a new Hetzner Cloud server from a connector request.
// The image, server type and SSH key are resolved by name.
func (c *Connector) CreateServer(ctx context.Context, req connector.CreateRequest) (connector.Server, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	hcloudConfig := GetHCloudConfigFromEnv()

	if c.dryrun {
		c.log.Info("[DRY-RUN] Would create server",
			"name", req.Name,
			"type", req.InstanceType,
			"image", req.Image,
			"firewall_id", hcloudConfig.FirewallID,
			"location", hcloudConfig.Location)
		return &Server{
			id: 999999,
			details: connector.Details{
				ID:           "999999",
				Name:         req.Name,
				State:        connector.StatePending,
				PublicIPs:    []string{"2001:db8::1"},
				KeyPair:      req.KeyPair,
				InstanceType: req.InstanceType,
			},
			dryrun:    true,
			simulated: true,
			connector: c,
			log:       c.log,
		}, nil
	}

	if req.VolumeSizeGB > 0 {
		c.log.Debug("volume size is fixed by the server type, ignoring", "volume_size", req.VolumeSizeGB)
	}

	opts, err := c.buildCreateOpts(ctx, req, hcloudConfig)
	if err != nil {
		return nil, err
	}

	c.log.Info("creating server",
		"name", req.Name,
		"type", req.InstanceType,
		"image", req.Image,
		"location", hcloudConfig.Location)

	result, _, err := c.client.Server.Create(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}

	c.log.Info("server created successfully",
		"server_id", result.Server.ID,
		"server_name", result.Server.Name)

	server, err := c.GetServerByID(ctx, fmt.Sprint(result.Server.ID))
	if err != nil {
		c.cleanupServer(ctx, result.Server)
		return nil, fmt.Errorf("get server: %w", err)
	}
	return server, nil
}

func (c *Connector) buildCreateOpts(ctx context.Context, req connector.CreateRequest, hcloudConfig HCloudConfig) (hcloud.ServerCreateOpts, error) {
	labels := make(map[string]string, len(req.Tags)+1)
	for k, v := range req.Tags {
		labels[k] = v
	}

	opts := hcloud.ServerCreateOpts{
		Name:             req.Name,
		ServerType:       &hcloud.ServerType{Name: req.InstanceType},
		Image:            &hcloud.Image{Name: req.Image},
		StartAfterCreate: hcloud.Ptr(true),
		Labels:           labels,
	}
	if hcloudConfig.Location != "" {
		opts.Location = &hcloud.Location{Name: hcloudConfig.Location}
	}

	if hcloudConfig.FirewallID != "" {
		firewall, _, err := c.client.Firewall.Get(ctx, hcloudConfig.FirewallID)
		if err != nil {
			return opts, fmt.Errorf("get firewall: %w", err)
		}
		if firewall == nil {
			return opts, fmt.Errorf("firewall '%s' not found", hcloudConfig.FirewallID)
		}
		opts.Firewalls = []*hcloud.ServerCreateFirewall{{Firewall: *firewall}}
	}

	if req.KeyPair != "" {
		sshKey, _, err := c.client.SSHKey.Get(ctx, req.KeyPair)
		if err != nil {
			return opts, fmt.Errorf("get ssh key: %w", err)
		}
		if sshKey == nil {
			return opts, fmt.Errorf("ssh key '%s' not found", req.KeyPair)
		}
		opts.SSHKeys = []*hcloud.SSHKey{sshKey}
		labels[sshKeyLabel] = req.KeyPair
	}
	return opts, nil
}

// cleanupServer deletes a server (used for error cleanup)
func (c *Connector) cleanupServer(ctx context.Context, server *hcloud.Server) {
	if _, _, err := c.client.Server.DeleteWithResult(ctx, server); err != nil {
		c.log.Error("failed to cleanup server", "server_id", server.ID, "error", err)
	}
}
