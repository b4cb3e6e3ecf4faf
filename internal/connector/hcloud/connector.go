package hcloud

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

type Connector struct {
	client *hcloud.Client
	dryrun bool
	log    *slog.Logger
}

func NewConnector(log *slog.Logger, dryrun bool, opts ...hcloud.ClientOption) (*Connector, error) {
	token := os.Getenv("HCLOUD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("missing required environment variable: HCLOUD_TOKEN")
	}

	opts = append([]hcloud.ClientOption{hcloud.WithToken(token)}, opts...)
	return &Connector{
		client: hcloud.NewClient(opts...),
		dryrun: dryrun,
		log:    log,
	}, nil
}

func (c *Connector) ListServers(ctx context.Context) (servers []connector.Server, err error) {
	hcloudServers, err := c.client.Server.All(ctx)
	if err != nil {
		return nil, err
	}
	for _, server := range hcloudServers {
		servers = append(servers, newServer(server, c, c.log))
	}
	return servers, nil
}

func (c *Connector) GetServerByID(ctx context.Context, id string) (connector.Server, error) {
	idInt, err := parseServerID(id)
	if err != nil {
		return nil, err
	}

	server, _, err := c.client.Server.GetByID(ctx, idInt)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, connector.NotFound(id)
	}
	return newServer(server, c, c.log), nil
}

func (c *Connector) GetServerByName(ctx context.Context, name string) (connector.Server, error) {
	server, _, err := c.client.Server.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, connector.NotFound(name)
	}
	return newServer(server, c, c.log), nil
}

var _ connector.Connector = (*Connector)(nil)
