package main

import (
	"fmt"
	"log/slog"

	"github.com/alex-sviridov/ec2bot/internal/config"
	"github.com/alex-sviridov/ec2bot/internal/connector"
	"github.com/alex-sviridov/ec2bot/internal/connector/ec2"
	"github.com/alex-sviridov/ec2bot/internal/connector/hcloud"
	"github.com/alex-sviridov/ec2bot/internal/connector/scaleway"
)

// newConnector builds the connector selected by cfg.Provider
func newConnector(log *slog.Logger, cfg config.Config, dryrun bool) (connector.Connector, error) {
	log = log.With("provider", cfg.Provider)

	var (
		conn connector.Connector
		err  error
	)
	switch cfg.Provider {
	case config.ProviderEC2, "":
		conn, err = ec2.NewConnector(log, ec2.Options{
			AccessID:  cfg.AccessID,
			SecretKey: cfg.SecretKey,
			Region:    cfg.Datacenter,
		}, dryrun)
	case config.ProviderHCloud:
		conn, err = hcloud.NewConnector(log, dryrun)
	case config.ProviderScaleway:
		conn, err = scaleway.NewConnector(log, dryrun)
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return conn, nil
}
