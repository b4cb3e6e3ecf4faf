package hcloud

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/alex-sviridov/ec2bot/internal/config"
	"github.com/alex-sviridov/ec2bot/internal/connector"
)

type Server struct {
	id        int64
	details   connector.Details
	dryrun    bool
	simulated bool
	connector *Connector
	log       *slog.Logger
}

func newServer(server *hcloud.Server, conn *Connector, log *slog.Logger) *Server {
	d := connector.Details{
		ID:    strconv.FormatInt(server.ID, 10),
		Name:  server.Name,
		State: mapStatus(server.Status),
	}
	if server.PublicNet.IPv4.IP != nil {
		d.PublicIPs = append(d.PublicIPs, server.PublicNet.IPv4.IP.String())
	}
	if server.PublicNet.IPv6.IP != nil {
		// Hetzner provides IPv6 as /64 subnet, append 1 for the actual host address
		d.PublicIPs = append(d.PublicIPs, server.PublicNet.IPv6.IP.String()+"1")
	}
	for _, pn := range server.PrivateNet {
		if pn.IP != nil {
			d.PrivateIPs = append(d.PrivateIPs, pn.IP.String())
		}
	}
	for _, fw := range server.PublicNet.Firewalls {
		if fw == nil {
			continue
		}
		name := fw.Firewall.Name
		if name == "" {
			name = strconv.FormatInt(fw.Firewall.ID, 10)
		}
		d.SecurityGroups = append(d.SecurityGroups, name)
	}
	if server.ServerType != nil {
		d.InstanceType = server.ServerType.Name
	}
	if key, ok := server.Labels[sshKeyLabel]; ok {
		d.KeyPair = key
	}

	return &Server{
		id:        server.ID,
		details:   d,
		dryrun:    conn != nil && conn.dryrun,
		connector: conn,
		log:       log,
	}
}

func (s *Server) GetID() string {
	return strconv.FormatInt(s.id, 10)
}

func (s *Server) GetName() string {
	return s.details.Name
}

func (s *Server) Details() connector.Details {
	return s.details
}

// mapStatus converts a Hetzner server status to a connector state
func mapStatus(status hcloud.ServerStatus) connector.State {
	switch status {
	case hcloud.ServerStatusRunning:
		return connector.StateRunning
	case hcloud.ServerStatusInitializing, hcloud.ServerStatusMigrating, hcloud.ServerStatusRebuilding:
		return connector.StatePending
	case hcloud.ServerStatusStarting:
		return connector.StateStarting
	case hcloud.ServerStatusStopping, hcloud.ServerStatusDeleting:
		return connector.StateStopping
	case hcloud.ServerStatusOff:
		return connector.StateStopped
	default:
		return connector.StateUnknown
	}
}

// isResourceLockedError checks if an error is due to a locked resource
func isResourceLockedError(err error) bool {
	if err == nil {
		return false
	}
	if hcloud.IsError(err, hcloud.ErrorCodeLocked) {
		return true
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "locked")
}

// retryLocked runs op until it succeeds, fails with a non-lock error, or
// the attempts are exhausted
func retryLocked(ctx context.Context, log *slog.Logger, what string, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = config.InitialRetryDelay
	b.Multiplier = config.RetryBackoffMultiple
	b.MaxInterval = config.MaxRetryDelay

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if !isResourceLockedError(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		log.Warn("server is locked, retrying "+what,
			"attempt", attempt,
			"max_attempts", config.MaxRetryAttempts,
			"error", err)
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(config.MaxRetryAttempts))
	return err
}

func (s *Server) fetch(ctx context.Context) (*hcloud.Server, error) {
	server, _, err := s.connector.client.Server.GetByID(ctx, s.id)
	if err != nil {
		return nil, err
	}
	if server == nil {
		return nil, connector.NotFound(s.GetID())
	}
	return server, nil
}

func (s *Server) GetState(ctx context.Context) (connector.State, error) {
	if s.simulated {
		return connector.StateRunning, nil
	}
	server, err := s.fetch(ctx)
	if err != nil {
		return connector.StateUnknown, err
	}
	return mapStatus(server.Status), nil
}

func (s *Server) Reboot(ctx context.Context) error {
	if s.dryrun {
		s.log.Info("[DRY-RUN] Would reboot server", "server_id", s.id)
		return nil
	}
	s.log.Info("rebooting server", "server_id", s.id, "server_name", s.details.Name)

	server, err := s.fetch(ctx)
	if err != nil {
		return fmt.Errorf("get server: %w", err)
	}
	return retryLocked(ctx, s.log, "reboot", func() error {
		_, _, err := s.connector.client.Server.Reboot(ctx, server)
		return err
	})
}

func (s *Server) Delete(ctx context.Context) error {
	if s.dryrun {
		s.log.Info("[DRY-RUN] Would delete server", "server_id", s.id)
		return nil
	}
	s.log.Info("deleting server", "server_id", s.id, "server_name", s.details.Name)

	server, err := s.fetch(ctx)
	if err != nil {
		return fmt.Errorf("get server: %w", err)
	}

	// Shutdown if running
	if server.Status == hcloud.ServerStatusRunning {
		s.log.Info("shutting down server", "server_id", s.id)
		err := retryLocked(ctx, s.log, "shutdown", func() error {
			_, _, err := s.connector.client.Server.Shutdown(ctx, server)
			return err
		})
		if err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}

		s.log.Info("waiting for server to stop", "server_id", s.id)
		if err := s.waitForStatus(ctx, hcloud.ServerStatusOff, 2*time.Minute); err != nil {
			return err
		}
		s.log.Info("server stopped", "server_id", s.id)
	} else {
		s.log.Info("server already stopped", "server_id", s.id, "status", server.Status)
	}

	s.log.Info("deleting server from hetzner cloud", "server_id", s.id)
	err = retryLocked(ctx, s.log, "delete", func() error {
		_, _, err := s.connector.client.Server.DeleteWithResult(ctx, server)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete server: %w", err)
	}

	s.log.Info("server deleted successfully", "server_id", s.id, "server_name", s.details.Name)
	return nil
}

// waitForStatus waits for the server to reach the expected status
func (s *Server) waitForStatus(ctx context.Context, expectedStatus hcloud.ServerStatus, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		server, err := s.fetch(ctx)
		if err != nil {
			return fmt.Errorf("get server state: %w", err)
		}
		if server.Status == expectedStatus {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for server to reach status %s", expectedStatus)
		case <-ticker.C:
		}
	}
}

func (s *Server) String() string {
	ip := ""
	if len(s.details.PublicIPs) > 0 {
		ip = s.details.PublicIPs[0]
	}
	return fmt.Sprintf("%v [%v]", s.details.Name, ip)
}

// parseServerID converts string ID to int64
func parseServerID(id string) (int64, error) {
	idInt, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid server ID: %w", err)
	}
	return idInt, nil
}

var _ connector.Server = (*Server)(nil)
