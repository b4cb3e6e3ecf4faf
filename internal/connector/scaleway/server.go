package scaleway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/scaleway/scaleway-sdk-go/api/instance/v1"
	"github.com/scaleway/scaleway-sdk-go/scw"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

type Server struct {
	details   connector.Details
	dryrun    bool
	simulated bool
	connector *Connector
	log       *slog.Logger
}

func newServer(server *instance.Server, conn *Connector, log *slog.Logger) *Server {
	d := connector.Details{
		ID:           server.ID,
		Name:         server.Name,
		State:        mapState(server.State),
		InstanceType: server.CommercialType,
	}
	for _, ip := range server.PublicIPs {
		if ip != nil && ip.Address != nil {
			d.PublicIPs = append(d.PublicIPs, ip.Address.String())
		}
	}
	if server.SecurityGroup != nil {
		d.SecurityGroups = append(d.SecurityGroups, server.SecurityGroup.Name)
	}
	return &Server{
		details:   d,
		dryrun:    conn != nil && conn.dryrun,
		connector: conn,
		log:       log,
	}
}

func (s *Server) GetID() string {
	return s.details.ID
}

func (s *Server) GetName() string {
	return s.details.Name
}

func (s *Server) Details() connector.Details {
	return s.details
}

// mapState converts a Scaleway server state to a connector state
func mapState(state instance.ServerState) connector.State {
	switch state {
	case instance.ServerStateRunning:
		return connector.StateRunning
	case instance.ServerStateStarting:
		return connector.StateStarting
	case instance.ServerStateStopping:
		return connector.StateStopping
	case instance.ServerStateStopped, instance.ServerStateStoppedInPlace:
		return connector.StateStopped
	default:
		return connector.StateUnknown
	}
}

func (s *Server) GetState(ctx context.Context) (connector.State, error) {
	if s.simulated {
		return connector.StateRunning, nil
	}
	resp, err := s.connector.instanceApi.GetServer(&instance.GetServerRequest{
		Zone:     s.connector.defaultZone,
		ServerID: s.details.ID,
	}, scw.WithContext(ctx))
	if err != nil {
		return connector.StateUnknown, err
	}
	return mapState(resp.Server.State), nil
}

func (s *Server) action(ctx context.Context, action instance.ServerAction) error {
	_, err := s.connector.instanceApi.ServerAction(&instance.ServerActionRequest{
		Zone:     s.connector.defaultZone,
		ServerID: s.details.ID,
		Action:   action,
	}, scw.WithContext(ctx))
	return err
}

func (s *Server) Reboot(ctx context.Context) error {
	if s.dryrun {
		s.log.Info("[DRY-RUN] Would reboot server", "server_id", s.details.ID)
		return nil
	}
	s.log.Info("rebooting server", "server_id", s.details.ID, "server_name", s.details.Name)
	if err := s.action(ctx, instance.ServerActionReboot); err != nil {
		return fmt.Errorf("reboot server: %w", err)
	}
	return nil
}

func (s *Server) Delete(ctx context.Context) error {
	if s.dryrun {
		s.log.Info("[DRY-RUN] Would delete server", "server_id", s.details.ID)
		return nil
	}
	s.log.Info("deleting server", "server_id", s.details.ID, "server_name", s.details.Name)

	state, err := s.GetState(ctx)
	if err != nil {
		return fmt.Errorf("get server state: %w", err)
	}

	if state != connector.StateStopped {
		s.log.Info("powering off server", "server_id", s.details.ID)
		if err := s.action(ctx, instance.ServerActionPoweroff); err != nil {
			return fmt.Errorf("power off server: %w", err)
		}

		s.log.Info("waiting for server to stop", "server_id", s.details.ID)
		if err := s.waitForState(ctx, connector.StateStopped, 2*time.Minute); err != nil {
			return err
		}
	}

	s.log.Info("deleting server from scaleway", "server_id", s.details.ID)
	err = s.connector.instanceApi.DeleteServer(&instance.DeleteServerRequest{
		Zone:     s.connector.defaultZone,
		ServerID: s.details.ID,
	}, scw.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete server: %w", err)
	}

	s.log.Info("server deleted successfully", "server_id", s.details.ID, "server_name", s.details.Name)
	return nil
}

func (s *Server) waitForState(ctx context.Context, want connector.State, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		state, err := s.GetState(ctx)
		if err != nil {
			return fmt.Errorf("get server state: %w", err)
		}
		if state == want {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for server to reach state %s", want)
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

var _ connector.Server = (*Server)(nil)
