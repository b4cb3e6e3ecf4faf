package hcloud

import (
	"context"
	"testing"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

func TestConnector_CreateServer_DryRun(t *testing.T) {
	t.Setenv("HCLOUD_TOKEN", "test-token")
	t.Setenv("HCLOUD_DEFAULT_LOCATION", "fsn1")

	conn, err := NewConnector(testLog, true)
	if err != nil {
		t.Fatalf("failed to create connector: %v", err)
	}

	t.Run("dry-run mode returns mock server", func(t *testing.T) {
		server, err := conn.CreateServer(context.Background(), connector.CreateRequest{
			Name:         "lab-1",
			Image:        "ubuntu-24.04",
			InstanceType: "cx22",
			KeyPair:      "ops",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if server.GetID() != "999999" {
			t.Errorf("expected mock server ID '999999', got '%s'", server.GetID())
		}
		if server.GetName() != "lab-1" {
			t.Errorf("expected name lab-1, got %s", server.GetName())
		}
		state, err := server.GetState(context.Background())
		if err != nil || state != connector.StateRunning {
			t.Errorf("GetState() = %q, %v", state, err)
		}
		if err := server.Delete(context.Background()); err != nil {
			t.Errorf("dry-run Delete() = %v", err)
		}
	})

	t.Run("dry-run mode with invalid request", func(t *testing.T) {
		server, err := conn.CreateServer(context.Background(), connector.CreateRequest{Name: "lab-1"})
		if err == nil {
			t.Error("expected error for invalid request, got nil")
		}
		if server != nil {
			t.Error("expected nil server on error")
		}
	})
}

func TestGetHCloudConfigFromEnv(t *testing.T) {
	t.Setenv("HCLOUD_DEFAULT_LOCATION", "nbg1")
	t.Setenv("HCLOUD_DEFAULT_FIREWALL", "fw-web")

	cfg := GetHCloudConfigFromEnv()
	if cfg.Location != "nbg1" || cfg.FirewallID != "fw-web" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
