package scaleway

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/alex-sviridov/ec2bot/internal/connector"
	"github.com/alex-sviridov/ec2bot/internal/logger"
)

func setScalewayEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SCW_ACCESS_KEY", "SCWXXXXXXXXXXXXXXXXX")
	t.Setenv("SCW_SECRET_KEY", "11111111-1111-1111-1111-111111111111")
	t.Setenv("SCW_ORGANIZATION_ID", "22222222-2222-2222-2222-222222222222")
	t.Setenv("SCW_PROJECT_ID", "33333333-3333-3333-3333-333333333333")
	t.Setenv("SCW_DEFAULT_ZONE", "fr-par-1")
}

func TestNewConnector(t *testing.T) {
	setScalewayEnv(t)

	c, err := NewConnector(logger.Discard(), true)
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	if c.defaultZone != "fr-par-1" {
		t.Errorf("defaultZone = %v, want fr-par-1", c.defaultZone)
	}
	if !c.dryrun {
		t.Error("dryrun should be set")
	}
}

func TestNewConnector_MissingEnv(t *testing.T) {
	setScalewayEnv(t)
	os.Unsetenv("SCW_PROJECT_ID")
	os.Unsetenv("SCW_DEFAULT_ZONE")

	_, err := NewConnector(logger.Discard(), false)
	if err == nil {
		t.Fatal("NewConnector() expected error for missing variables")
	}
	for _, name := range []string{"SCW_PROJECT_ID", "SCW_DEFAULT_ZONE"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q should mention %s", err, name)
		}
	}
}

func TestCreateServer_DryRun(t *testing.T) {
	setScalewayEnv(t)
	os.Unsetenv("SCW_DEFAULT_SECURITY_GROUP")

	c, err := NewConnector(logger.Discard(), true)
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}

	server, err := c.CreateServer(context.Background(), connector.CreateRequest{
		Name:         "web1",
		Image:        "ubuntu_jammy",
		InstanceType: "DEV1-S",
	})
	if err != nil {
		t.Fatalf("CreateServer() error = %v", err)
	}
	if server.GetName() != "web1" {
		t.Errorf("GetName() = %v, want web1", server.GetName())
	}
	if got := server.Details().InstanceType; got != "DEV1-S" {
		t.Errorf("InstanceType = %v, want DEV1-S", got)
	}
}

func TestCreateServer_Invalid(t *testing.T) {
	setScalewayEnv(t)

	c, err := NewConnector(logger.Discard(), true)
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	if _, err := c.CreateServer(context.Background(), connector.CreateRequest{Name: "web1"}); err == nil {
		t.Error("CreateServer() expected validation error")
	}
}

func TestFormatTags(t *testing.T) {
	got := formatTags(map[string]string{"team": "systems", "Name": "web1"})
	want := []string{"Name=web1", "team=systems"}

	if len(got) != len(want) {
		t.Fatalf("formatTags() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("formatTags()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
