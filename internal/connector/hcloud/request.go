package hcloud

import (
	"os"
)

// HCloudConfig holds Hetzner defaults that have no place in a create command
type HCloudConfig struct {
	Location   string
	FirewallID string
}

// GetHCloudConfigFromEnv reads optional Hetzner Cloud defaults from environment
func GetHCloudConfigFromEnv() HCloudConfig {
	return HCloudConfig{
		Location:   os.Getenv("HCLOUD_DEFAULT_LOCATION"),
		FirewallID: os.Getenv("HCLOUD_DEFAULT_FIREWALL"),
	}
}
