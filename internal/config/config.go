package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names
const (
	EnvProvider       = "EC2BOT_PROVIDER"
	EnvAccessID       = "EC2BOT_ACCESS_ID"
	EnvSecretKey      = "EC2BOT_SECRET_KEY"
	EnvDatacenter     = "EC2BOT_DATACENTER"
	EnvAMI            = "EC2BOT_AMI"
	EnvKeyPair        = "EC2BOT_KEYPAIR"
	EnvSubnetID       = "EC2BOT_SUBNET_ID"
	EnvRouteTableID   = "EC2BOT_ROUTE_TABLE_ID"
	EnvVolumeSize     = "EC2BOT_VOLUME_SIZE"
	EnvInstanceType   = "EC2BOT_INSTANCE_TYPE"
	EnvPuppet         = "EC2BOT_PUPPET"
	EnvCreateWait     = "EC2BOT_CREATE_WAIT"
	EnvCommandTimeout = "EC2BOT_COMMAND_TIMEOUT"
	EnvStatusFeedURL  = "EC2BOT_STATUS_FEED_URL"
	EnvStatusItems    = "EC2BOT_STATUS_ITEMS"
)

const defaultDatacenter = "us-east-1"

// Config holds the bot configuration. It is loaded once at startup and
// must not be modified afterwards.
type Config struct {
	Provider     string
	AccessID     string
	SecretKey    string
	Datacenter   string
	AMI          string
	KeyPair      string
	SubnetID     string
	RouteTableID string
	VolumeSize   int
	InstanceType string
	Puppet       bool

	CreateWait     time.Duration
	CommandTimeout time.Duration
	StatusFeedURL  string
	StatusItems    int
}

// Default returns a Config populated with default values only
func Default() Config {
	return Config{
		Provider:       ProviderEC2,
		Datacenter:     defaultDatacenter,
		VolumeSize:     DefaultVolumeSize,
		CreateWait:     DefaultCreateWait,
		CommandTimeout: DefaultCommandLimit,
		StatusFeedURL:  DefaultStatusFeedURL,
		StatusItems:    DefaultStatusItems,
	}
}

// LoadFromEnv reads the configuration from environment variables.
// Values in the given .env files are loaded first; missing files are ignored.
func LoadFromEnv(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg := Default()
	var invalid []string

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				invalid = append(invalid, key)
				return
			}
			*dst = n
		}
	}
	setDuration := func(key string, dst *time.Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d < 0 {
				invalid = append(invalid, key)
				return
			}
			*dst = d
		}
	}

	setString(EnvProvider, &cfg.Provider)
	setString(EnvAccessID, &cfg.AccessID)
	setString(EnvSecretKey, &cfg.SecretKey)
	setString(EnvDatacenter, &cfg.Datacenter)
	setString(EnvAMI, &cfg.AMI)
	setString(EnvKeyPair, &cfg.KeyPair)
	setString(EnvSubnetID, &cfg.SubnetID)
	setString(EnvRouteTableID, &cfg.RouteTableID)
	setString(EnvInstanceType, &cfg.InstanceType)
	setString(EnvStatusFeedURL, &cfg.StatusFeedURL)
	setInt(EnvVolumeSize, &cfg.VolumeSize)
	setInt(EnvStatusItems, &cfg.StatusItems)
	setDuration(EnvCreateWait, &cfg.CreateWait)
	setDuration(EnvCommandTimeout, &cfg.CommandTimeout)

	if v := os.Getenv(EnvPuppet); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			invalid = append(invalid, EnvPuppet)
		} else {
			cfg.Puppet = b
		}
	}

	switch cfg.Provider {
	case ProviderEC2, ProviderHCloud, ProviderScaleway:
	default:
		invalid = append(invalid, EnvProvider)
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variables: %v", invalid)
	}
	return cfg, nil
}

// Template renders every configuration key with its default value in .env syntax
func Template() (string, error) {
	d := Default()
	return godotenv.Marshal(map[string]string{
		EnvProvider:       d.Provider,
		EnvAccessID:       "",
		EnvSecretKey:      "",
		EnvDatacenter:     d.Datacenter,
		EnvAMI:            "",
		EnvKeyPair:        "",
		EnvSubnetID:       "",
		EnvRouteTableID:   "",
		EnvVolumeSize:     strconv.Itoa(d.VolumeSize),
		EnvInstanceType:   "",
		EnvPuppet:         strconv.FormatBool(d.Puppet),
		EnvCreateWait:     d.CreateWait.String(),
		EnvCommandTimeout: d.CommandTimeout.String(),
		EnvStatusFeedURL:  d.StatusFeedURL,
		EnvStatusItems:    strconv.Itoa(d.StatusItems),
	})
}
