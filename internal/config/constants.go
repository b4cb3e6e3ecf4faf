package config

import "time"

// Redis queue keys
const (
	InboundQueueKey  = "ec2bot:chat:inbound"
	OutboundQueueKey = "ec2bot:chat:outbound"
	QueuePopTimeout  = 30 * time.Second
)

// Providers
const (
	ProviderEC2      = "ec2"
	ProviderHCloud   = "hcloud"
	ProviderScaleway = "scaleway"
)

// Retry settings for locked cloud resources
const (
	MaxRetryAttempts     = 5
	InitialRetryDelay    = 5 * time.Second
	MaxRetryDelay        = 60 * time.Second
	RetryBackoffMultiple = 2
)

// Create settings
const (
	DefaultVolumeSize   = 15
	DefaultCreateWait   = 30 * time.Second
	CreatePollInterval  = 5 * time.Second
	DefaultCommandLimit = 10 * time.Minute
)

// Service status feed
const (
	DefaultStatusFeedURL = "https://status.aws.amazon.com/rss"
	DefaultStatusService = "ec2"
	DefaultStatusItems   = 5
)
