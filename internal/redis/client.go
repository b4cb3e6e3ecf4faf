package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alex-sviridov/ec2bot/internal/bot"
)

// ErrQueueEmpty is returned by PopMessage when the blocking pop timed out
var ErrQueueEmpty = errors.New("no message available in queue")

// ClientInterface is the chat transport used by service mode
type ClientInterface interface {
	PopMessage(ctx context.Context, queueKey string, timeout time.Duration) (bot.Message, error)
	PushReply(ctx context.Context, queueKey string, reply bot.Reply) error
	Close() error
}

// redisOperations is the subset of redis.Client the transport uses
type redisOperations interface {
	BLPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Client moves chat messages and replies through Redis lists
type Client struct {
	ops redisOperations
}

// Config contains Redis connection settings
type Config struct {
	Address  string
	Password string
	DB       int
}

// options turns Config into go-redis options.
// Address can be either a Redis URL (redis://host:port) or just host:port.
func (config Config) options() *redis.Options {
	opt, err := redis.ParseURL(config.Address)
	if err != nil {
		return &redis.Options{
			Addr:     config.Address,
			Password: config.Password,
			DB:       config.DB,
		}
	}
	// URL settings, overridden by explicit config
	if config.Password != "" {
		opt.Password = config.Password
	}
	if config.DB != 0 {
		opt.DB = config.DB
	}
	return opt
}

// NewClient creates a new Redis client and checks the connection
func NewClient(ctx context.Context, config Config) (*Client, error) {
	rdb := redis.NewClient(config.options())

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &Client{ops: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.ops.Close()
}

// PopMessage pops a chat message from the queue (blocking)
func (c *Client) PopMessage(ctx context.Context, queueKey string, timeout time.Duration) (bot.Message, error) {
	var msg bot.Message

	result, err := c.ops.BLPop(ctx, timeout, queueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return msg, ErrQueueEmpty
		}
		return msg, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return msg, fmt.Errorf("unexpected response from Redis")
	}

	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return msg, fmt.Errorf("failed to unmarshal message: %w", err)
	}
	return msg, nil
}

// PushReply appends a reply to the outbound queue
func (c *Client) PushReply(ctx context.Context, queueKey string, reply bot.Reply) error {
	data, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply: %w", err)
	}

	if err := c.ops.RPush(ctx, queueKey, data).Err(); err != nil {
		return fmt.Errorf("failed to push reply: %w", err)
	}
	return nil
}

// Sender adapts the client to bot.Sender, pushing every reply to one queue
type Sender struct {
	Client   ClientInterface
	QueueKey string
}

func (s Sender) Send(ctx context.Context, reply bot.Reply) error {
	return s.Client.PushReply(ctx, s.QueueKey, reply)
}

var _ bot.Sender = Sender{}
