package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/alex-sviridov/ec2bot/internal/bot"
	"github.com/alex-sviridov/ec2bot/internal/config"
	"github.com/alex-sviridov/ec2bot/internal/redis"
)

const popErrorDelay = time.Second

// runRedisMode handles service mode with Redis queues
func runRedisMode(log *slog.Logger, b *bot.Bot, connectionString string) {
	log.Info("running in Redis mode", "connection", connectionString)

	redisClient, err := redis.NewClient(context.Background(), redis.Config{
		Address:  connectionString,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if err != nil {
		log.Error("failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	log.Info("connected to Redis, waiting for chat commands", "queue", config.InboundQueueKey)
	runQueueProcessor(log, b, redisClient)
}

// runQueueProcessor pops chat messages until a shutdown signal arrives
func runQueueProcessor(log *slog.Logger, b *bot.Bot, redisClient redis.ClientInterface) {
	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			log.Info("shutdown signal received, stopping gracefully")
			cancel()
		case <-ctx.Done():
		}
	}()

	sender := redis.Sender{Client: redisClient, QueueKey: config.OutboundQueueKey}

	// Commands keep running after shutdown starts so their replies are delivered
	work := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	processQueue(ctx, &wg, log, redisClient, config.InboundQueueKey, config.QueuePopTimeout, func(msg bot.Message) {
		b.Handle(work, msg, sender)
	})

	log.Info("waiting for active commands to complete")
	wg.Wait()
	log.Info("all commands completed, shutting down")
}

// processQueue handles messages from a Redis queue, each in its own goroutine,
// until ctx is cancelled
func processQueue(ctx context.Context, wg *sync.WaitGroup, log *slog.Logger, redisClient redis.ClientInterface, queueKey string, timeout time.Duration, handler func(bot.Message)) {
	for {
		// Check if shutdown was requested
		select {
		case <-ctx.Done():
			log.Info("queue processor stopping", "queue", queueKey)
			return
		default:
		}

		// Pop message from Redis queue (blocking)
		msg, err := redisClient.PopMessage(ctx, queueKey, timeout)
		if err != nil {
			if errors.Is(err, redis.ErrQueueEmpty) || ctx.Err() != nil {
				continue
			}
			log.Warn("failed to pop message from queue", "queue", queueKey, "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(popErrorDelay):
			}
			continue
		}

		log.Info("received chat message", "id", msg.ID, "from", msg.From, "body_length", len(msg.Body))

		wg.Add(1)
		go func(msg bot.Message) {
			defer wg.Done()
			handler(msg)
		}(msg)
	}
}
