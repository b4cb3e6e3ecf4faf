package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alex-sviridov/ec2bot/internal/bot"
)

// runInteractiveMode handles a single command and prints every reply
func runInteractiveMode(b *bot.Bot, command string, w io.Writer) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b.Handle(ctx, bot.Message{From: "cli", Type: "chat", Body: command}, writerSender(w))
}

// writerSender prints reply bodies, one per line
func writerSender(w io.Writer) bot.Sender {
	return bot.SenderFunc(func(ctx context.Context, reply bot.Reply) error {
		_, err := fmt.Fprintln(w, reply.Body)
		return err
	})
}
