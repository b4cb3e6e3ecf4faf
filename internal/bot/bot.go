// Package bot implements the "aws" chat commands on top of a connector.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-shellwords"

	"github.com/alex-sviridov/ec2bot/internal/config"
	"github.com/alex-sviridov/ec2bot/internal/connector"
	"github.com/alex-sviridov/ec2bot/internal/status"
)

// FeedFetcher is the part of status.Fetcher the status command needs
type FeedFetcher interface {
	FeedURL(service, region string) string
	Latest(ctx context.Context, service, region string, n int) (*status.Feed, error)
}

type command struct {
	usage string
	help  string
	run   func(ctx context.Context, r *responder, args []string)
}

// Bot dispatches chat messages to commands
type Bot struct {
	log          *slog.Logger
	conn         connector.Connector
	cfg          config.Config
	feeds        FeedFetcher
	pollInterval time.Duration
	commands     map[string]command
}

// New creates a Bot. cfg is read-only after this call.
func New(log *slog.Logger, conn connector.Connector, cfg config.Config, feeds FeedFetcher) *Bot {
	b := &Bot{
		log:          log,
		conn:         conn,
		cfg:          cfg,
		feeds:        feeds,
		pollInterval: config.CreatePollInterval,
	}
	b.commands = map[string]command{
		"info": {
			usage: "info <name>",
			help:  "get details of a virtual machine",
			run:   b.info,
		},
		"reboot": {
			usage: "reboot <name>",
			help:  "reboot a virtual machine",
			run:   b.reboot,
		},
		"terminate": {
			usage: "terminate <name>",
			help:  "terminate/destroy a virtual machine",
			run:   b.terminate,
		},
		"create": {
			usage: "create [--ami=] [--size=] [--subnet_id=] [--route_table_id=] [--instance_type=] [--tags=k=v,k=v] [--keypair=] [--puppet] <name>",
			help:  "create a virtual machine from an ami template",
			run:   b.create,
		},
		"list": {
			usage: "list",
			help:  "list virtual machines",
			run:   b.list,
		},
		"status": {
			usage: "status [service] [region]",
			help:  "show recent AWS service health events",
			run:   b.status,
		},
		"help": {
			usage: "help",
			help:  "show this message",
			run:   b.help,
		},
	}
	return b
}

// WithPollInterval sets how often create checks the new instance (useful for testing)
func (b *Bot) WithPollInterval(interval time.Duration) *Bot {
	b.pollInterval = interval
	return b
}

// Handle runs one chat message to completion, sending every reply through out
func (b *Bot) Handle(ctx context.Context, msg Message, out Sender) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	r := &responder{
		ctx: ctx,
		msg: msg,
		out: out,
		log: b.log.With("request_id", msg.ID, "from", msg.From),
	}

	args, err := shellwords.Parse(msg.Body)
	if err != nil {
		r.log.Error("failed to split message body", "error", err)
		r.sendf("unable to parse command: %v", err)
		return
	}
	args = stripPrefix(args)

	if len(args) == 0 {
		r.send(b.usage())
		return
	}

	name := strings.ToLower(args[0])
	cmd, ok := b.commands[name]
	if !ok {
		r.log.Info("unknown command", "command", name)
		r.sendf("unknown command: %s\n%s", name, b.usage())
		return
	}

	r.log = r.log.With("command", name)
	r.log.Info("handling command", "args", args[1:])

	if b.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.CommandTimeout)
		defer cancel()
	}

	start := time.Now()
	cmd.run(ctx, r, args[1:])
	r.log.Info("command completed", "duration", time.Since(start))
}

// stripPrefix drops the leading "!aws" or "aws" word
func stripPrefix(args []string) []string {
	if len(args) > 0 && (args[0] == "!aws" || strings.EqualFold(args[0], "aws")) {
		return args[1:]
	}
	return args
}

func (b *Bot) usage() string {
	names := make([]string, 0, len(b.commands))
	for name := range b.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("usage: aws <command> [args]\ncommands: %s", strings.Join(names, ", "))
}

// responder sends replies addressed to the sender of msg. It keeps the
// handler's parent context so replies still go out after a command timeout.
type responder struct {
	ctx context.Context
	msg Message
	out Sender
	log *slog.Logger
}

func (r *responder) send(body string) {
	reply := Reply{
		InReplyTo: r.msg.ID,
		To:        r.msg.From,
		Type:      r.msg.Type,
		Body:      body,
	}
	if err := r.out.Send(r.ctx, reply); err != nil {
		r.log.Error("failed to send reply", "error", err)
	}
}

func (r *responder) sendf(format string, args ...any) {
	r.send(fmt.Sprintf(format, args...))
}
