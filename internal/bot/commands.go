package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alex-sviridov/ec2bot/internal/config"
	"github.com/alex-sviridov/ec2bot/internal/connector"
)

const unableToComplete = "Unable to complete request."

// lookup finds a server by name and reports a miss or failure to the chat.
// It returns nil when a reply has already been sent.
func (b *Bot) lookup(ctx context.Context, r *responder, name string) connector.Server {
	server, err := b.conn.GetServerByName(ctx, name)
	if errors.Is(err, connector.ErrServerNotFound) {
		r.sendf("%s: instance named %s not found.", name, name)
		return nil
	}
	if err != nil {
		r.log.Error("failed to look up instance", "name", name, "error", err)
		r.sendf("%s: %s", name, unableToComplete)
		return nil
	}
	return server
}

func (b *Bot) info(ctx context.Context, r *responder, args []string) {
	if len(args) != 1 {
		r.send("usage: aws info <name>")
		return
	}
	name := args[0]

	server := b.lookup(ctx, r, name)
	if server == nil {
		return
	}
	r.sendf("%s: %s", name, FormatDetails(server.Details()))
}

func (b *Bot) reboot(ctx context.Context, r *responder, args []string) {
	b.nodeAction(ctx, r, args, "reboot", "Successfully sent request to reboot.",
		func(ctx context.Context, s connector.Server) error { return s.Reboot(ctx) })
}

func (b *Bot) terminate(ctx context.Context, r *responder, args []string) {
	b.nodeAction(ctx, r, args, "terminate", "Successfully sent request to terminate instance.",
		func(ctx context.Context, s connector.Server) error { return s.Delete(ctx) })
}

// nodeAction runs a single call against a named server and reports the outcome
func (b *Bot) nodeAction(ctx context.Context, r *responder, args []string, verb, success string, action func(context.Context, connector.Server) error) {
	if len(args) != 1 {
		r.sendf("usage: aws %s <name>", verb)
		return
	}
	name := args[0]

	server := b.lookup(ctx, r, name)
	if server == nil {
		return
	}

	log := r.log.With("server_id", server.GetID(), "server_name", server.GetName())
	if err := action(ctx, server); err != nil {
		log.Error("request failed", "action", verb, "error", err)
		r.sendf("%s: %s", server.GetName(), unableToComplete)
		return
	}
	log.Info("request sent", "action", verb)
	r.sendf("%s: %s", server.GetName(), success)
}

func (b *Bot) list(ctx context.Context, r *responder, args []string) {
	servers, err := b.conn.ListServers(ctx)
	if err != nil {
		r.log.Error("failed to list instances", "error", err)
		r.sendf("list: %s", unableToComplete)
		return
	}
	if len(servers) == 0 {
		r.send("no instances found.")
		return
	}

	lines := make([]string, 0, len(servers))
	for _, s := range servers {
		d := s.Details()
		lines = append(lines, fmt.Sprintf("%s (%s): %s", orDash(d.Name), d.ID, d.State))
	}
	sort.Strings(lines)
	r.send(strings.Join(lines, "\n"))
}

// status replies with the latest service health events. The region
// "global" selects the feed that is not scoped to a region.
func (b *Bot) status(ctx context.Context, r *responder, args []string) {
	service := config.DefaultStatusService
	region := b.cfg.Datacenter
	switch len(args) {
	case 0:
	case 1:
		service = args[0]
	case 2:
		service, region = args[0], args[1]
	default:
		r.send("usage: aws status [service] [region]")
		return
	}
	if strings.EqualFold(region, "global") {
		region = ""
	}

	feed, err := b.feeds.Latest(ctx, service, region, b.cfg.StatusItems)
	if err != nil {
		r.log.Error("failed to fetch status feed", "service", service, "region", region, "error", err)
		r.sendf("status: unable to fetch %s.", b.feeds.FeedURL(service, region))
		return
	}
	r.send(feed.Format())
}

func (b *Bot) help(ctx context.Context, r *responder, args []string) {
	names := make([]string, 0, len(b.commands))
	for name := range b.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("available commands:")
	for _, name := range names {
		cmd := b.commands[name]
		fmt.Fprintf(&sb, "\n  aws %s - %s", cmd.usage, cmd.help)
	}
	r.send(sb.String())
}
