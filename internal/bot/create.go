package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/pflag"

	"github.com/alex-sviridov/ec2bot/internal/connector"
)

type createOptions struct {
	name   string
	puppet bool
	req    connector.CreateRequest
}

// parseCreateArgs reads create options, using the configuration for defaults
func (b *Bot) parseCreateArgs(args []string) (createOptions, error) {
	var opts createOptions
	var tags string

	fs := pflag.NewFlagSet("create", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.req.Image, "ami", b.cfg.AMI, "template ami to use")
	fs.IntVar(&opts.req.VolumeSizeGB, "size", b.cfg.VolumeSize, "disk size of instance in GBs")
	fs.StringVar(&opts.req.SubnetID, "subnet_id", b.cfg.SubnetID, "vpc subnet")
	fs.StringVar(&opts.req.RouteTableID, "route_table_id", b.cfg.RouteTableID, "vpc subnet's routing table")
	fs.StringVar(&opts.req.InstanceType, "instance_type", b.cfg.InstanceType, "instance type")
	fs.StringVar(&tags, "tags", "", "key=val tags")
	fs.StringVar(&opts.req.KeyPair, "keypair", b.cfg.KeyPair, "key pair to use")
	fs.BoolVar(&opts.puppet, "puppet", b.cfg.Puppet, "run puppet after provisioning")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	switch fs.NArg() {
	case 0:
		return opts, fmt.Errorf("instance name required")
	case 1:
	default:
		return opts, fmt.Errorf("expected one instance name, got %d", fs.NArg())
	}
	opts.name = fs.Arg(0)
	opts.req.Name = opts.name

	if opts.req.VolumeSizeGB <= 0 {
		return opts, fmt.Errorf("invalid size: %d", opts.req.VolumeSizeGB)
	}

	var err error
	if opts.req.Tags, err = parseTags(opts.name, tags); err != nil {
		return opts, err
	}
	if err := opts.req.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

func (b *Bot) create(ctx context.Context, r *responder, args []string) {
	opts, err := b.parseCreateArgs(args)
	if err != nil {
		r.sendf("create: %v", err)
		return
	}
	name := opts.name
	log := r.log.With("server_name", name)

	server, err := b.conn.CreateServer(ctx, opts.req)
	if err != nil {
		log.Error("failed to create instance", "error", err)
		r.sendf("%s: %s", name, unableToComplete)
		return
	}
	log = log.With("server_id", server.GetID())
	log.Info("instance created", "server", server.String())

	r.sendf("%s: [1/3] Creating instance", name)
	b.waitRunning(ctx, log, server)
	r.sendf("%s: [2/3] Running post setup", name)

	if opts.puppet {
		r.sendf("%s: Running puppet [disabled]", name)
	}

	r.sendf("%s: [3/3] Request completed", name)

	// Report live state; fall back to what create returned
	details := server.Details()
	if fresh, err := b.conn.GetServerByID(ctx, server.GetID()); err == nil {
		details = fresh.Details()
	} else {
		log.Warn("failed to refresh instance details", "error", err)
	}
	r.sendf("%s: %s", name, FormatDetails(details))
}

// waitRunning polls the server until it is running or the create wait elapses
func (b *Bot) waitRunning(ctx context.Context, log *slog.Logger, server connector.Server) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.CreateWait)
	defer cancel()

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	lastState := connector.StateUnknown
	for {
		state, err := server.GetState(ctx)
		if err != nil {
			log.Warn("failed to get instance state", "error", err)
		} else {
			if state != lastState {
				log.Info("instance state changed", "old_state", lastState, "new_state", state)
				lastState = state
			}
			if state == connector.StateRunning {
				return
			}
		}

		select {
		case <-ctx.Done():
			log.Info("stopped waiting for instance", "final_state", lastState)
			return
		case <-ticker.C:
		}
	}
}
