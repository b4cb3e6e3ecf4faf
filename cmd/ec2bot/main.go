package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/alex-sviridov/ec2bot/internal/bot"
	"github.com/alex-sviridov/ec2bot/internal/config"
	"github.com/alex-sviridov/ec2bot/internal/logger"
	"github.com/alex-sviridov/ec2bot/internal/status"
)

func main() {
	// Define CLI flags
	command := pflag.StringP("command", "c", "", "Chat command for one-shot interactive mode, e.g. \"aws info web1\"")
	redisAddr := pflag.String("redis", "", "Redis connection string for service mode")
	verbose := pflag.BoolP("verbose", "v", false, "Enable verbose logging (info level)")
	logFormat := pflag.String("log-format", "text", "Log format: text or json")
	dryrun := pflag.Bool("dry-run", false, "Dry-run without changing any instance")
	printConfig := pflag.Bool("print-config", false, "Print the configuration template and exit")
	envFile := pflag.String("env-file", ".env", "Environment file loaded before reading the configuration")
	pflag.Parse()

	if *printConfig {
		tmpl, err := config.Template()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error rendering configuration template:", err)
			os.Exit(1)
		}
		fmt.Println(tmpl)
		return
	}

	// Initialize logger
	log := logger.New(*verbose, *logFormat)

	// Validate that exactly one mode is specified
	if (*command == "" && *redisAddr == "") || (*command != "" && *redisAddr != "") {
		log.Error("specify exactly one of --command or --redis")
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv(*envFile)
	if err != nil {
		log.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	conn, err := newConnector(log, cfg, *dryrun)
	if err != nil {
		log.Error("failed to create connector", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}

	b := bot.New(log, conn, cfg, status.NewFetcher(cfg.StatusFeedURL, nil))

	// Run in the appropriate mode
	if *command != "" {
		runInteractiveMode(b, *command, os.Stdout)
	} else {
		runRedisMode(log, b, *redisAddr)
	}
}
