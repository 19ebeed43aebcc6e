package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/chatlist/internal/cli"
	"github.com/aretw0/chatlist/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "chatlist",
	Short: "chatlist reconciles chat list snapshots into row transitions",
	Long: `chatlist computes the deletions, insertions, moves and updates that take a
chat list view from one snapshot to the next, and serves that reconciliation
over HTTP and MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./"+config.DefaultPath+" if present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}

// flagOverrides maps command flags to config keys.
var flagOverrides = map[string]string{
	"log-level":  "log_level",
	"port":       "port",
	"store":      "store",
	"redis-addr": "redis.addr",
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	overrides := map[string]any{}
	redis := map[string]any{}
	for flag, key := range flagOverrides {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		if key == "redis.addr" {
			redis["addr"] = f.Value.String()
			continue
		}
		overrides[key] = f.Value.String()
	}
	if len(redis) > 0 {
		overrides["redis"] = redis
	}
	if err := cfg.Apply(overrides); err != nil {
		return cfg, nil, err
	}

	logger, err := cli.CreateLogger(cfg.LogLevel)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
