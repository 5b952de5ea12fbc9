// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyreworks/pyrectl/internal/config"
)

var (
	configPath string

	// Serial bridge flags
	portName string
	baudRate int

	// WebSocket bridge flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// Logging flags
	verbose   bool
	logFormat string
)

var (
	// cfg is the loaded configuration with flag overrides applied
	cfg = config.Default()
	// logger writes diagnostics to stderr
	logger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

var rootCmd = &cobra.Command{
	Use:   "pyrectl",
	Short: "Ambience light control program",
	Long: `pyrectl - control ambience lighting on Logitech G560 speakers.

Frames are sent to a locally attached speaker over USB by default, or through a
bridge on another host.

Connection modes:
  USB:       (default) Logitech G560, 046d:0a78, interface 2
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]

For WebSocket authentication, the password is read from the PYRECTL_PASSWORD
environment variable, or prompted interactively if not set.

Defaults for all connection flags and the dispatch policy can be set in
$XDG_CONFIG_HOME/pyrectl/config.yaml or the file given with --config.`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/pyrectl/config.yaml)")

	// Serial bridge flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial bridge device")
	rootCmd.PersistentFlags().IntVar(&baudRate, "baud", 115200, "Baud rate (serial only)")

	// WebSocket bridge flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket bridge URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	// Logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

// setup loads the config file, applies flag overrides and builds the logger
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, loaded)
	cfg = loaded

	logger, err = newLogger(os.Stderr, cfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// applyFlags lets flags given on the command line win over the config file
// and copies the resulting values back into the flag variables
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("port") {
		c.Connection.Port = portName
	}
	if flags.Changed("baud") {
		c.Connection.Baud = baudRate
	}
	if flags.Changed("url") {
		c.Connection.URL = wsURL
	}
	if flags.Changed("username") {
		c.Connection.Username = wsUsername
	}
	if flags.Changed("no-ssl-verify") {
		c.Connection.NoSSLVerify = wsNoSSLVerify
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}
	if verbose {
		c.Log.Level = "debug"
	}

	portName = c.Connection.Port
	baudRate = c.Connection.Baud
	wsURL = c.Connection.URL
	wsUsername = c.Connection.Username
	wsNoSSLVerify = c.Connection.NoSSLVerify
}

func newLogger(w io.Writer, c *config.Config) (*slog.Logger, error) {
	level, err := config.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (use text or json)", c.Log.Format)
	}
	return slog.New(handler), nil
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
