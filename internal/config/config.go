// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package config loads the optional pyrectl YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pyreworks/pyrectl/pkg/bridge"
	"github.com/pyreworks/pyrectl/pkg/g560"
)

// Config holds connection defaults and the dispatch policy
type Config struct {
	Connection struct {
		Port        string `yaml:"port"`
		Baud        int    `yaml:"baud"`
		URL         string `yaml:"url"`
		Username    string `yaml:"username"`
		NoSSLVerify bool   `yaml:"no_ssl_verify"`
	} `yaml:"connection"`
	Dispatch struct {
		RunTimes      int    `yaml:"run_times"`
		RetryTimes    int    `yaml:"retry_times"`
		RetryInterval string `yaml:"retry_interval"`
	} `yaml:"dispatch"`
	Bridge struct {
		AckTimeout string `yaml:"ack_timeout"`
	} `yaml:"bridge"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	retryInterval time.Duration
	ackTimeout    time.Duration
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	cfg.Connection.Baud = 115200
	cfg.Dispatch.RunTimes = g560.RunTimes
	cfg.Dispatch.RetryTimes = g560.RetryTimes
	cfg.Dispatch.RetryInterval = g560.RetryInterval.String()
	cfg.Bridge.AckTimeout = bridge.DefaultAckTimeout.String()
	cfg.Log.Level = "warn"
	cfg.Log.Format = "text"
	cfg.retryInterval = g560.RetryInterval
	cfg.ackTimeout = bridge.DefaultAckTimeout
	return cfg
}

// DefaultPath returns $XDG_CONFIG_HOME/pyrectl/config.yaml or the platform
// equivalent
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "pyrectl", "config.yaml"), nil
}

// Load reads the config file at path over the defaults. An empty path
// selects DefaultPath, where a missing file is not an error.
func Load(path string) (*Config, error) {
	optional := false
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
		optional = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Connection.Baud <= 0 {
		return fmt.Errorf("connection.baud must be positive, got %d", c.Connection.Baud)
	}
	if c.Connection.URL != "" && !strings.HasPrefix(c.Connection.URL, "ws://") && !strings.HasPrefix(c.Connection.URL, "wss://") {
		return fmt.Errorf("connection.url must use ws:// or wss://, got %q", c.Connection.URL)
	}

	interval, err := time.ParseDuration(c.Dispatch.RetryInterval)
	if err != nil {
		return fmt.Errorf("dispatch.retry_interval: %w", err)
	}
	c.retryInterval = interval

	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}

	ack, err := time.ParseDuration(c.Bridge.AckTimeout)
	if err != nil {
		return fmt.Errorf("bridge.ack_timeout: %w", err)
	}
	if ack <= 0 {
		return fmt.Errorf("bridge.ack_timeout must be positive, got %s", ack)
	}
	c.ackTimeout = ack

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Policy returns the dispatch policy
func (c *Config) Policy() g560.Policy {
	return g560.Policy{
		RunTimes:      c.Dispatch.RunTimes,
		RetryTimes:    c.Dispatch.RetryTimes,
		RetryInterval: c.retryInterval,
	}
}

// AckTimeout returns how long bridges wait for a reply
func (c *Config) AckTimeout() time.Duration {
	return c.ackTimeout
}

// ParseLevel maps a level name to a slog level
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown level %q", name)
	}
}
