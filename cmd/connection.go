// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/pyreworks/pyrectl/pkg/bridge"
	"github.com/pyreworks/pyrectl/pkg/g560"
	"github.com/pyreworks/pyrectl/pkg/usb"
)

// passwordEnv names the environment variable holding the bridge password
const passwordEnv = "PYRECTL_PASSWORD"

// openTransport is replaced in tests
var openTransport = OpenTransport

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	if pw := os.Getenv(passwordEnv); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenTransport opens a WebSocket bridge, a serial bridge or the local USB
// device, in that order of preference
func OpenTransport(ctx context.Context) (g560.Transport, string, error) {
	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		b, err := bridge.DialWebSocket(ctx, bridge.WebSocketOptions{
			URL:           wsURL,
			Username:      wsUsername,
			Password:      password,
			SkipSSLVerify: wsNoSSLVerify,
			AckTimeout:    cfg.AckTimeout(),
		})
		if err != nil {
			return nil, "", err
		}
		return b, b.String(), nil
	}

	if portName != "" {
		b, err := bridge.OpenSerial(portName, baudRate, cfg.AckTimeout())
		if err != nil {
			return nil, "", err
		}
		return b, b.String(), nil
	}

	dev, err := usb.Open(usb.Options{})
	if err != nil {
		return nil, "", err
	}
	return dev, fmt.Sprintf("USB: %04x:%04x interface %d", g560.VendorID, g560.ProductID, g560.InterfaceNumber), nil
}
