// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad
//
// pyrectl - ambience light control program
//
// Sets the lighting on Logitech G560 speakers directly over USB or through a
// serial or WebSocket bridge.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/lipgloss"

	"github.com/pyreworks/pyrectl/cmd"
)

var errorPrefix = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true).Render("error") +
	lipgloss.NewStyle().Bold(true).Render(":")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorPrefix, err)
		stop()
		os.Exit(1)
	}
}
