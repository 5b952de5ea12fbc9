// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pyreworks/pyrectl/pkg/g560"
)

var g560Cmd = &cobra.Command{
	Use:   "g560",
	Short: "Control Logitech G560 speaker lights",
}

func init() {
	rootCmd.AddCommand(g560Cmd)
}

// Summary styles
var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// resolveTargets turns target names into zones, warning about names that
// match nothing
func resolveTargets(names []string) []g560.Zone {
	if len(names) == 0 {
		names = []string{"all"}
	}
	for _, name := range g560.UnknownNames(names) {
		logger.Warn("unknown target ignored", "target", name)
	}
	return g560.LookupAll(names)
}

// sendCommands runs commands through a freshly opened transport and prints
// a summary. With dryRun set it prints the frames instead.
func sendCommands(ctx context.Context, w io.Writer, commands []g560.Command, dryRun bool) error {
	if len(commands) == 0 {
		logger.Warn("no zones selected, nothing to send")
		return nil
	}

	if dryRun {
		printFrames(w, g560.Compress(commands))
		return nil
	}

	transport, connInfo, err := openTransport(ctx)
	if err != nil {
		return err
	}
	driver := g560.NewDriver(transport, g560.WithPolicy(cfg.Policy()), g560.WithLogger(logger))
	defer driver.Close()
	logger.Debug("connected", "transport", connInfo)

	report, err := driver.Run(ctx, commands)
	if report != nil {
		printReport(w, report)
	}
	return err
}

func printFrames(w io.Writer, commands []g560.Command) {
	for _, c := range commands {
		frame := g560.Encode(c)
		fmt.Fprint(w, g560.FormatFrame(frame[:]))
	}
}

func printReport(w io.Writer, report *g560.Report) {
	for _, r := range report.Commands {
		status := okStyle.Render("OK  ")
		if !r.Delivered() {
			status = failStyle.Render("FAIL")
		}

		detail := fmt.Sprintf("%d/%d runs, %d attempts", r.Runs-r.FailedRuns, r.Runs, r.Attempts)
		if r.LastErr != nil {
			detail += ", last error: " + r.LastErr.Error()
		}

		fmt.Fprintf(w, "%s %s %s\n", status, g560.FormatCommand(r.Command), dimStyle.Render("("+detail+")"))
	}

	if failed := len(report.Failed()); failed > 0 {
		fmt.Fprintf(w, "%s %d of %d commands not delivered\n",
			labelStyle.Render("Summary:"), failed, len(report.Commands))
	}
}
