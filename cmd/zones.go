// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pyreworks/pyrectl/pkg/g560"
)

var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List target names and the zones they select",
	Args:  cobra.NoArgs,
	RunE:  runZones,
}

func init() {
	g560Cmd.AddCommand(zonesCmd)
}

func runZones(cmd *cobra.Command, args []string) error {
	printZones(cmd.OutOrStdout())
	return nil
}

func printZones(w io.Writer) {
	aliases := g560.Aliases()

	width := 0
	for _, a := range aliases {
		width = max(width, len(a.Name))
	}

	fmt.Fprintln(w, labelStyle.Render("Zones:"))
	for _, z := range g560.AllZones() {
		fmt.Fprintf(w, "  %-*s address 0x%02X\n", width, z, z.Address())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, labelStyle.Render("Targets:"))
	for _, a := range aliases {
		names := make([]string, len(a.Zones))
		for i, z := range a.Zones {
			names[i] = z.String()
		}
		fmt.Fprintf(w, "  %-*s %s\n", width, a.Name, dimStyle.Render(strings.Join(names, ", ")))
	}
}
