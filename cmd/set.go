// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pyreworks/pyrectl/pkg/color"
	"github.com/pyreworks/pyrectl/pkg/g560"
)

// Light modes accepted by buildCommands
const (
	modeOff     = "off"
	modeSolid   = "solid"
	modeBreathe = "breathe"
	modeCycle   = "cycle"
)

const targetHelp = `the light target, e.g. "left-primary", "right-secondary", or "all"`

var (
	setTargets    []string
	setColor      string
	setRate       int64
	setBrightness int64
	setDryRun     bool
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Set mode and/or state for speaker lights",
	Long: `Set mode and/or state for speaker lights.

By default every command is sent three times, with up to three attempts each;
dispatch.run_times and dispatch.retry_times in the config file change this.
Targets may be repeated; run "pyrectl g560 zones" for the accepted names.
Unknown targets are reported and skipped.`,
}

var setOffCmd = &cobra.Command{
	Use:   "off",
	Short: "Set speaker lights off",
	Args:  cobra.NoArgs,
	RunE:  runSet(modeOff),
}

var setSolidCmd = &cobra.Command{
	Use:   "solid",
	Short: "Set speaker lights to solid color",
	Args:  cobra.NoArgs,
	RunE:  runSet(modeSolid),
}

var setBreatheCmd = &cobra.Command{
	Use:   "breathe",
	Short: "Set speaker lights to a breathing color",
	Args:  cobra.NoArgs,
	RunE:  runSet(modeBreathe),
}

var setCycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Set speaker lights to cycling colors",
	Args:  cobra.NoArgs,
	RunE:  runSet(modeCycle),
}

func init() {
	g560Cmd.AddCommand(setCmd)
	setCmd.AddCommand(setOffCmd, setSolidCmd, setBreatheCmd, setCycleCmd)

	setCmd.PersistentFlags().StringArrayVarP(&setTargets, "target", "t", []string{"all"}, targetHelp)
	setCmd.PersistentFlags().BoolVar(&setDryRun, "dry-run", false, "Print frames instead of sending them")

	for _, c := range []*cobra.Command{setSolidCmd, setBreatheCmd} {
		c.Flags().StringVarP(&setColor, "color", "c", "", `the color to set, e.g. "#FFFFFF" or "white"`)
		c.MarkFlagRequired("color")
	}

	for _, c := range []*cobra.Command{setBreatheCmd, setCycleCmd} {
		c.Flags().Int64VarP(&setRate, "rate", "r", g560.DefaultRate, "the effect rate in milliseconds, 100-65535")
		c.Flags().Int64VarP(&setBrightness, "brightness", "b", g560.DefaultBrightness, "the brightness, 1-100")
	}
}

// lightSettings are the inputs for one set invocation
type lightSettings struct {
	mode       string
	targets    []string
	color      string
	rate       int64
	brightness int64
}

func runSet(mode string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		commands, err := buildCommands(lightSettings{
			mode:       mode,
			targets:    setTargets,
			color:      setColor,
			rate:       setRate,
			brightness: setBrightness,
		})
		if err != nil {
			return err
		}
		return sendCommands(cmd.Context(), cmd.OutOrStdout(), commands, setDryRun)
	}
}

// buildCommands creates one command per resolved zone
func buildCommands(s lightSettings) ([]g560.Command, error) {
	switch s.mode {
	case modeOff, modeSolid, modeBreathe, modeCycle:
	default:
		return nil, fmt.Errorf("unknown mode %q", s.mode)
	}

	zones := resolveTargets(s.targets)

	var c color.RGB8
	if s.mode == modeSolid || s.mode == modeBreathe {
		var err error
		c, err = color.Parse(s.color)
		if err != nil {
			return nil, err
		}
	}

	rate := g560.ClampRate(s.rate)
	brightness := g560.ClampBrightness(s.brightness)

	commands := make([]g560.Command, 0, len(zones))
	for _, z := range zones {
		switch s.mode {
		case modeOff:
			commands = append(commands, g560.NewOff(z))
		case modeSolid:
			commands = append(commands, g560.NewSolid(z, c))
		case modeBreathe:
			commands = append(commands, g560.NewBreathe(z, c, rate, brightness))
		case modeCycle:
			commands = append(commands, g560.NewCycle(z, rate, brightness))
		}
	}
	return commands, nil
}
