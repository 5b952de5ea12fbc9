// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package g560

import (
	"sort"

	"github.com/pyreworks/pyrectl/pkg/color"
)

// Command is a lighting instruction for exactly one zone. The set of
// implementations is closed: OffCommand, SolidCommand, BreatheCommand and
// CycleCommand.
type Command interface {
	// Zone returns the zone the command applies to
	Zone() Zone
	// ModeCode returns the device mode byte
	ModeCode() uint8

	isCommand()
}

// OffCommand turns a zone's light off
type OffCommand struct {
	zone Zone
}

// SolidCommand sets a zone to a steady color
type SolidCommand struct {
	zone  Zone
	color color.RGB8
}

// BreatheCommand fades a zone's color in and out
type BreatheCommand struct {
	zone       Zone
	color      color.RGB8
	rate       uint16
	brightness uint8
}

// CycleCommand rotates a zone through the color wheel
type CycleCommand struct {
	zone       Zone
	rate       uint16
	brightness uint8
}

// Command builder functions. Rate and brightness are clamped here so no
// command can carry an out-of-range value.

// NewOff creates a command that turns the zone off.
func NewOff(zone Zone) Command {
	return OffCommand{zone: zone}
}

// NewSolid creates a command that sets the zone to a single color.
func NewSolid(zone Zone, c color.RGB8) Command {
	return SolidCommand{zone: zone, color: c}
}

// NewBreathe creates a breathing command.
// Rate is the breathing period in milliseconds, clamped to [MinRate, MaxRate].
// Brightness is a percentage, clamped to [MinBrightness, MaxBrightness].
func NewBreathe(zone Zone, c color.RGB8, rate uint16, brightness uint8) Command {
	return BreatheCommand{
		zone:       zone,
		color:      c,
		rate:       clampRate(rate),
		brightness: clampBrightness(brightness),
	}
}

// NewCycle creates a color cycle command. Rate and brightness are clamped as
// for NewBreathe.
func NewCycle(zone Zone, rate uint16, brightness uint8) Command {
	return CycleCommand{
		zone:       zone,
		rate:       clampRate(rate),
		brightness: clampBrightness(brightness),
	}
}

func (c OffCommand) Zone() Zone     { return c.zone }
func (c SolidCommand) Zone() Zone   { return c.zone }
func (c BreatheCommand) Zone() Zone { return c.zone }
func (c CycleCommand) Zone() Zone   { return c.zone }

func (OffCommand) ModeCode() uint8     { return ModeSolid }
func (SolidCommand) ModeCode() uint8   { return ModeSolid }
func (BreatheCommand) ModeCode() uint8 { return ModeBreathe }
func (CycleCommand) ModeCode() uint8   { return ModeCycle }

func (OffCommand) isCommand()     {}
func (SolidCommand) isCommand()   {}
func (BreatheCommand) isCommand() {}
func (CycleCommand) isCommand()   {}

// Color returns the solid color
func (c SolidCommand) Color() color.RGB8 { return c.color }

// Color returns the breathing color
func (c BreatheCommand) Color() color.RGB8 { return c.color }

// Rate returns the breathing period in milliseconds
func (c BreatheCommand) Rate() uint16 { return c.rate }

// Brightness returns the peak brightness percentage
func (c BreatheCommand) Brightness() uint8 { return c.brightness }

// Rate returns the cycle period in milliseconds
func (c CycleCommand) Rate() uint16 { return c.rate }

// Brightness returns the brightness percentage
func (c CycleCommand) Brightness() uint8 { return c.brightness }

func clampRate(rate uint16) uint16 {
	if rate < MinRate {
		return MinRate
	}
	return rate
}

func clampBrightness(brightness uint8) uint8 {
	switch {
	case brightness < MinBrightness:
		return MinBrightness
	case brightness > MaxBrightness:
		return MaxBrightness
	}
	return brightness
}

// ClampRate saturates a user supplied rate into the valid rate range.
func ClampRate(rate int64) uint16 {
	switch {
	case rate < MinRate:
		return MinRate
	case rate > MaxRate:
		return MaxRate
	}
	return uint16(rate)
}

// ClampBrightness saturates a user supplied brightness into the valid range.
func ClampBrightness(brightness int64) uint8 {
	switch {
	case brightness < MinBrightness:
		return MinBrightness
	case brightness > MaxBrightness:
		return MaxBrightness
	}
	return uint8(brightness)
}

// Compress reduces commands to at most one per zone. For each zone present in
// the input the last command wins; earlier ones are dropped. The result is
// ordered by zone, but callers should only rely on the one-per-zone property.
func Compress(commands []Command) []Command {
	if len(commands) == 0 {
		return nil
	}

	last := make(map[Zone]Command, zoneCount)
	for _, cmd := range commands {
		last[cmd.Zone()] = cmd
	}

	out := make([]Command, 0, len(last))
	for _, cmd := range last {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Zone() < out[j].Zone()
	})
	return out
}
