// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package g560

import (
	"fmt"
	"strings"
)

// ModeName returns the human-readable mode name for a command
func ModeName(cmd Command) string {
	switch cmd.(type) {
	case OffCommand:
		return "OFF"
	case SolidCommand:
		return "SOLID"
	case BreatheCommand:
		return "BREATHE"
	case CycleCommand:
		return "CYCLE"
	default:
		return "UNKNOWN"
	}
}

// FormatCommand formats a command as a single line, e.g.
// "left-primary SOLID color=#FF0000"
func FormatCommand(cmd Command) string {
	head := fmt.Sprintf("%s %s", cmd.Zone(), ModeName(cmd))

	switch c := cmd.(type) {
	case SolidCommand:
		return fmt.Sprintf("%s color=%s", head, c.color)
	case BreatheCommand:
		return fmt.Sprintf("%s color=%s rate=%dms brightness=%d%%", head, c.color, c.rate, c.brightness)
	case CycleCommand:
		return fmt.Sprintf("%s rate=%dms brightness=%d%%", head, c.rate, c.brightness)
	default:
		return head
	}
}

// FormatHex renders bytes as space separated upper case hex
func FormatHex(data []byte) string {
	var sb strings.Builder
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// FormatFrame formats a raw report into a human-readable string.
// Frames that fail to parse are shown as a hex dump with the parse error.
func FormatFrame(frame []byte) string {
	cmd, err := ParseFrame(frame)
	if err != nil {
		return fmt.Sprintf("INVALID (%v)\n  Frame: %s\n", err, FormatHex(frame))
	}

	return fmt.Sprintf("%s (0x%02X) addr=0x%02X\n  %s\n  Frame: %s\n",
		ModeName(cmd), cmd.ModeCode(), cmd.Zone().Address(),
		FormatCommand(cmd), FormatHex(frame))
}
