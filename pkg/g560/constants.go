// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package g560 drives the lighting zones of the Logitech G560 speaker set.
//
// Callers resolve zone names with Lookup, build commands with the New*
// builders, and hand them to a Driver. The driver reduces the commands to one
// per zone, encodes each into the device's 20-byte HID report and sends it
// over a Transport with a fixed repeat/retry policy.
package g560

import "time"

// USB identity
const (
	VendorID        = 0x046D
	ProductID       = 0x0A78
	InterfaceNumber = 2
)

// Control transfer setup fields (SET_REPORT, output report 0x11)
const (
	ControlRequestType = 0x21 // host-to-device | class | interface
	ControlRequest     = 0x09
	ControlValue       = 0x0211
	ControlIndex       = 0x02
)

// Frame layout
const (
	PayloadSize = 10
	FrameSize   = 20
	prefixSize  = 4
	suffixSize  = FrameSize - prefixSize - PayloadSize
)

// framePrefix is the fixed vendor report header
var framePrefix = [prefixSize]byte{0x11, 0xFF, 0x04, 0x3A}

// Mode codes. Off has no code of its own: it is a solid frame with a
// zeroed color.
const (
	ModeSolid   = 0x01
	ModeCycle   = 0x02
	ModeBreathe = 0x04
)

// Parameter limits
const (
	MinRate       = 100
	MaxRate       = 65535
	MinBrightness = 1
	MaxBrightness = 100

	DefaultRate       = 10000
	DefaultBrightness = 100
)

// Dispatch policy defaults
const (
	RunTimes      = 3
	RetryTimes    = 3
	RetryInterval = 30 * time.Millisecond
)
