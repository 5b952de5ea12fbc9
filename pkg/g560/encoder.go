// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package g560

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pyreworks/pyrectl/pkg/color"
)

// ErrInvalidFrame is returned by ParseFrame for bytes that are not a valid
// lighting report
var ErrInvalidFrame = errors.New("invalid frame")

// EncodePayload builds the 10-byte mode payload for a command.
//
// Layout after the zone address and mode code:
//
//	Off      0 0 0
//	Solid    R G B
//	Cycle    0 0 0 0 0 rateHi rateLo brightness
//	Breathe  R G B rateHi rateLo 0 brightness 0
func EncodePayload(cmd Command) [PayloadSize]byte {
	var value [PayloadSize]byte
	value[0] = cmd.Zone().Address()
	value[1] = cmd.ModeCode()

	switch c := cmd.(type) {
	case OffCommand:
		// color stays zero
	case SolidCommand:
		value[2] = c.color.R
		value[3] = c.color.G
		value[4] = c.color.B
	case CycleCommand:
		binary.BigEndian.PutUint16(value[7:9], c.rate)
		value[9] = c.brightness
	case BreatheCommand:
		value[2] = c.color.R
		value[3] = c.color.G
		value[4] = c.color.B
		binary.BigEndian.PutUint16(value[5:7], c.rate)
		value[8] = c.brightness
	default:
		panic(fmt.Sprintf("g560: unknown command type %T", cmd))
	}

	return value
}

// Encode builds the complete 20-byte report for a command: the fixed prefix,
// the mode payload and a zero suffix. The command's zone must be Valid.
func Encode(cmd Command) [FrameSize]byte {
	var frame [FrameSize]byte
	copy(frame[:prefixSize], framePrefix[:])
	payload := EncodePayload(cmd)
	copy(frame[prefixSize:prefixSize+PayloadSize], payload[:])
	return frame
}

// ParseFrame decodes a 20-byte report back into a command.
// A solid frame with an all-zero color decodes as OffCommand, since the
// device cannot tell the two apart either.
func ParseFrame(frame []byte) (Command, error) {
	if len(frame) != FrameSize {
		return nil, fmt.Errorf("%w: length %d, want %d", ErrInvalidFrame, len(frame), FrameSize)
	}
	for i, b := range framePrefix {
		if frame[i] != b {
			return nil, fmt.Errorf("%w: prefix byte %d is 0x%02X, want 0x%02X", ErrInvalidFrame, i, frame[i], b)
		}
	}
	for i := prefixSize + PayloadSize; i < FrameSize; i++ {
		if frame[i] != 0 {
			return nil, fmt.Errorf("%w: suffix byte %d is 0x%02X, want 0x00", ErrInvalidFrame, i, frame[i])
		}
	}

	return parsePayload(frame[prefixSize : prefixSize+PayloadSize])
}

func parsePayload(value []byte) (Command, error) {
	zone, ok := zoneFromAddress(value[0])
	if !ok {
		return nil, fmt.Errorf("%w: unknown zone address 0x%02X", ErrInvalidFrame, value[0])
	}

	rgb := color.RGB8{R: value[2], G: value[3], B: value[4]}

	switch value[1] {
	case ModeSolid:
		if err := expectZero(value, 5, 6, 7, 8, 9); err != nil {
			return nil, err
		}
		if rgb == color.Black {
			return NewOff(zone), nil
		}
		return NewSolid(zone, rgb), nil

	case ModeCycle:
		if err := expectZero(value, 2, 3, 4, 5, 6); err != nil {
			return nil, err
		}
		rate := binary.BigEndian.Uint16(value[7:9])
		if err := checkRange(rate, value[9]); err != nil {
			return nil, err
		}
		return NewCycle(zone, rate, value[9]), nil

	case ModeBreathe:
		if err := expectZero(value, 7, 9); err != nil {
			return nil, err
		}
		rate := binary.BigEndian.Uint16(value[5:7])
		if err := checkRange(rate, value[8]); err != nil {
			return nil, err
		}
		return NewBreathe(zone, rgb, rate, value[8]), nil

	default:
		return nil, fmt.Errorf("%w: unknown mode code 0x%02X", ErrInvalidFrame, value[1])
	}
}

func expectZero(value []byte, indexes ...int) error {
	for _, i := range indexes {
		if value[i] != 0 {
			return fmt.Errorf("%w: payload byte %d is 0x%02X, want 0x00", ErrInvalidFrame, i, value[i])
		}
	}
	return nil
}

func checkRange(rate uint16, brightness uint8) error {
	if rate < MinRate {
		return fmt.Errorf("%w: rate %d below minimum %d", ErrInvalidFrame, rate, MinRate)
	}
	if brightness < MinBrightness || brightness > MaxBrightness {
		return fmt.Errorf("%w: brightness %d outside %d-%d", ErrInvalidFrame, brightness, MinBrightness, MaxBrightness)
	}
	return nil
}
