// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package g560

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/pyreworks/pyrectl/pkg/color"
)

func TestEncodePayload(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want [PayloadSize]byte
	}{
		{
			name: "solid left primary red",
			cmd:  NewSolid(LeftPrimary, color.RGB8{R: 255}),
			want: [PayloadSize]byte{0x00, 0x01, 0xFF, 0x00, 0x00, 0, 0, 0, 0, 0},
		},
		{
			name: "off right secondary",
			cmd:  NewOff(RightSecondary),
			want: [PayloadSize]byte{0x03, 0x01, 0x00, 0x00, 0x00, 0, 0, 0, 0, 0},
		},
		{
			name: "cycle right primary",
			cmd:  NewCycle(RightPrimary, 0x1234, 42),
			want: [PayloadSize]byte{0x01, 0x02, 0, 0, 0, 0, 0, 0x12, 0x34, 42},
		},
		{
			name: "breathe left secondary",
			cmd:  NewBreathe(LeftSecondary, color.RGB8{R: 0x10, G: 0x20, B: 0x30}, 10000, 100),
			want: [PayloadSize]byte{0x02, 0x04, 0x10, 0x20, 0x30, 0x27, 0x10, 0, 100, 0},
		},
		{
			name: "cycle clamped values",
			cmd:  NewCycle(LeftPrimary, 50, 0),
			want: [PayloadSize]byte{0x00, 0x02, 0, 0, 0, 0, 0, 0x00, 0x64, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EncodePayload(tt.cmd)
			if got != tt.want {
				t.Errorf("EncodePayload() = % X, want % X", got, tt.want)
			}
		})
	}
}

func TestEncode_Frame(t *testing.T) {
	frame := Encode(NewSolid(LeftPrimary, color.RGB8{R: 255}))
	want := []byte{
		0x11, 0xFF, 0x04, 0x3A,
		0x00, 0x01, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}

	if len(frame) != FrameSize {
		t.Fatalf("frame length = %d, want %d", len(frame), FrameSize)
	}
	if !bytes.Equal(frame[:], want) {
		t.Errorf("Encode() = %s, want %s", FormatHex(frame[:]), FormatHex(want))
	}
	if got := FormatHex(frame[:]); got != "11 FF 04 3A 00 01 FF 00 00 00 00 00 00 00 00 00 00 00 00 00" {
		t.Errorf("FormatHex() = %q", got)
	}
}

func TestEncode_PrefixAndSuffix(t *testing.T) {
	cmds := []Command{
		NewOff(RightPrimary),
		NewSolid(LeftSecondary, color.RGB8{R: 1, G: 2, B: 3}),
		NewCycle(RightSecondary, 65535, 100),
		NewBreathe(LeftPrimary, color.RGB8{R: 0xFF, G: 0xFF, B: 0xFF}, 65535, 100),
	}

	for _, cmd := range cmds {
		frame := Encode(cmd)
		if !bytes.Equal(frame[:4], []byte{0x11, 0xFF, 0x04, 0x3A}) {
			t.Errorf("%s: prefix = % X", FormatCommand(cmd), frame[:4])
		}
		if !bytes.Equal(frame[14:], make([]byte, 6)) {
			t.Errorf("%s: suffix = % X, want zeros", FormatCommand(cmd), frame[14:])
		}
		payload := EncodePayload(cmd)
		if !bytes.Equal(frame[4:14], payload[:]) {
			t.Errorf("%s: payload section = % X, want % X", FormatCommand(cmd), frame[4:14], payload)
		}
	}
}

func TestParseFrame_RoundTrip(t *testing.T) {
	cmds := []Command{
		NewOff(LeftPrimary),
		NewOff(RightSecondary),
		NewSolid(LeftSecondary, color.RGB8{R: 0xAB, G: 0xCD, B: 0xEF}),
		NewCycle(RightPrimary, 100, 1),
		NewCycle(LeftPrimary, 65535, 100),
		NewBreathe(RightSecondary, color.RGB8{G: 0x80}, 4321, 55),
	}

	for _, cmd := range cmds {
		t.Run(FormatCommand(cmd), func(t *testing.T) {
			frame := Encode(cmd)
			got, err := ParseFrame(frame[:])
			if err != nil {
				t.Fatalf("ParseFrame failed: %v", err)
			}
			if got != cmd {
				t.Errorf("ParseFrame() = %s, want %s", FormatCommand(got), FormatCommand(cmd))
			}
		})
	}
}

func TestParseFrame_SolidBlackIsOff(t *testing.T) {
	frame := Encode(NewSolid(LeftPrimary, color.Black))
	got, err := ParseFrame(frame[:])
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if _, ok := got.(OffCommand); !ok {
		t.Errorf("ParseFrame() = %T, want OffCommand", got)
	}
}

func TestParseFrame_Invalid(t *testing.T) {
	valid := Encode(NewCycle(LeftPrimary, 100, 50))

	mutate := func(i int, b byte) []byte {
		f := valid
		f[i] = b
		return f[:]
	}

	tests := []struct {
		name  string
		frame []byte
		want  string
	}{
		{"too short", valid[:19], "length 19"},
		{"empty", nil, "length 0"},
		{"bad prefix", mutate(0, 0x10), "prefix byte 0"},
		{"bad suffix", mutate(19, 0x01), "suffix byte 19"},
		{"unknown zone", mutate(4, 0x07), "unknown zone address 0x07"},
		{"unknown mode", mutate(5, 0x03), "unknown mode code 0x03"},
		{"cycle with color", mutate(6, 0x01), "payload byte 2"},
		{"zero brightness", mutate(13, 0), "brightness 0"},
		{"rate below minimum", mutate(12, 0x20), "rate 32"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFrame(tt.frame)
			if err == nil {
				t.Fatal("ParseFrame should fail")
			}
			if !errors.Is(err, ErrInvalidFrame) {
				t.Errorf("error %v should wrap ErrInvalidFrame", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}
