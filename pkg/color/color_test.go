// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package color

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RGB8
	}{
		{"named white", "white", RGB8{255, 255, 255}},
		{"named red", "red", RGB8{255, 0, 0}},
		{"named mixed case", "DarkOrange", RGB8{0xFF, 0x8C, 0x00}},
		{"named with spaces", "  navy ", RGB8{0, 0, 0x80}},
		{"hex six digits", "#FFEE00", RGB8{0xFF, 0xEE, 0x00}},
		{"hex lower case", "#00ff7f", RGB8{0x00, 0xFF, 0x7F}},
		{"hex three digits", "#f0a", RGB8{0xFF, 0x00, 0xAA}},
		{"black", "black", Black},
		{"hex with alpha", "#ff000080", RGB8{0x80, 0x00, 0x00}},
		{"short hex with alpha", "#f008", RGB8{0x88, 0x00, 0x00}},
		{"hex opaque alpha", "#FFEE00FF", RGB8{0xFF, 0xEE, 0x00}},
		{"rgb commas", "rgb(255, 0, 0)", RGB8{0xFF, 0x00, 0x00}},
		{"rgb percentages", "rgb(100%,50%,0%)", RGB8{0xFF, 0x80, 0x00}},
		{"rgb space separated", "rgb(0 128 255)", RGB8{0x00, 0x80, 0xFF}},
		{"rgb clamps channels", "rgb(300,-5,0)", RGB8{0xFF, 0x00, 0x00}},
		{"rgba premultiplied", "rgba(255,255,255,0.5)", RGB8{0x80, 0x80, 0x80}},
		{"rgb slash alpha", "RGB(255 255 255 / 0)", Black},
		{"hsl green", "hsl(120,100%,50%)", RGB8{0x00, 0xFF, 0x00}},
		{"hsl degrees", "hsl(240deg 100% 50%)", RGB8{0x00, 0x00, 0xFF}},
		{"hsl wraps hue", "hsl(480,100%,50%)", RGB8{0x00, 0xFF, 0x00}},
		{"hsla percent alpha", "hsla(0 100% 50% / 50%)", RGB8{0x80, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	inputs := []string{
		"", "   ", "notacolor", "#GGGGGG", "#12345", "FFEE00",
		"rgb(1,2)", "rgb(a,b,c)", "rgb(1,2,3,4,5)", "hsl(120,100,50%)",
		"cmyk(0,0,0,0)", "rgb(1,2,3,x)", "(1,2,3)",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Parse(input)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "error should be *ParseError, got %T", err)
			assert.Equal(t, input, perr.Input)
		})
	}
}

func TestParseError_Message(t *testing.T) {
	err := &ParseError{Input: "blurple"}
	assert.Equal(t, `failed to find color by name "blurple"`, err.Error())
}

func TestRGB8_String(t *testing.T) {
	assert.Equal(t, "#FFEE00", RGB8{0xFF, 0xEE, 0x00}.String())
	assert.Equal(t, "#000000", Black.String())
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
	assert.NotPanics(t, func() { MustParse("blue") })
}
