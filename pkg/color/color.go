// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package color turns human-readable color strings into 8-bit RGB triples.
//
// Accepted forms follow CSS Color 4: names ("white", "darkorange"), hex
// notation with optional alpha ("#FFEE00", "#fe0", "#fe08", "#FFEE0080") and
// the rgb(), rgba(), hsl() and hsla() functions, with comma or space
// separated arguments and an optional "/ alpha". The device has no alpha
// channel, so alpha is premultiplied into the color.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// RGB8 is an 8-bit per channel color
type RGB8 struct {
	R uint8
	G uint8
	B uint8
}

// Black is the all-zero color
var Black = RGB8{}

// String returns the color in #RRGGBB form
func (c RGB8) String() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// ParseError is returned when a string names no known color
type ParseError struct {
	Input string
}

// Error implements the error interface
func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to find color by name %q", e.Input)
}

// Parse converts a color string into an RGB8
func Parse(text string) (RGB8, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return RGB8{}, &ParseError{Input: text}
	}

	var (
		c   colorful.Color
		a   float64
		err error
	)
	switch {
	case strings.HasPrefix(s, "#"):
		c, a, err = parseHex(s)
	case strings.HasSuffix(s, ")"):
		c, a, err = parseFunc(s)
	default:
		named, ok := colornames.Map[s]
		if !ok {
			return RGB8{}, &ParseError{Input: text}
		}
		// colornames values are premultiplied, so alpha is already applied.
		return RGB8{R: named.R, G: named.G, B: named.B}, nil
	}
	if err != nil {
		return RGB8{}, &ParseError{Input: text}
	}

	return premultiply(c, a), nil
}

// premultiply scales a color in [0,1] by alpha in [0,1] into 8-bit channels
func premultiply(c colorful.Color, a float64) RGB8 {
	c = c.Clamped()
	a = clamp(a, 0, 1)
	scale := func(v float64) uint8 {
		return uint8(math.Round(v * a * 255))
	}
	return RGB8{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

// parseHex handles #rgb, #rgba, #rrggbb and #rrggbbaa
func parseHex(s string) (colorful.Color, float64, error) {
	digits := s[1:]
	if !isHex(digits) {
		return colorful.Color{}, 0, fmt.Errorf("bad hex color %q", s)
	}

	alpha := 1.0
	switch len(digits) {
	case 4, 8:
		n := len(digits) / 4
		v, err := strconv.ParseUint(digits[len(digits)-n:], 16, 8)
		if err != nil {
			return colorful.Color{}, 0, err
		}
		if n == 1 {
			v *= 0x11
		}
		alpha = float64(v) / 255
		digits = digits[:len(digits)-n]
	}

	c, err := colorful.Hex("#" + digits)
	return c, alpha, err
}

// parseFunc handles rgb(), rgba(), hsl() and hsla()
func parseFunc(s string) (colorful.Color, float64, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return colorful.Color{}, 0, fmt.Errorf("bad color function %q", s)
	}
	name := strings.TrimSpace(s[:open])
	args := strings.FieldsFunc(s[open+1:len(s)-1], func(r rune) bool {
		return r == ',' || r == '/' || r == ' ' || r == '\t'
	})
	if len(args) != 3 && len(args) != 4 {
		return colorful.Color{}, 0, fmt.Errorf("%s: want 3 or 4 arguments, got %d", name, len(args))
	}

	alpha := 1.0
	if len(args) == 4 {
		v, err := parseAlpha(args[3])
		if err != nil {
			return colorful.Color{}, 0, err
		}
		alpha = v
	}

	switch name {
	case "rgb", "rgba":
		var ch [3]float64
		for i, arg := range args[:3] {
			v, err := parseChannel(arg)
			if err != nil {
				return colorful.Color{}, 0, err
			}
			ch[i] = v
		}
		return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, alpha, nil

	case "hsl", "hsla":
		h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		if err != nil {
			return colorful.Color{}, 0, err
		}
		sat, err := parsePercent(args[1])
		if err != nil {
			return colorful.Color{}, 0, err
		}
		light, err := parsePercent(args[2])
		if err != nil {
			return colorful.Color{}, 0, err
		}
		h = math.Mod(h, 360)
		if h < 0 {
			h += 360
		}
		return colorful.Hsl(h, clamp(sat, 0, 1), clamp(light, 0, 1)), alpha, nil
	}

	return colorful.Color{}, 0, fmt.Errorf("unknown color function %q", name)
}

// parseChannel reads an rgb() channel, 0-255 or a percentage, as [0,1]
func parseChannel(arg string) (float64, error) {
	if strings.HasSuffix(arg, "%") {
		v, err := parsePercent(arg)
		return clamp(v, 0, 1), err
	}
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, err
	}
	return clamp(v, 0, 255) / 255, nil
}

// parseAlpha reads 0-1 or a percentage
func parseAlpha(arg string) (float64, error) {
	if strings.HasSuffix(arg, "%") {
		return parsePercent(arg)
	}
	return strconv.ParseFloat(arg, 64)
}

// parsePercent reads "NN%" as a fraction
func parsePercent(arg string) (float64, error) {
	if !strings.HasSuffix(arg, "%") {
		return 0, fmt.Errorf("want a percentage, got %q", arg)
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// isHex reports whether s is a 3, 4, 6 or 8 digit hex string
func isHex(s string) bool {
	switch len(s) {
	case 3, 4, 6, 8:
	default:
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// MustParse is like Parse but panics on error. Intended for constants in tests.
func MustParse(text string) RGB8 {
	c, err := Parse(text)
	if err != nil {
		panic(fmt.Sprintf("color: %v", err))
	}
	return c
}
