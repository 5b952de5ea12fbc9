// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package g560

import (
	"errors"
	"fmt"
)

// Zone is one of the four physical light regions of the speaker set
type Zone uint8

// Zones in canonical order
const (
	LeftPrimary Zone = iota
	LeftSecondary
	RightPrimary
	RightSecondary

	zoneCount = 4
)

var allZones = []Zone{LeftPrimary, LeftSecondary, RightPrimary, RightSecondary}

// AllZones returns every zone in canonical order
func AllZones() []Zone {
	return append([]Zone(nil), allZones...)
}

// ErrInvalidZone is recorded for commands addressed to an undefined zone
var ErrInvalidZone = errors.New("invalid zone")

// Address returns the zone's device address byte. It panics if z is not
// Valid.
func (z Zone) Address() uint8 {
	switch z {
	case LeftPrimary:
		return 0x00
	case LeftSecondary:
		return 0x02
	case RightPrimary:
		return 0x01
	case RightSecondary:
		return 0x03
	default:
		panic(fmt.Sprintf("g560: invalid zone %d", z))
	}
}

// Valid reports whether z is one of the four defined zones
func (z Zone) Valid() bool {
	return z <= RightSecondary
}

func (z Zone) String() string {
	switch z {
	case LeftPrimary:
		return "left-primary"
	case LeftSecondary:
		return "left-secondary"
	case RightPrimary:
		return "right-primary"
	case RightSecondary:
		return "right-secondary"
	default:
		return fmt.Sprintf("zone(%d)", uint8(z))
	}
}

// zoneFromAddress is the inverse of Zone.Address
func zoneFromAddress(addr uint8) (Zone, bool) {
	for _, z := range allZones {
		if z.Address() == addr {
			return z, true
		}
	}
	return 0, false
}

// Alias is a target name and the zones it selects
type Alias struct {
	Name  string
	Zones []Zone
}

// aliases in display order. Each zone accepts front/back and
// primary/secondary spellings, each joined, dashed or underscored.
var aliases = buildAliases()

var aliasIndex = func() map[string][]Zone {
	m := make(map[string][]Zone, len(aliases))
	for _, a := range aliases {
		m[a.Name] = a.Zones
	}
	return m
}()

func buildAliases() []Alias {
	var out []Alias

	single := []struct {
		side, pos, alt string
		zone           Zone
	}{
		{"left", "front", "primary", LeftPrimary},
		{"left", "back", "secondary", LeftSecondary},
		{"right", "front", "primary", RightPrimary},
		{"right", "back", "secondary", RightSecondary},
	}
	for _, s := range single {
		for _, pos := range []string{s.pos, s.alt} {
			for _, sep := range []string{"", "-", "_"} {
				out = append(out, Alias{Name: s.side + sep + pos, Zones: []Zone{s.zone}})
			}
		}
	}

	out = append(out,
		Alias{Name: "left", Zones: []Zone{LeftPrimary, LeftSecondary}},
		Alias{Name: "right", Zones: []Zone{RightPrimary, RightSecondary}},
		Alias{Name: "front", Zones: []Zone{LeftPrimary, RightPrimary}},
		Alias{Name: "primary", Zones: []Zone{LeftPrimary, RightPrimary}},
		Alias{Name: "back", Zones: []Zone{LeftSecondary, RightSecondary}},
		Alias{Name: "secondary", Zones: []Zone{LeftSecondary, RightSecondary}},
		Alias{Name: "all", Zones: allZones},
	)
	return out
}

// Aliases returns the full alias table in display order
func Aliases() []Alias {
	out := make([]Alias, len(aliases))
	for i, a := range aliases {
		out[i] = Alias{Name: a.Name, Zones: append([]Zone(nil), a.Zones...)}
	}
	return out
}

// Lookup returns the zones selected by a target name. Matching is case
// sensitive. An unknown name selects no zones and is not an error.
func Lookup(name string) []Zone {
	return append([]Zone(nil), aliasIndex[name]...)
}

// LookupAll resolves several target names and returns the union of their
// zones, without duplicates, in canonical order.
func LookupAll(names []string) []Zone {
	var seen [zoneCount]bool
	for _, name := range names {
		for _, z := range aliasIndex[name] {
			seen[z] = true
		}
	}

	var out []Zone
	for _, z := range allZones {
		if seen[z] {
			out = append(out, z)
		}
	}
	return out
}

// UnknownNames returns the names that select no zone, in input order
func UnknownNames(names []string) []string {
	var out []string
	for _, name := range names {
		if _, ok := aliasIndex[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}
