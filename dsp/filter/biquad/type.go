package biquad

import (
	"fmt"
	"strings"
)

// Type selects one of the canonical second-order responses.
type Type int

const (
	LowPass Type = iota
	HighPass
	BandPass
	Notch
	Peaking
	LowShelf
	HighShelf
	AllPass
)

var typeNames = [...]string{
	LowPass:   "lowpass",
	HighPass:  "highpass",
	BandPass:  "bandpass",
	Notch:     "notch",
	Peaking:   "peaking",
	LowShelf:  "lowshelf",
	HighShelf: "highshelf",
	AllPass:   "allpass",
}

// String returns the lower-case name of t.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}

	return typeNames[t]
}

// Valid reports whether t is one of the defined responses.
func (t Type) Valid() bool {
	return t >= LowPass && t <= AllPass
}

// ParseType maps a name such as "lowshelf" or "low-shelf" to a Type.
func ParseType(name string) (Type, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(name))
	for i, n := range typeNames {
		if n == key {
			return Type(i), nil
		}
	}

	return LowPass, fmt.Errorf("biquad: unknown filter type %q", name)
}

// UsesGain reports whether the response depends on the gain parameter.
func (t Type) UsesGain() bool {
	return t == Peaking || t == LowShelf || t == HighShelf
}
