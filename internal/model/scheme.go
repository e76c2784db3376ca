package model

import "fmt"

// Scheme is an itinerary optimization strategy. The empty value means unset.
type Scheme string

const (
	SchemeTime       Scheme = "time"
	SchemeExperience Scheme = "experience"
	SchemeValue      Scheme = "value"
	SchemeLowCarbon  Scheme = "lowCarbon"
)

// Schemes lists every known scheme in display order.
func Schemes() []Scheme {
	return []Scheme{SchemeTime, SchemeExperience, SchemeValue, SchemeLowCarbon}
}

// Valid reports whether s is a known scheme.
func (s Scheme) Valid() bool {
	switch s {
	case SchemeTime, SchemeExperience, SchemeValue, SchemeLowCarbon:
		return true
	}
	return false
}

// ParseScheme converts a string into a known scheme.
func ParseScheme(v string) (Scheme, error) {
	s := Scheme(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown scheme %q", ErrValidation, v)
	}
	return s, nil
}
