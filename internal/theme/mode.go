// Package theme holds the light/dark display preference: the value itself,
// where it is persisted, how the system default is detected, and the
// observable Manager views subscribe to.
package theme

import (
	"fmt"
	"strings"
)

// Mode is a display color scheme.
type Mode string

const (
	Light Mode = "light"
	Dark  Mode = "dark"
)

// Default is used when neither a stored nor a system preference exists.
const Default = Light

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, nil
	case Dark:
		return Dark, nil
	}
	return "", fmt.Errorf("unknown theme mode %q (want light or dark)", s)
}

// Opposite returns the other mode.
func (m Mode) Opposite() Mode {
	if m == Dark {
		return Light
	}
	return Dark
}

func (m Mode) String() string { return string(m) }

// Valid reports whether m is one of the two modes.
func (m Mode) Valid() bool { return m == Light || m == Dark }

// Class is the CSS class set on the root element alongside data-theme. Only
// dark mode carries one.
func (m Mode) Class() string {
	if m == Dark {
		return "dark"
	}
	return ""
}
