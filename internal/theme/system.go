package theme

import (
	"net/http"
	"strconv"
	"strings"
)

// SystemPreference reports the color scheme the environment asks for, if it
// says anything at all.
type SystemPreference func() (Mode, bool)

// NoSystemPreference never reports a preference.
func NoSystemPreference() (Mode, bool) { return "", false }

// ClientHintHeader is the user-agent client hint carrying prefers-color-scheme.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// FromClientHint reads the browser's prefers-color-scheme client hint.
func FromClientHint(r *http.Request) SystemPreference {
	return func() (Mode, bool) {
		if r == nil {
			return "", false
		}
		m, err := Parse(strings.Trim(r.Header.Get(ClientHintHeader), `"`))
		if err != nil {
			return "", false
		}
		return m, true
	}
}

// FromEnv reads SITEKIT_COLOR_SCHEME, then the terminal's COLORFGBG
// ("fg;bg", where a background of 0-6 or 8 is dark).
func FromEnv(getenv func(string) string) SystemPreference {
	return func() (Mode, bool) {
		if m, err := Parse(getenv("SITEKIT_COLOR_SCHEME")); err == nil {
			return m, true
		}
		fgbg := getenv("COLORFGBG")
		if fgbg == "" {
			return "", false
		}
		parts := strings.Split(fgbg, ";")
		bg, err := strconv.Atoi(parts[len(parts)-1])
		if err != nil {
			return "", false
		}
		if bg <= 6 || bg == 8 {
			return Dark, true
		}
		return Light, true
	}
}

// FirstOf asks each detector in order and returns the first answer.
func FirstOf(prefs ...SystemPreference) SystemPreference {
	return func() (Mode, bool) {
		for _, p := range prefs {
			if p == nil {
				continue
			}
			if m, ok := p(); ok {
				return m, true
			}
		}
		return "", false
	}
}
