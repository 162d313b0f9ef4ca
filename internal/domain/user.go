// Package domain contains entities without logic, just meta-data.
package domain

import "unicode/utf8"

const (
	MaxUsernameLen = 36
	AnonymousName  = "Anonymous"
)

// DisplayName normalizes a client-supplied name. Empty collapses to
// the anonymous placeholder, overlong names are truncated on a rune
// boundary so no broken UTF-8 ends up in roster broadcasts.
func DisplayName(raw string) string {
	if raw == "" {
		return AnonymousName
	}
	if len(raw) <= MaxUsernameLen {
		return raw
	}
	cut := MaxUsernameLen
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut]
}
