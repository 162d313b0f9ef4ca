package domain

import (
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty defaults to anonymous", "", AnonymousName},
		{"plain name passes through", "alice", "alice"},
		{"overlong name truncated", strings.Repeat("a", 50), strings.Repeat("a", MaxUsernameLen)},
		// 35 ascii bytes then a multi-byte rune straddling the limit:
		// the whole rune goes, never a partial byte sequence.
		{"truncation keeps runes whole", strings.Repeat("a", 35) + strings.Repeat("é", 10), strings.Repeat("a", 35)},
		{"multibyte name inside limit passes through", strings.Repeat("日", 12), strings.Repeat("日", 12)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayName(tt.in); got != tt.want {
				t.Fatalf("DisplayName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
