// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		max   int
		want  string
		valid bool
	}{
		{"short stays whole", "Naan", 40, "Naan", true},
		{"exact length stays whole", strings.Repeat("x", 40), 40, strings.Repeat("x", 40), true},
		{"long ascii", strings.Repeat("x", 50), 40, strings.Repeat("x", 37) + "...", true},
		{"multi-byte runes survive", strings.Repeat("Käsespätzle ", 5), 40, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.max)
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
			}
			assert.True(t, utf8.ValidString(got), "truncation must not split a rune")
			assert.LessOrEqual(t, len([]rune(got)), tt.max)
		})
	}
}
