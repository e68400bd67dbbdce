// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestMatchesAt(t *testing.T) {
	tests := []struct {
		name   string
		s      string
		i      int
		marker string
		want   bool
	}{
		{"marker is prefix", "bruh", 0, "br", true},
		{"marker present but not at offset", "bbruh", 0, "br", false},
		{"input shorter than marker", "b", 0, "br", false},
		{"offset match", "xx<script>", 2, "<script", true},
		{"offset at end of input", "ab", 2, "a", false},
		{"empty marker always matches", "ab", 1, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchesAt(tt.s, tt.i, tt.marker); got != tt.want {
				t.Errorf("matchesAt(%q, %d, %q) = %v, want %v", tt.s, tt.i, tt.marker, got, tt.want)
			}
		})
	}
}

func TestSeekOpenTag(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantCur int
		wantOK  bool
	}{
		{"empty input", "", 0, false},
		{"no script tag", "bruh", 0, false},
		{"bare tag", "aijisj\n<script>xyz", 15, true},
		{"tag with attributes", "aijisj\n<script src='bruh'>xyz", 26, true},
		{"unclosed opening tag", "aijisj\n<script src='bruh'xyz", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, ok := seekOpenTag(tt.input, 0)
			if ok != tt.wantOK {
				t.Fatalf("seekOpenTag(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && cur != tt.wantCur {
				t.Errorf("seekOpenTag(%q) cur = %d, want %d", tt.input, cur, tt.wantCur)
			}
		})
	}
}

func TestSeekKeywordOrClose(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantOK    bool
		wantClose bool
		wantByte  byte
	}{
		{"empty input", "", false, false, 0},
		{"no marker", "bruh", false, false, 0},
		{"schema keyword", "bruh thisn schema rurz</script>", true, false, 's'},
		{"recipe literal", `x "@type": "Recipe" y</script>`, true, false, '"'},
		{"close before keyword", "plain body</script>schema", true, true, '<'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, closeFound, ok := seekKeywordOrClose(tt.input, 0)
			if ok != tt.wantOK {
				t.Fatalf("seekKeywordOrClose(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if closeFound != tt.wantClose {
				t.Errorf("seekKeywordOrClose(%q) closeFound = %v, want %v", tt.input, closeFound, tt.wantClose)
			}
			if tt.input[cur] != tt.wantByte {
				t.Errorf("seekKeywordOrClose(%q) cursor byte = %q, want %q", tt.input, tt.input[cur], tt.wantByte)
			}
		})
	}
}

func TestSeekCloseTag(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantOK   bool
		wantByte byte
	}{
		{"empty input", "", false, 0},
		{"no close tag", "bruh", false, 0},
		{"cursor lands on last body byte", "bruh thisn schema rurz</script>", true, 'z'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cur, ok := seekCloseTag(tt.input, 0)
			if ok != tt.wantOK {
				t.Fatalf("seekCloseTag(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && tt.input[cur] != tt.wantByte {
				t.Errorf("seekCloseTag(%q) cursor byte = %q, want %q", tt.input, tt.input[cur], tt.wantByte)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "schema keyword",
			input: "<script> burn the naan schema</script>",
			want:  " burn the naan schema",
		},
		{
			name:  "recipe type literal",
			input: `<html><script type="application/ld+json">{"@type": "Recipe"}</script></html>`,
			want:  `{"@type": "Recipe"}`,
		},
		{
			name:  "first script skipped when it has no keyword",
			input: "<script>no keyword here</script><script>has schema here</script>",
			want:  "has schema here",
		},
		{
			name:  "attributes in opening tag tolerated",
			input: `junk<script src="x" async>schema body</script>trailer`,
			want:  "schema body",
		},
		{
			name:    "empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "no script element",
			input:   "a plain page about schema markup",
			wantErr: true,
		},
		{
			name:    "unterminated script",
			input:   "aijisj\n<script>xyz",
			wantErr: true,
		},
		{
			name:    "unterminated qualifying script",
			input:   "<script>late schema with no close",
			wantErr: true,
		},
		{
			name:    "opening tag never closes",
			input:   "<script src='x'",
			wantErr: true,
		},
		{
			name:    "no qualifying element anywhere",
			input:   "<script>one</script><script>two</script>",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrNoSchema) {
					t.Fatalf("Extract(%q) error = %v, want ErrNoSchema", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Extract(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// The scan is literal: "</script" inside a string constant of a
// non-qualifying script body still closes the element. That behavior is
// load-bearing for callers and must not be "fixed" by tag-aware parsing.
func TestExtractLiteralCloseInsideStringConstant(t *testing.T) {
	input := `<script>var s = "</script>";</script><script>{"@type": "Recipe"}</script>`
	got, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The scanner resumes after the literal close and lands on the
	// qualifying element.
	if got != `{"@type": "Recipe"}` {
		t.Errorf("Extract = %q, want the recipe payload", got)
	}
}

func TestExtractIsPure(t *testing.T) {
	input := "<script>pad schema pad</script>"
	first, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Extract(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Errorf("repeated Extract diverged: %q vs %q", first, second)
	}
}

func TestExtractLargeDocument(t *testing.T) {
	var b strings.Builder
	for range 1000 {
		b.WriteString("<p>filler text with no markers</p>\n")
	}
	b.WriteString(`<script type="application/ld+json">{"@context": "https://schema.org"}</script>`)
	got, err := Extract(b.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `{"@context": "https://schema.org"}` {
		t.Errorf("Extract = %q", got)
	}
}
