// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema locates and decodes the JSON-LD payload embedded in a
// recipe page. Extraction is a single forward pass over the raw HTML
// with literal prefix matching; it deliberately does not parse markup.
package schema

import (
	"errors"
	"strings"
)

// ErrNoSchema is returned when no script element qualifies: the document
// has no <script> at all, no script body mentions a schema keyword before
// its closing tag, or the qualifying element is never closed. Callers get
// no finer distinction.
var ErrNoSchema = errors.New("no schema script element found")

const (
	openTag       = "<script"
	closeTag      = "</script"
	keywordSchema = "schema"
	keywordRecipe = `"@type": "Recipe"`
)

// scanState drives the extraction state machine. The terminal outcomes
// (done, failed) are states of their own rather than overloaded handler
// return codes.
type scanState int

const (
	stateSeekOpenTag scanState = iota
	stateSeekKeywordOrClose
	stateSeekCloseTag
	stateDone
	stateFailed
)

// matchesAt reports whether marker occurs at byte offset i of s. Input
// shorter than the marker is a non-match, not a fault.
func matchesAt(s string, i int, marker string) bool {
	return strings.HasPrefix(s[i:], marker)
}

// seekOpenTag advances to the next "<script" marker, skips the rest of
// the opening tag through its '>', and returns the cursor positioned on
// the first byte of the element body. Attributes in the opening tag are
// tolerated but not inspected.
func seekOpenTag(s string, i int) (cur int, ok bool) {
	for !matchesAt(s, i, openTag) {
		if i >= len(s) {
			return i, false
		}
		i++
	}
	i += len(openTag)

	for {
		if i >= len(s) {
			return i, false
		}
		if s[i] == '>' {
			break
		}
		i++
	}
	return i + 1, true
}

// seekKeywordOrClose advances until one of "</script", "schema", or the
// Recipe type literal occurs at the cursor, whichever comes first in the
// text. It returns the cursor on the matched marker; closeFound reports
// that the element ended without a qualifying keyword.
func seekKeywordOrClose(s string, i int) (cur int, closeFound, ok bool) {
	for !matchesAt(s, i, closeTag) && !matchesAt(s, i, keywordSchema) && !matchesAt(s, i, keywordRecipe) {
		if i >= len(s) {
			return i, false, false
		}
		i++
	}
	return i, matchesAt(s, i, closeTag), true
}

// seekCloseTag advances to the "</script" marker and returns the cursor
// stepped back one byte, onto the last byte of the element body. The
// extracted span runs from the byte after the opening tag's '>' through
// this byte inclusive.
func seekCloseTag(s string, i int) (cur int, ok bool) {
	for !matchesAt(s, i, closeTag) {
		if i >= len(s) {
			return i, false
		}
		i++
	}
	return i - 1, true
}

// Extract returns the body of the first <script> element whose contents
// mention "schema" or "@type": "Recipe" before the element closes.
// Script elements without a qualifying keyword are skipped and the scan
// resumes at their closing tag. Matching is byte-literal: an occurrence
// of these markers anywhere in the text, including inside a string
// literal of a non-matching script body, counts. Extract returns
// ErrNoSchema when the document has no qualifying element.
func Extract(input string) (string, error) {
	var (
		cur   int
		start int
		state = stateSeekOpenTag
	)

	for {
		switch state {
		case stateSeekOpenTag:
			next, ok := seekOpenTag(input, cur)
			if !ok {
				state = stateFailed
				break
			}
			cur = next
			start = cur
			state = stateSeekKeywordOrClose

		case stateSeekKeywordOrClose:
			next, closeFound, ok := seekKeywordOrClose(input, cur)
			if !ok {
				state = stateFailed
				break
			}
			cur = next
			if closeFound {
				// Element ended without a keyword; look for a later one.
				state = stateSeekOpenTag
			} else {
				state = stateSeekCloseTag
			}

		case stateSeekCloseTag:
			next, ok := seekCloseTag(input, cur)
			if !ok {
				state = stateFailed
				break
			}
			cur = next
			state = stateDone

		case stateDone:
			return strings.Clone(input[start : cur+1]), nil

		case stateFailed:
			return "", ErrNoSchema
		}
	}
}
