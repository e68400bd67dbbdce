// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
)

// ErrNoRecipe is returned when a payload parses as JSON-LD but contains
// no Recipe node.
var ErrNoRecipe = errors.New("no recipe node in schema payload")

// graphNode is the minimal view needed to pick a node out of a @graph
// wrapper. Type is `any` because sites publish "@type" as both a string
// and an array of strings.
type graphNode struct {
	Type any `json:"@type"`
}

// Decode parses an extracted payload and returns the JSON document
// describing the recipe. Payloads wrapped in a "@graph" array yield the
// first node typed "Recipe"; anything else is returned whole. Payloads
// that are not valid JSON get one repair attempt (sites ship JSON-LD
// with literal newlines, trailing commas, and single quotes) before
// Decode gives up.
func Decode(payload string) (json.RawMessage, error) {
	doc := []byte(payload)
	if !json.Valid(doc) {
		repaired, err := jsonrepair.JSONRepair(payload)
		if err != nil {
			return nil, fmt.Errorf("repairing schema payload: %w", err)
		}
		doc = []byte(repaired)
		if !json.Valid(doc) {
			return nil, fmt.Errorf("schema payload not valid JSON after repair")
		}
	}

	var wrapper struct {
		Graph []json.RawMessage `json:"@graph"`
	}
	// An unmarshal failure here means the payload is a bare array or
	// scalar; those have no @graph and pass through whole.
	if err := json.Unmarshal(doc, &wrapper); err != nil || len(wrapper.Graph) == 0 {
		return json.RawMessage(doc), nil
	}

	for _, raw := range wrapper.Graph {
		var node graphNode
		if err := json.Unmarshal(raw, &node); err != nil {
			continue
		}
		if isRecipeType(node.Type) {
			return raw, nil
		}
	}
	return nil, ErrNoRecipe
}

// isRecipeType reports whether a "@type" value names a Recipe, covering
// both the string and array encodings.
func isRecipeType(v any) bool {
	switch t := v.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, elem := range t {
			if s, ok := elem.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}
