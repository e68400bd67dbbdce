// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePlainObject(t *testing.T) {
	payload := `{"@type": "Recipe", "name": "Naan"}`

	raw, err := Decode(payload)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Naan", doc["name"])
}

func TestDecodeGraphSelectsRecipeNode(t *testing.T) {
	payload := `{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "WebSite", "name": "Some Food Blog"},
			{"@type": "Recipe", "name": "Schwarzbrot"},
			{"@type": "BreadcrumbList"}
		]
	}`

	raw, err := Decode(payload)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Schwarzbrot", doc["name"])
}

func TestDecodeGraphTypeArray(t *testing.T) {
	payload := `{"@graph": [{"@type": ["Recipe", "NewsArticle"], "name": "Muffaletta"}]}`

	raw, err := Decode(payload)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Muffaletta", doc["name"])
}

func TestDecodeGraphWithoutRecipe(t *testing.T) {
	payload := `{"@graph": [{"@type": "WebSite"}, {"@type": "Person"}]}`

	_, err := Decode(payload)
	assert.True(t, errors.Is(err, ErrNoRecipe))
}

func TestDecodeRepairsBrokenJSON(t *testing.T) {
	// Trailing comma and single quotes, the two most common JSON-LD sins.
	payload := `{'@type': 'Recipe', 'name': 'Parmesan Crisps',}`

	raw, err := Decode(payload)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Parmesan Crisps", doc["name"])
}

func TestDecodeArrayPayloadPassesThrough(t *testing.T) {
	payload := `[{"@type": "Recipe", "name": "Dal"}]`

	raw, err := Decode(payload)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}
