// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package recipe turns a decoded schema.org Recipe document into a
// typed Recipe. Field accessors are individually tolerant: recipe
// markup in the wild encodes the same field a half-dozen ways, and a
// site getting one field wrong must not cost the others.
package recipe

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

// FromSchema parses a schema.org Recipe JSON document. pageURL supplies
// the author fallback (the site host) when the payload names nobody.
// Fields that fail to parse are left zero; the caller decides whether
// the result is worth keeping via Recipe.ShouldStore.
func FromSchema(doc json.RawMessage, pageURL string) (types.Recipe, error) {
	var v map[string]any
	if err := json.Unmarshal(doc, &v); err != nil {
		return types.Recipe{}, fmt.Errorf("unmarshaling recipe document: %w", err)
	}

	prep := duration(v, "prepTime")
	cook := duration(v, "cookTime")
	total := duration(v, "totalTime")
	if total == 0 && prep > 0 && cook > 0 {
		total = prep + cook
	}

	return types.Recipe{
		Title:        str(v["name"]),
		Description:  str(v["description"]),
		Date:         date(v),
		Keywords:     keywords(v),
		Authors:      authors(v, pageURL),
		Images:       images(v),
		Rating:       rating(v),
		RatingCount:  ratingCount(v),
		PrepTime:     prep,
		CookTime:     cook,
		TotalTime:    total,
		Servings:     servings(v),
		Ingredients:  stringItems(v["recipeIngredient"]),
		Instructions: instructions(v),
		Nutrition:    nutrition(v),
	}, nil
}

// str returns v when it is a string, "" otherwise.
func str(v any) string {
	s, _ := v.(string)
	return s
}

// stringItems flattens a value that should be an array of strings.
func stringItems(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, elem := range arr {
		if s, ok := elem.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// images accepts the four encodings sites use for "image": a bare URL,
// an array of URLs, an ImageObject, and an array of ImageObjects.
func images(v map[string]any) []string {
	switch img := v["image"].(type) {
	case string:
		return []string{img}
	case map[string]any:
		if u := str(img["url"]); u != "" {
			return []string{u}
		}
	case []any:
		var out []string
		for _, elem := range img {
			switch e := elem.(type) {
			case string:
				out = append(out, e)
			case map[string]any:
				if u := str(e["url"]); u != "" {
					out = append(out, u)
				}
			}
		}
		return out
	}
	return nil
}

// authors collects author names from a single object or an array of
// objects. When the payload names nobody the site host stands in, so a
// result card always has an attribution line.
func authors(v map[string]any, pageURL string) []string {
	var nodes []any
	switch a := v["author"].(type) {
	case []any:
		nodes = a
	case map[string]any:
		nodes = []any{a}
	}

	var out []string
	for _, node := range nodes {
		if m, ok := node.(map[string]any); ok {
			if name := str(m["name"]); name != "" {
				out = append(out, name)
			}
		}
	}
	if len(out) > 0 {
		return out
	}

	if u, err := url.Parse(pageURL); err == nil && u.Hostname() != "" {
		return []string{u.Hostname()}
	}
	return nil
}

// missingSeconds matches timestamps like 2009-09-06T20:07Z, which drop
// the seconds and fail RFC 3339 parsing on some sites.
var missingSeconds = regexp.MustCompile(`T\d\d:\d\dZ`)

// dateLayouts are tried in order against datePublished/dateCreated.
// The long-form layouts cover known holdout sites.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006 at 3:04PM",
	"January 2, 2006",
}

func date(v map[string]any) time.Time {
	s := str(v["datePublished"])
	if s == "" {
		s = str(v["dateCreated"])
	}
	if s == "" {
		return time.Time{}
	}
	if missingSeconds.MatchString(s) {
		s = strings.Replace(s, "Z", ":00Z", 1)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// servings picks a recipeYield out of its string/number/array encodings.
// Textual yields ("4 servings") are preferred over bare numbers, and the
// string forms over numeric ones.
func servings(v map[string]any) string {
	var text, wrappedNumber, number string

	consider := func(elem any) {
		switch e := elem.(type) {
		case string:
			if _, err := strconv.Atoi(strings.TrimSpace(e)); err != nil {
				if text == "" {
					text = e
				}
			} else if wrappedNumber == "" {
				wrappedNumber = e
			}
		case float64:
			if number == "" {
				number = strconv.FormatFloat(e, 'f', -1, 64)
			}
		}
	}

	switch y := v["recipeYield"].(type) {
	case []any:
		for _, elem := range y {
			consider(elem)
		}
	default:
		consider(y)
	}

	switch {
	case text != "":
		return text
	case wrappedNumber != "":
		return wrappedNumber
	default:
		return number
	}
}

func duration(v map[string]any, key string) time.Duration {
	s := str(v[key])
	if s == "" {
		return 0
	}
	d, ok := parseISODuration(s)
	if !ok {
		return 0
	}
	return d
}

// instructions accepts a bare string, an array of strings, or an array
// of HowToStep objects (using "text", falling back to "name").
func instructions(v map[string]any) []string {
	switch ins := v["recipeInstructions"].(type) {
	case string:
		return []string{ins}
	case []any:
		var out []string
		for _, elem := range ins {
			switch e := elem.(type) {
			case string:
				out = append(out, e)
			case map[string]any:
				if s := str(e["text"]); s != "" {
					out = append(out, s)
				} else if s := str(e["name"]); s != "" {
					out = append(out, s)
				}
			}
		}
		return out
	}
	return nil
}

// num parses a value that may arrive as a JSON number or a numeric
// string, optionally stripping unit suffixes first.
func num(v any, suffixes ...string) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		for _, suffix := range suffixes {
			n = strings.ReplaceAll(n, suffix, "")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

func rating(v map[string]any) float64 {
	agg, ok := v["aggregateRating"].(map[string]any)
	if !ok {
		return 0
	}
	return num(agg["ratingValue"])
}

// ratingCount sums ratingCount and reviewCount; sites split the same
// population across the two fields.
func ratingCount(v map[string]any) int {
	agg, ok := v["aggregateRating"].(map[string]any)
	if !ok {
		return 0
	}
	return int(num(agg["ratingCount"])) + int(num(agg["reviewCount"]))
}

// keywords merges the comma-separated "keywords" field with the
// recipeCategory and recipeCuisine lists, trimmed, deduplicated, and
// sorted.
func keywords(v map[string]any) []string {
	var out []string
	for _, part := range strings.Split(str(v["keywords"]), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	for _, key := range []string{"recipeCategory", "recipeCuisine"} {
		switch val := v[key].(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				out = append(out, s)
			}
		case []any:
			for _, elem := range val {
				if s := strings.TrimSpace(str(elem)); s != "" {
					out = append(out, s)
				}
			}
		}
	}

	sort.Strings(out)
	return slices.Compact(out)
}

func nutrition(v map[string]any) types.Nutrition {
	n, ok := v["nutrition"].(map[string]any)
	if !ok {
		return types.Nutrition{}
	}
	return types.Nutrition{
		Calories:      num(n["calories"], "kcal", "calories"),
		Carbohydrates: num(n["carbohydrateContent"], "g"),
		Cholesterol:   num(n["cholesterolContent"], "mg"),
		Fat:           num(n["fatContent"], "g"),
		Fiber:         num(n["fiberContent"], "g"),
		Protein:       num(n["proteinContent"], "g"),
		SaturatedFat:  num(n["saturatedFatContent"], "g"),
		Sodium:        num(n["sodiumContent"], "mg"),
		Sugar:         num(n["sugarContent"], "g"),
	}
}
