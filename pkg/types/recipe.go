// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Recipe holds the fields parsed from a page's schema.org Recipe payload.
// Every field except PageID is optional; sites publish wildly uneven
// structured data, so completeness is a property to measure, not assume.
type Recipe struct {
	// ID is the store-assigned row identifier, zero until stored.
	ID int64 `json:"id" yaml:"id"`

	// PageID links back to the page the recipe was parsed from.
	PageID int64 `json:"page_id" yaml:"page_id"`

	// Title is the recipe name.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Description is the free-text summary.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Date is the publication date (datePublished or dateCreated).
	Date time.Time `json:"date,omitzero" yaml:"date,omitempty"`

	// Keywords merges the schema keywords, categories, and cuisines,
	// deduplicated and sorted.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Authors lists author names, falling back to the site host when the
	// payload names nobody.
	Authors []string `json:"authors,omitempty" yaml:"authors,omitempty"`

	// Images lists image URLs.
	Images []string `json:"images,omitempty" yaml:"images,omitempty"`

	// Rating is the aggregate rating value.
	Rating float64 `json:"rating,omitempty" yaml:"rating,omitempty"`

	// RatingCount combines rating and review counts.
	RatingCount int `json:"rating_count,omitempty" yaml:"rating_count,omitempty"`

	// PrepTime, CookTime, and TotalTime come from the ISO 8601 duration
	// fields; TotalTime falls back to PrepTime+CookTime.
	PrepTime  time.Duration `json:"prep_time,omitempty" yaml:"prep_time,omitempty"`
	CookTime  time.Duration `json:"cook_time,omitempty" yaml:"cook_time,omitempty"`
	TotalTime time.Duration `json:"total_time,omitempty" yaml:"total_time,omitempty"`

	// Servings is the yield, kept textual ("4 servings" beats "4").
	Servings string `json:"servings,omitempty" yaml:"servings,omitempty"`

	// Ingredients and Instructions are kept in source order.
	Ingredients  []string `json:"ingredients,omitempty" yaml:"ingredients,omitempty"`
	Instructions []string `json:"instructions,omitempty" yaml:"instructions,omitempty"`

	// Nutrition holds per-serving nutrition facts.
	Nutrition Nutrition `json:"nutrition" yaml:"nutrition"`
}

// IsComplete reports whether every field a search result card needs is
// populated. Complete recipes are worth following for more links;
// incomplete ones end their page's pipeline.
func (r Recipe) IsComplete() bool {
	return r.Title != "" &&
		r.Description != "" &&
		!r.Date.IsZero() &&
		len(r.Keywords) > 0 &&
		len(r.Authors) > 0 &&
		len(r.Images) > 0 &&
		r.Rating != 0 &&
		r.RatingCount != 0 &&
		r.TotalTime != 0 &&
		r.Servings != "" &&
		len(r.Ingredients) > 0 &&
		r.Nutrition.IsComplete()
}

// ShouldStore reports whether the recipe carries enough substance to keep.
// A recipe without ingredients is noise.
func (r Recipe) ShouldStore() bool {
	return len(r.Ingredients) > 0
}

// Nutrition holds parsed nutrition facts. Values are in the units
// schema.org prescribes: kcal for calories, grams or milligrams for the
// rest. Zero means absent.
type Nutrition struct {
	Calories      float64 `json:"calories,omitempty" yaml:"calories,omitempty"`
	Carbohydrates float64 `json:"carbohydrates,omitempty" yaml:"carbohydrates,omitempty"`
	Cholesterol   float64 `json:"cholesterol,omitempty" yaml:"cholesterol,omitempty"`
	Fat           float64 `json:"fat,omitempty" yaml:"fat,omitempty"`
	Fiber         float64 `json:"fiber,omitempty" yaml:"fiber,omitempty"`
	Protein       float64 `json:"protein,omitempty" yaml:"protein,omitempty"`
	SaturatedFat  float64 `json:"saturated_fat,omitempty" yaml:"saturated_fat,omitempty"`
	Sodium        float64 `json:"sodium,omitempty" yaml:"sodium,omitempty"`
	Sugar         float64 `json:"sugar,omitempty" yaml:"sugar,omitempty"`
}

// IsComplete reports whether every nutrition field is populated.
func (n Nutrition) IsComplete() bool {
	return n.Calories != 0 &&
		n.Carbohydrates != 0 &&
		n.Cholesterol != 0 &&
		n.Fat != 0 &&
		n.Fiber != 0 &&
		n.Protein != 0 &&
		n.SaturatedFat != 0 &&
		n.Sodium != 0 &&
		n.Sugar != 0
}
