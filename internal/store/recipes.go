// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

// AddRecipe stores a parsed recipe. It reports false without error when
// a recipe with the same title and description already exists; the same
// recipe syndicated across site mirrors should land once.
func (s *Store) AddRecipe(ctx context.Context, r types.Recipe) (int64, bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM recipes WHERE title = ? AND description = ?`,
		r.Title, r.Description).Scan(&exists)
	if err != nil {
		return 0, false, fmt.Errorf("checking recipe exists: %w", err)
	}
	if exists > 0 {
		return 0, false, nil
	}

	var date string
	if !r.Date.IsZero() {
		date = r.Date.UTC().Format(time.RFC3339)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO recipes (
			page_id, title, description, date, keywords, authors, images,
			rating, rating_count, prep_seconds, cook_seconds, total_seconds,
			servings, ingredients, instructions,
			calories, carbohydrates, cholesterol, fat, fiber, protein,
			saturated_fat, sodium, sugar
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PageID, r.Title, r.Description, date,
		jsonList(r.Keywords), jsonList(r.Authors), jsonList(r.Images),
		r.Rating, r.RatingCount,
		int64(r.PrepTime.Seconds()), int64(r.CookTime.Seconds()), int64(r.TotalTime.Seconds()),
		r.Servings, jsonList(r.Ingredients), jsonList(r.Instructions),
		r.Nutrition.Calories, r.Nutrition.Carbohydrates, r.Nutrition.Cholesterol,
		r.Nutrition.Fat, r.Nutrition.Fiber, r.Nutrition.Protein,
		r.Nutrition.SaturatedFat, r.Nutrition.Sodium, r.Nutrition.Sugar)
	if err != nil {
		return 0, false, fmt.Errorf("inserting recipe: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("reading recipe id: %w", err)
	}
	return id, true, nil
}

// Recipe fetches one recipe by id.
func (s *Store) Recipe(ctx context.Context, id int64) (types.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, selectRecipe+` WHERE id = ?`, id)
	if err != nil {
		return types.Recipe{}, fmt.Errorf("selecting recipe: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return types.Recipe{}, err
		}
		return types.Recipe{}, fmt.Errorf("recipe %d: %w", id, sql.ErrNoRows)
	}
	return scanRecipe(rows)
}

// RecipeCount returns the number of stored recipes.
func (s *Store) RecipeCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting recipes: %w", err)
	}
	return n, nil
}

// IncompleteRecipeIDs lists recipes whose source page stopped at
// parsed-incomplete, the candidates for LLM refinement.
func (s *Store) IncompleteRecipeIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id FROM recipes r
		 JOIN pages p ON p.id = r.page_id
		 WHERE p.status = ?`, string(types.PageParsedIncomplete))
	if err != nil {
		return nil, fmt.Errorf("selecting incomplete recipes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UpdateRecipe overwrites a stored recipe's fields, keeping its id and
// page linkage. Used by refinement.
func (s *Store) UpdateRecipe(ctx context.Context, r types.Recipe) error {
	var date string
	if !r.Date.IsZero() {
		date = r.Date.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE recipes SET
			title = ?, description = ?, date = ?, keywords = ?, authors = ?,
			images = ?, rating = ?, rating_count = ?, prep_seconds = ?,
			cook_seconds = ?, total_seconds = ?, servings = ?, ingredients = ?,
			instructions = ?, calories = ?, carbohydrates = ?, cholesterol = ?,
			fat = ?, fiber = ?, protein = ?, saturated_fat = ?, sodium = ?, sugar = ?
		 WHERE id = ?`,
		r.Title, r.Description, date, jsonList(r.Keywords), jsonList(r.Authors),
		jsonList(r.Images), r.Rating, r.RatingCount, int64(r.PrepTime.Seconds()),
		int64(r.CookTime.Seconds()), int64(r.TotalTime.Seconds()), r.Servings,
		jsonList(r.Ingredients), jsonList(r.Instructions),
		r.Nutrition.Calories, r.Nutrition.Carbohydrates, r.Nutrition.Cholesterol,
		r.Nutrition.Fat, r.Nutrition.Fiber, r.Nutrition.Protein,
		r.Nutrition.SaturatedFat, r.Nutrition.Sodium, r.Nutrition.Sugar,
		r.ID)
	if err != nil {
		return fmt.Errorf("updating recipe: %w", err)
	}
	return nil
}

// SearchRecipes runs an FTS5 match over title, description, keywords,
// and ingredients, ranked by relevance. limit <= 0 uses the store
// default.
func (s *Store) SearchRecipes(ctx context.Context, term string, limit int) ([]types.Recipe, error) {
	if limit <= 0 {
		limit = s.maxResults
	}
	rows, err := s.db.QueryContext(ctx,
		selectRecipePrefixed+`
		 FROM recipes_fts
		 JOIN recipes r ON r.id = recipes_fts.rowid
		 WHERE recipes_fts MATCH ?
		 ORDER BY recipes_fts.rank
		 LIMIT ?`, term, limit)
	if err != nil {
		return nil, fmt.Errorf("searching recipes: %w", err)
	}
	defer rows.Close()

	var out []types.Recipe
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const recipeColumns = `id, page_id, title, description, date, keywords, authors, images,
	rating, rating_count, prep_seconds, cook_seconds, total_seconds,
	servings, ingredients, instructions,
	calories, carbohydrates, cholesterol, fat, fiber, protein,
	saturated_fat, sodium, sugar`

const selectRecipe = `SELECT ` + recipeColumns + ` FROM recipes`

const selectRecipePrefixed = `SELECT r.id, r.page_id, r.title, r.description, r.date,
	r.keywords, r.authors, r.images, r.rating, r.rating_count,
	r.prep_seconds, r.cook_seconds, r.total_seconds, r.servings,
	r.ingredients, r.instructions, r.calories, r.carbohydrates,
	r.cholesterol, r.fat, r.fiber, r.protein, r.saturated_fat,
	r.sodium, r.sugar`

func scanRecipe(rows *sql.Rows) (types.Recipe, error) {
	var (
		r                                      types.Recipe
		date                                   sql.NullString
		keywords, authors, images              sql.NullString
		ingredients, instructions              sql.NullString
		prepSeconds, cookSeconds, totalSeconds int64
	)
	err := rows.Scan(&r.ID, &r.PageID, &r.Title, &r.Description, &date,
		&keywords, &authors, &images, &r.Rating, &r.RatingCount,
		&prepSeconds, &cookSeconds, &totalSeconds, &r.Servings,
		&ingredients, &instructions,
		&r.Nutrition.Calories, &r.Nutrition.Carbohydrates, &r.Nutrition.Cholesterol,
		&r.Nutrition.Fat, &r.Nutrition.Fiber, &r.Nutrition.Protein,
		&r.Nutrition.SaturatedFat, &r.Nutrition.Sodium, &r.Nutrition.Sugar)
	if err != nil {
		return types.Recipe{}, fmt.Errorf("scanning recipe: %w", err)
	}

	if date.String != "" {
		if t, err := time.Parse(time.RFC3339, date.String); err == nil {
			r.Date = t
		}
	}
	r.Keywords = fromJSONList(keywords.String)
	r.Authors = fromJSONList(authors.String)
	r.Images = fromJSONList(images.String)
	r.Ingredients = fromJSONList(ingredients.String)
	r.Instructions = fromJSONList(instructions.String)
	r.PrepTime = time.Duration(prepSeconds) * time.Second
	r.CookTime = time.Duration(cookSeconds) * time.Second
	r.TotalTime = time.Duration(totalSeconds) * time.Second
	return r, nil
}

// jsonList encodes a string slice as a JSON text column; nil encodes as
// "[]" so the column is always valid JSON.
func jsonList(items []string) string {
	if items == nil {
		items = []string{}
	}
	data, _ := json.Marshal(items)
	return string(data)
}

func fromJSONList(data string) []string {
	if data == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil || len(items) == 0 {
		return nil
	}
	return items
}
