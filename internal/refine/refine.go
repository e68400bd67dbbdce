// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine fills the gaps in stored incomplete recipes with an
// LLM pass over the page's schema payload. It only ever adds missing
// fields; parsed data wins over generated data.
package refine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/recipe-finder/internal/store"
	"github.com/pdiddy/recipe-finder/pkg/types"
)

const defaultMaxConcurrent = 2

// Backend abstracts the chat API so tests can supply a mock.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// OpenAIBackend calls an OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds a backend from cfg. BaseURL may point at any
// OpenAI-compatible server.
func NewOpenAIBackend(cfg types.RefineConfig) *OpenAIBackend {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &OpenAIBackend{client: openai.NewClientWithConfig(oc), model: cfg.Model}
}

// Complete sends one chat completion and returns the raw content.
func (b *OpenAIBackend) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: b.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion")
	}
	return resp.Choices[0].Message.Content, nil
}

const systemMessage = "You are a recipe data assistant. Respond with strict JSON only, no narration. " +
	"Given a schema.org payload and the fields already known, return a JSON object holding ONLY the " +
	"missing fields you can derive from the payload, using this schema: " +
	`{"title": string, "description": string, "date": "YYYY-MM-DD", "keywords": string[], ` +
	`"authors": string[], "images": string[], "rating": number, "rating_count": number, ` +
	`"prep_minutes": number, "cook_minutes": number, "total_minutes": number, "servings": string, ` +
	`"ingredients": string[], "instructions": string[], "nutrition": {"calories": number, ` +
	`"carbohydrates": number, "cholesterol": number, "fat": number, "fiber": number, "protein": number, ` +
	`"saturated_fat": number, "sodium": number, "sugar": number}}. ` +
	"Omit any field the payload gives no basis for. Never invent values."

// response is the patch shape the model is asked for. Durations come
// back in minutes; JSON has no duration type.
type response struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	Keywords     []string `json:"keywords"`
	Authors      []string `json:"authors"`
	Images       []string `json:"images"`
	Rating       float64  `json:"rating"`
	RatingCount  int      `json:"rating_count"`
	PrepMinutes  float64  `json:"prep_minutes"`
	CookMinutes  float64  `json:"cook_minutes"`
	TotalMinutes float64  `json:"total_minutes"`
	Servings     string   `json:"servings"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Nutrition    struct {
		Calories      float64 `json:"calories"`
		Carbohydrates float64 `json:"carbohydrates"`
		Cholesterol   float64 `json:"cholesterol"`
		Fat           float64 `json:"fat"`
		Fiber         float64 `json:"fiber"`
		Protein       float64 `json:"protein"`
		SaturatedFat  float64 `json:"saturated_fat"`
		Sodium        float64 `json:"sodium"`
		Sugar         float64 `json:"sugar"`
	} `json:"nutrition"`
}

// Summary holds counts from a batch refinement run.
type Summary struct {
	Refined   int
	Completed int
	Failed    int
}

// Total returns the number of recipes processed.
func (s Summary) Total() int {
	return s.Refined + s.Completed + s.Failed
}

// Refiner drives refinement against the store.
type Refiner struct {
	store   *store.Store
	backend Backend
	cfg     types.RefineConfig
	log     zerolog.Logger
}

// NewRefiner builds a Refiner, filling defaults for unset knobs.
func NewRefiner(s *store.Store, backend Backend, cfg types.RefineConfig, log zerolog.Logger) *Refiner {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	return &Refiner{store: s, backend: backend, cfg: cfg, log: log}
}

// RefineRecipe fills a stored recipe's missing fields from its page's
// schema payload. When refinement completes the recipe, the page moves
// on to following and its payload is dropped.
func (r *Refiner) RefineRecipe(ctx context.Context, id int64) (types.Recipe, error) {
	recipe, err := r.store.Recipe(ctx, id)
	if err != nil {
		return types.Recipe{}, err
	}
	if recipe.IsComplete() {
		return recipe, nil
	}

	page, err := r.store.Page(ctx, recipe.PageID)
	if err != nil {
		return types.Recipe{}, err
	}
	if page.Schema == "" {
		return types.Recipe{}, fmt.Errorf("page %d has no stored payload", page.ID)
	}

	raw, err := r.backend.Complete(ctx, systemMessage, buildPrompt(recipe, page.Schema))
	if err != nil {
		return types.Recipe{}, err
	}
	patch, err := decodeResponse(raw)
	if err != nil {
		return types.Recipe{}, err
	}

	merged := merge(recipe, patch)
	if err := r.store.UpdateRecipe(ctx, merged); err != nil {
		return types.Recipe{}, err
	}

	if merged.IsComplete() {
		if err := r.store.SetSchema(ctx, page.ID, ""); err != nil {
			return merged, err
		}
		if err := r.store.SetStatus(ctx, page.ID, types.PagePendingFollowing); err != nil {
			return merged, err
		}
	}
	return merged, nil
}

// RefineAll refines every incomplete stored recipe with bounded
// concurrency, continuing after individual failures.
func (r *Refiner) RefineAll(ctx context.Context) (Summary, error) {
	ids, err := r.store.IncompleteRecipeIDs(ctx)
	if err != nil {
		return Summary{}, err
	}

	results := make([]int, len(ids)) // 0 failed, 1 refined, 2 completed
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.MaxConcurrent)
	for i, id := range ids {
		g.Go(func() error {
			merged, err := r.RefineRecipe(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Warn().Int64("recipe", id).Err(err).Msg("refinement failed")
				return nil
			}
			if merged.IsComplete() {
				results[i] = 2
				r.log.Info().Int64("recipe", id).Str("title", merged.Title).Msg("recipe completed")
			} else {
				results[i] = 1
				r.log.Info().Int64("recipe", id).Str("title", merged.Title).Msg("recipe refined")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	var summary Summary
	for _, res := range results {
		switch res {
		case 0:
			summary.Failed++
		case 1:
			summary.Refined++
		case 2:
			summary.Completed++
		}
	}
	return summary, nil
}

// buildPrompt pairs the known fields with the raw payload so the model
// only fills genuine gaps.
func buildPrompt(recipe types.Recipe, payload string) string {
	known, _ := json.Marshal(recipe)
	var b strings.Builder
	b.WriteString("Known fields:\n")
	b.Write(known)
	b.WriteString("\n\nSchema payload:\n")
	b.WriteString(payload)
	return b.String()
}

// decodeResponse parses the model output, repairing almost-JSON the way
// the schema decoder does.
func decodeResponse(raw string) (response, error) {
	raw = strings.TrimSpace(raw)
	var resp response
	if err := json.Unmarshal([]byte(raw), &resp); err == nil {
		return resp, nil
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return response{}, fmt.Errorf("unparseable refinement response: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &resp); err != nil {
		return response{}, fmt.Errorf("decoding refinement response: %w", err)
	}
	return resp, nil
}

// merge copies patch values into recipe's empty fields only.
func merge(r types.Recipe, p response) types.Recipe {
	if r.Title == "" {
		r.Title = p.Title
	}
	if r.Description == "" {
		r.Description = p.Description
	}
	if r.Date.IsZero() && p.Date != "" {
		if t, err := time.Parse("2006-01-02", p.Date); err == nil {
			r.Date = t
		}
	}
	if len(r.Keywords) == 0 {
		r.Keywords = p.Keywords
	}
	if len(r.Authors) == 0 {
		r.Authors = p.Authors
	}
	if len(r.Images) == 0 {
		r.Images = p.Images
	}
	if r.Rating == 0 {
		r.Rating = p.Rating
	}
	if r.RatingCount == 0 {
		r.RatingCount = p.RatingCount
	}
	if r.PrepTime == 0 {
		r.PrepTime = minutes(p.PrepMinutes)
	}
	if r.CookTime == 0 {
		r.CookTime = minutes(p.CookMinutes)
	}
	if r.TotalTime == 0 {
		r.TotalTime = minutes(p.TotalMinutes)
	}
	if r.TotalTime == 0 {
		r.TotalTime = r.PrepTime + r.CookTime
	}
	if r.Servings == "" {
		r.Servings = p.Servings
	}
	if len(r.Ingredients) == 0 {
		r.Ingredients = p.Ingredients
	}
	if len(r.Instructions) == 0 {
		r.Instructions = p.Instructions
	}

	n := &r.Nutrition
	if n.Calories == 0 {
		n.Calories = p.Nutrition.Calories
	}
	if n.Carbohydrates == 0 {
		n.Carbohydrates = p.Nutrition.Carbohydrates
	}
	if n.Cholesterol == 0 {
		n.Cholesterol = p.Nutrition.Cholesterol
	}
	if n.Fat == 0 {
		n.Fat = p.Nutrition.Fat
	}
	if n.Fiber == 0 {
		n.Fiber = p.Nutrition.Fiber
	}
	if n.Protein == 0 {
		n.Protein = p.Nutrition.Protein
	}
	if n.SaturatedFat == 0 {
		n.SaturatedFat = p.Nutrition.SaturatedFat
	}
	if n.Sodium == 0 {
		n.Sodium = p.Nutrition.Sodium
	}
	if n.Sugar == 0 {
		n.Sugar = p.Nutrition.Sugar
	}
	return r
}

func minutes(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}
