// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-finder/internal/refine"
	"github.com/pdiddy/recipe-finder/pkg/types"
)

const defaultModel = "gpt-4o-mini"

var refineCmd = &cobra.Command{
	Use:   "refine [id]",
	Short: "Fill gaps in stored incomplete recipes with an LLM",
	Long: `Refine asks a chat model to fill the missing fields of incomplete
recipes from their pages' stored schema payloads. Parsed fields are never
overwritten. With an id, refines that recipe; without, refines every
incomplete recipe.

The API key is read from --api-key, OPENAI_API_KEY, or
.secrets/openai-api-key.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRefine,
}

func init() {
	refineCmd.Flags().String("model", defaultModel, "chat model to use")
	refineCmd.Flags().String("api-key", "", "API key (overrides env and .secrets/)")
	refineCmd.Flags().String("base-url", "", "OpenAI-compatible endpoint base URL")
	refineCmd.Flags().Int("max-concurrent", 2, "concurrent refinement requests")

	rootCmd.AddCommand(refineCmd)
}

func runRefine(cmd *cobra.Command, args []string) error {
	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")
	baseURL, _ := cmd.Flags().GetString("base-url")
	maxConcurrent, _ := cmd.Flags().GetInt("max-concurrent")

	cfg := types.RefineConfig{
		Model:         model,
		APIKey:        secretDefault("openai-api-key", firstNonEmpty(apiKey, os.Getenv("OPENAI_API_KEY"))),
		BaseURL:       secretDefault("openai-base-url", baseURL),
		MaxConcurrent: maxConcurrent,
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("no API key: set --api-key, OPENAI_API_KEY, or .secrets/openai-api-key")
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	r := refine.NewRefiner(s, refine.NewOpenAIBackend(cfg), cfg, logger)
	ctx := cmd.Context()

	if len(args) == 1 {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid recipe id %q", args[0])
		}
		merged, err := r.RefineRecipe(ctx, id)
		if err != nil {
			return err
		}
		if merged.IsComplete() {
			fmt.Printf("completed: %s\n", merged.Title)
		} else {
			fmt.Printf("refined:   %s (still incomplete)\n", merged.Title)
		}
		return nil
	}

	summary, err := r.RefineAll(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("\nRefinement summary: %d completed, %d refined, %d failed (total: %d)\n",
		summary.Completed, summary.Refined, summary.Failed, summary.Total())
	if summary.Failed > 0 {
		return fmt.Errorf("%d recipe(s) failed refinement", summary.Failed)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
