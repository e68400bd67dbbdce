// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [term...]",
	Short: "Full-text search over indexed recipes",
	Long: `Search matches the term against recipe titles, descriptions, keywords,
and ingredients using FTS5, ranked by relevance.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a search term")
	}
	term := strings.Join(args, " ")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	results, err := s.SearchRecipes(context.Background(), term, limit)
	if err != nil {
		return err
	}
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []types.Recipe, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-6s  %-40s  %-6s  %-10s  %s\n",
		"ID", "Title", "Rating", "Total", "Servings")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, r := range results {
		title := truncate(r.Title, 40)
		total := ""
		if r.TotalTime > 0 {
			total = r.TotalTime.String()
		}
		fmt.Fprintf(os.Stdout, "%-6d  %-40s  %-6.1f  %-10s  %s\n",
			r.ID, title, r.Rating, total, r.Servings)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most max display runes; byte slicing would
// split multi-byte characters in non-ASCII titles.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
