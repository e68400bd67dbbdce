// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-finder/internal/recipe"
	"github.com/pdiddy/recipe-finder/internal/schema"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a recipe out of an HTML document",
	Long: `Parse runs the full extraction chain over one document: scan for the
schema script payload, decode it, parse the Recipe node, and print the
result as YAML. Reads from stdin when no file (or -) is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("url", "", "page URL, used for the author fallback")

	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	pageURL, _ := cmd.Flags().GetString("url")

	doc, err := readDocument(args)
	if err != nil {
		return err
	}
	payload, err := schema.Extract(doc)
	if err != nil {
		return err
	}
	decoded, err := schema.Decode(payload)
	if err != nil {
		return err
	}
	r, err := recipe.FromSchema(decoded, pageURL)
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling recipe: %w", err)
	}
	os.Stdout.Write(out)
	if !r.IsComplete() {
		fmt.Fprintln(os.Stderr, "note: recipe is incomplete")
	}
	return nil
}
