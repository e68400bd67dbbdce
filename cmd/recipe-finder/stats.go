// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/recipe-finder/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print pipeline statistics",
	Long: `Stats prints the latest recorded pipeline snapshot: page counts per
status and the number of indexed recipes. With --now, a fresh snapshot
is recorded and printed instead.`,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().Bool("now", false, "record a fresh snapshot instead of reading the latest")

	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	now, _ := cmd.Flags().GetBool("now")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	var stats store.Stats
	if now {
		stats, err = s.RecordStats(ctx)
	} else {
		stats, err = s.LatestStats(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			fmt.Println("No snapshot recorded yet; run with --now or start a crawl.")
			return nil
		}
	}
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(stats)
	if err != nil {
		return fmt.Errorf("marshaling stats: %w", err)
	}
	os.Stdout.Write(out)
	return nil
}
