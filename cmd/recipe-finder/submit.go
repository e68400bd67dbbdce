// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

var submitCmd = &cobra.Command{
	Use:   "submit [urls...]",
	Short: "Seed the crawl frontier with page URLs",
	Long: `Submit enqueues URLs for the crawl pipeline. Duplicate and blacklisted
URLs are skipped. Submitted pages get a high priority so seeds are
downloaded before followed links.`,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().Int("priority", 10, "frontier priority for the submitted pages")

	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more page URLs")
	}
	priority, _ := cmd.Flags().GetInt("priority")

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	submitted, skipped := 0, 0
	for _, raw := range args {
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			return fmt.Errorf("invalid URL %q", raw)
		}
		added, err := s.AddPage(ctx, raw, u.Hostname(), priority, types.PagePendingDownload)
		if err != nil {
			return err
		}
		if added {
			fmt.Printf("submitted: %s\n", raw)
			submitted++
		} else {
			fmt.Printf("skipped:   %s (duplicate or blacklisted)\n", raw)
			skipped++
		}
	}

	fmt.Printf("\n%d submitted, %d skipped\n", submitted, skipped)
	return nil
}
