// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recipe-finder/internal/crawl"
	"github.com/pdiddy/recipe-finder/internal/fetch"
	"github.com/pdiddy/recipe-finder/pkg/types"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"

var crawlCmd = &cobra.Command{
	Use:   "crawl",
	Short: "Run the crawl pipeline until interrupted",
	Long: `Crawl drives the page pipeline: pending pages are downloaded, their
schema payloads extracted, recipes parsed into the index, and page links
followed into the frontier. Stages run concurrently and poll the store;
stop with Ctrl-C.`,
	RunE: runCrawl,
}

func init() {
	crawlCmd.Flags().Duration("timeout", 60*time.Second, "HTTP request timeout")
	crawlCmd.Flags().String("user-agent", defaultUserAgent, "User-Agent header for page downloads")
	crawlCmd.Flags().Duration("host-interval", 4*time.Second, "minimum delay between requests to the same host")
	crawlCmd.Flags().Duration("host-jitter", 4*time.Second, "random extra delay added to the host interval")
	crawlCmd.Flags().Int("download-workers", 4, "concurrent page downloads")
	crawlCmd.Flags().Int("stage-workers", 4, "pages claimed per poll by the extract, parse, and follow stages")
	crawlCmd.Flags().Duration("poll-interval", time.Second, "idle delay between store polls")
	crawlCmd.Flags().Duration("stats-interval", 30*time.Second, "delay between statistics snapshots")

	rootCmd.AddCommand(crawlCmd)
}

func runCrawl(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	userAgent, _ := cmd.Flags().GetString("user-agent")
	hostInterval, _ := cmd.Flags().GetDuration("host-interval")
	hostJitter, _ := cmd.Flags().GetDuration("host-jitter")
	downloadWorkers, _ := cmd.Flags().GetInt("download-workers")
	stageWorkers, _ := cmd.Flags().GetInt("stage-workers")
	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	statsInterval, _ := cmd.Flags().GetDuration("stats-interval")

	cfg := types.CrawlConfig{
		Fetch: types.FetchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   timeout,
				UserAgent: userAgent,
			},
			HostInterval: hostInterval,
			HostJitter:   hostJitter,
		},
		DownloadWorkers: downloadWorkers,
		StageWorkers:    stageWorkers,
		PollInterval:    pollInterval,
		StatsInterval:   statsInterval,
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	crawler := crawl.NewCrawler(s, fetch.NewClient(cfg.Fetch), cfg, logger)
	logger.Info().Str("data_dir", s.Path()).Msg("starting crawl")
	return crawler.Run(ctx)
}
