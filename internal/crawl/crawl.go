// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package crawl drives the page pipeline: download, extract, parse, and
// follow stages each poll the store for claimable pages and advance them
// through the status lifecycle. A failing page is marked failed and the
// crawl continues; only store or context errors stop the run.
package crawl

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/recipe-finder/internal/fetch"
	"github.com/pdiddy/recipe-finder/internal/follow"
	"github.com/pdiddy/recipe-finder/internal/recipe"
	"github.com/pdiddy/recipe-finder/internal/schema"
	"github.com/pdiddy/recipe-finder/internal/store"
	"github.com/pdiddy/recipe-finder/pkg/types"
)

const (
	defaultDownloadWorkers = 4
	defaultStageWorkers    = 4
	defaultPollInterval    = time.Second
	defaultStatsInterval   = 30 * time.Second
)

// Crawler owns the store and fetch client for one crawl run.
type Crawler struct {
	store  *store.Store
	client *fetch.Client
	cfg    types.CrawlConfig
	log    zerolog.Logger
}

// NewCrawler builds a Crawler, filling defaults for unset knobs.
func NewCrawler(s *store.Store, client *fetch.Client, cfg types.CrawlConfig, log zerolog.Logger) *Crawler {
	if cfg.DownloadWorkers <= 0 {
		cfg.DownloadWorkers = defaultDownloadWorkers
	}
	if cfg.StageWorkers <= 0 {
		cfg.StageWorkers = defaultStageWorkers
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = defaultStatsInterval
	}
	return &Crawler{store: s, client: client, cfg: cfg, log: log}
}

// Run resets stranded in-progress pages, then runs the four stages and
// the statistics ticker until ctx is cancelled.
func (c *Crawler) Run(ctx context.Context) error {
	if err := c.store.ResetTasks(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.downloadStage(ctx) })
	g.Go(func() error { return c.extractStage(ctx) })
	g.Go(func() error { return c.parseStage(ctx) })
	g.Go(func() error { return c.followStage(ctx) })
	g.Go(func() error { return c.statsLoop(ctx) })

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runStage polls for pages in status from, claims them as to, and hands
// each to process. process owns the page's final status; its failures
// never propagate here.
func (c *Crawler) runStage(ctx context.Context, from, to types.PageStatus, batch int, concurrent bool, process func(context.Context, types.Page)) error {
	for {
		pages, err := c.store.NextPages(ctx, from, to, batch)
		if err != nil {
			return err
		}

		if concurrent {
			var wg sync.WaitGroup
			for _, p := range pages {
				wg.Add(1)
				go func(p types.Page) {
					defer wg.Done()
					process(ctx, p)
				}(p)
			}
			wg.Wait()
		} else {
			for _, p := range pages {
				process(ctx, p)
			}
		}

		if len(pages) > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

// downloadStage fetches page bodies. NextPages hands out at most one
// page per domain, so concurrent workers hit distinct hosts.
func (c *Crawler) downloadStage(ctx context.Context) error {
	return c.runStage(ctx, types.PagePendingDownload, types.PageDownloading, c.cfg.DownloadWorkers, true,
		func(ctx context.Context, p types.Page) {
			body, err := c.client.Get(ctx, p.URL)
			if err != nil {
				c.log.Warn().Int64("page", p.ID).Str("url", p.URL).Err(err).Msg("download failed")
				c.setStatus(ctx, p.ID, types.PageDownloadFailed)
				return
			}
			if err := c.store.SetContent(ctx, p.ID, string(body)); err != nil {
				c.log.Error().Int64("page", p.ID).Err(err).Msg("storing content")
				c.setStatus(ctx, p.ID, types.PageDownloadFailed)
				return
			}
			c.setStatus(ctx, p.ID, types.PagePendingExtraction)
			c.log.Debug().Int64("page", p.ID).Str("url", p.URL).Int("bytes", len(body)).Msg("downloaded")
		})
}

// extractStage pulls the schema script payload out of downloaded HTML.
// Pages without one are dead ends for recipe data, and their bodies are
// dropped to keep the database small.
func (c *Crawler) extractStage(ctx context.Context) error {
	return c.runStage(ctx, types.PagePendingExtraction, types.PageExtracting, c.cfg.StageWorkers, false,
		func(ctx context.Context, p types.Page) {
			payload, err := schema.Extract(p.Content)
			if err != nil {
				c.log.Debug().Int64("page", p.ID).Str("url", p.URL).Err(err).Msg("extraction failed")
				c.clearContent(ctx, p.ID)
				c.setStatus(ctx, p.ID, types.PageExtractionFailed)
				return
			}
			if err := c.store.SetSchema(ctx, p.ID, payload); err != nil {
				c.log.Error().Int64("page", p.ID).Err(err).Msg("storing schema")
				c.setStatus(ctx, p.ID, types.PageExtractionFailed)
				return
			}
			c.setStatus(ctx, p.ID, types.PagePendingParsing)
			c.log.Debug().Int64("page", p.ID).Int("bytes", len(payload)).Msg("extracted")
		})
}

// parseStage decodes extracted payloads into recipes. Payloads without a
// usable recipe still move on to following; their links are the point.
// Incomplete recipes stop at parsed-incomplete so refinement can find
// them with their schema intact.
func (c *Crawler) parseStage(ctx context.Context) error {
	return c.runStage(ctx, types.PagePendingParsing, types.PageParsing, c.cfg.StageWorkers, false,
		func(ctx context.Context, p types.Page) {
			r, err := c.parsePage(ctx, p)
			if err != nil {
				c.log.Debug().Int64("page", p.ID).Str("url", p.URL).Err(err).Msg("no recipe")
				c.clearSchema(ctx, p.ID)
				c.setStatus(ctx, p.ID, types.PagePendingFollowing)
				return
			}
			if r.IsComplete() {
				c.clearSchema(ctx, p.ID)
				c.setStatus(ctx, p.ID, types.PagePendingFollowing)
				c.log.Info().Int64("page", p.ID).Str("title", r.Title).Msg("recipe stored")
				return
			}
			c.setStatus(ctx, p.ID, types.PageParsedIncomplete)
			c.log.Info().Int64("page", p.ID).Str("title", r.Title).Msg("incomplete recipe stored")
		})
}

// parsePage decodes and parses one page's payload, storing the recipe
// when it clears ShouldStore.
func (c *Crawler) parsePage(ctx context.Context, p types.Page) (types.Recipe, error) {
	doc, err := schema.Decode(p.Schema)
	if err != nil {
		return types.Recipe{}, err
	}
	r, err := recipe.FromSchema(doc, p.URL)
	if err != nil {
		return types.Recipe{}, err
	}
	if !r.ShouldStore() {
		return types.Recipe{}, errors.New("recipe has no ingredients")
	}
	r.PageID = p.ID
	if _, _, err := c.store.AddRecipe(ctx, r); err != nil {
		return types.Recipe{}, err
	}
	return r, nil
}

// followStage harvests links from page bodies into the frontier, then
// drops the body.
func (c *Crawler) followStage(ctx context.Context) error {
	return c.runStage(ctx, types.PagePendingFollowing, types.PageFollowing, c.cfg.StageWorkers, false,
		func(ctx context.Context, p types.Page) {
			links := follow.Links(p.URL, []byte(p.Content))
			added := 0
			for _, link := range links {
				u, err := url.Parse(link)
				if err != nil {
					continue
				}
				ok, err := c.store.AddPage(ctx, link, u.Hostname(), 0, types.PagePendingDownload)
				if err != nil {
					c.log.Error().Int64("page", p.ID).Err(err).Msg("enqueuing link")
					c.setStatus(ctx, p.ID, types.PageFollowFailed)
					return
				}
				if ok {
					added++
				}
			}
			c.clearContent(ctx, p.ID)
			c.setStatus(ctx, p.ID, types.PageFollowed)
			c.log.Debug().Int64("page", p.ID).Int("links", len(links)).Int("added", added).Msg("followed")
		})
}

// statsLoop records a snapshot on every tick.
func (c *Crawler) statsLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.cfg.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats, err := c.store.RecordStats(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				c.log.Error().Err(err).Msg("recording stats")
				continue
			}
			c.log.Info().
				Int("recipes", stats.Recipes).
				Int("pending_download", stats.Pages[types.PagePendingDownload]).
				Int("followed", stats.Pages[types.PageFollowed]).
				Msg("pipeline snapshot")
		}
	}
}

func (c *Crawler) setStatus(ctx context.Context, id int64, status types.PageStatus) {
	if err := c.store.SetStatus(ctx, id, status); err != nil && ctx.Err() == nil {
		c.log.Error().Int64("page", id).Err(err).Msg("updating status")
	}
}

func (c *Crawler) clearContent(ctx context.Context, id int64) {
	if err := c.store.SetContent(ctx, id, ""); err != nil && ctx.Err() == nil {
		c.log.Error().Int64("page", id).Err(err).Msg("clearing content")
	}
}

func (c *Crawler) clearSchema(ctx context.Context, id int64) {
	if err := c.store.SetSchema(ctx, id, ""); err != nil && ctx.Err() == nil {
		c.log.Error().Int64("page", id).Err(err).Msg("clearing schema")
	}
}
