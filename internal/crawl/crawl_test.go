// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package crawl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/recipe-finder/internal/fetch"
	"github.com/pdiddy/recipe-finder/internal/store"
	"github.com/pdiddy/recipe-finder/pkg/types"
)

const completeRecipePage = `<html><head>
<script type="application/ld+json">
{
	"@context": "https://schema.org",
	"@type": "Recipe",
	"name": "Black Bread",
	"description": "A dense rye loaf.",
	"datePublished": "2023-06-15",
	"keywords": "bread, rye",
	"author": {"@type": "Person", "name": "Greta"},
	"image": "https://img.example.com/1.jpg",
	"aggregateRating": {"ratingValue": "4.5", "ratingCount": "13"},
	"totalTime": "PT2H",
	"recipeYield": "2 loaves",
	"recipeIngredient": ["500g rye flour", "water", "salt"],
	"recipeInstructions": ["Mix.", "Bake."],
	"nutrition": {
		"calories": "250 kcal", "carbohydrateContent": "48 g",
		"cholesterolContent": "1 mg", "fatContent": "2 g",
		"fiberContent": "6 g", "proteinContent": "8 g",
		"saturatedFatContent": "1 g", "sodiumContent": "400 mg",
		"sugarContent": "3 g"
	}
}
</script>
</head><body>
<a href="/more">more</a>
<a href="/plain">plain</a>
</body></html>`

const incompleteRecipePage = `<html><head>
<script type="application/ld+json">
{
	"@context": "https://schema.org",
	"@type": "Recipe",
	"name": "Mystery Soup",
	"recipeIngredient": ["water", "bones"]
}
</script>
</head><body></body></html>`

const plainPage = `<html><body><p>no structured data here</p></body></html>`

func TestCrawlPipeline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Write([]byte(completeRecipePage))
		case "/more":
			w.Write([]byte(incompleteRecipePage))
		case "/plain":
			w.Write([]byte(plainPage))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	s, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	added, err := s.AddPage(context.Background(), srv.URL+"/", u.Hostname(), 10, types.PagePendingDownload)
	require.NoError(t, err)
	require.True(t, added)

	client := fetch.NewClient(types.FetchConfig{
		HTTPConfig:   types.HTTPConfig{Timeout: 5 * time.Second},
		HostInterval: time.Millisecond,
		HostJitter:   time.Millisecond,
		MaxRetries:   1,
	})
	crawler := NewCrawler(s, client, types.CrawlConfig{
		PollInterval:  10 * time.Millisecond,
		StatsInterval: 50 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- crawler.Run(ctx) }()

	pageStatus := func(id int64) types.PageStatus {
		p, err := s.Page(context.Background(), id)
		if err != nil {
			return ""
		}
		return p.Status
	}

	// The seed stores a complete recipe and gets followed; its links
	// flow through their own pipelines.
	require.Eventually(t, func() bool {
		n, err := s.RecipeCount(context.Background())
		return err == nil && n == 2
	}, 10*time.Second, 20*time.Millisecond, "both recipes stored")

	require.Eventually(t, func() bool {
		return pageStatus(1) == types.PageFollowed &&
			pageStatus(2) == types.PageParsedIncomplete &&
			pageStatus(3) == types.PageExtractionFailed
	}, 10*time.Second, 20*time.Millisecond, "pages reach their terminal statuses")

	require.Eventually(t, func() bool {
		_, err := s.LatestStats(context.Background())
		return err == nil
	}, 10*time.Second, 20*time.Millisecond, "a snapshot gets recorded")

	cancel()
	require.NoError(t, <-done)

	// The followed seed's body is dropped; the incomplete page keeps its
	// schema for refinement.
	seed, err := s.Page(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, seed.Content)
	assert.Empty(t, seed.Schema)

	more, err := s.Page(context.Background(), 2)
	require.NoError(t, err)
	assert.NotEmpty(t, more.Schema)

	ids, err := s.IncompleteRecipeIDs(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)
	r, err := s.Recipe(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Mystery Soup", r.Title)
	assert.False(t, r.IsComplete())
}

func TestCrawlFailedDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	s, err := store.NewStore(types.StoreConfig{DataDir: t.TempDir()})
	require.NoError(t, err)
	defer s.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	_, err = s.AddPage(context.Background(), srv.URL+"/dead", u.Hostname(), 0, types.PagePendingDownload)
	require.NoError(t, err)

	client := fetch.NewClient(types.FetchConfig{
		HTTPConfig:   types.HTTPConfig{Timeout: 5 * time.Second},
		HostInterval: time.Millisecond,
		HostJitter:   time.Millisecond,
		MaxRetries:   1,
	})
	crawler := NewCrawler(s, client, types.CrawlConfig{
		PollInterval: 10 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- crawler.Run(ctx) }()

	require.Eventually(t, func() bool {
		p, err := s.Page(context.Background(), 1)
		return err == nil && p.Status == types.PageDownloadFailed
	}, 10*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
