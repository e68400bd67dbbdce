// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

// Stats is one point-in-time snapshot of pipeline progress.
type Stats struct {
	TakenAt time.Time                `json:"taken_at" yaml:"taken_at"`
	Pages   map[types.PageStatus]int `json:"pages" yaml:"pages"`
	Recipes int                      `json:"recipes" yaml:"recipes"`
}

// statColumns pairs each stats table column with its page status.
var statColumns = []struct {
	column string
	status types.PageStatus
}{
	{"pending_download", types.PagePendingDownload},
	{"downloading", types.PageDownloading},
	{"download_failed", types.PageDownloadFailed},
	{"pending_extraction", types.PagePendingExtraction},
	{"extracting", types.PageExtracting},
	{"extraction_failed", types.PageExtractionFailed},
	{"pending_parsing", types.PagePendingParsing},
	{"parsing", types.PageParsing},
	{"parsed_incomplete", types.PageParsedIncomplete},
	{"pending_following", types.PagePendingFollowing},
	{"following", types.PageFollowing},
	{"followed", types.PageFollowed},
	{"follow_failed", types.PageFollowFailed},
}

// RecordStats computes the current per-status page counts and recipe
// count and appends them as a snapshot row.
func (s *Store) RecordStats(ctx context.Context) (Stats, error) {
	counts, err := s.PageCounts(ctx)
	if err != nil {
		return Stats{}, err
	}
	recipes, err := s.RecipeCount(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TakenAt: time.Now().UTC(),
		Pages:   counts,
		Recipes: recipes,
	}

	columns := "taken_at"
	placeholders := "?"
	args := []any{stats.TakenAt.Format(time.RFC3339)}
	for _, sc := range statColumns {
		columns += ", " + sc.column
		placeholders += ", ?"
		args = append(args, counts[sc.status])
	}
	columns += ", recipes"
	placeholders += ", ?"
	args = append(args, recipes)

	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO stats (%s) VALUES (%s)`, columns, placeholders), args...)
	if err != nil {
		return Stats{}, fmt.Errorf("inserting stats snapshot: %w", err)
	}
	return stats, nil
}

// LatestStats returns the most recent snapshot, or sql.ErrNoRows when
// none has been recorded.
func (s *Store) LatestStats(ctx context.Context) (Stats, error) {
	columns := "taken_at"
	for _, sc := range statColumns {
		columns += ", " + sc.column
	}
	columns += ", recipes"

	row := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM stats ORDER BY id DESC LIMIT 1`, columns))

	var (
		takenAt string
		counts  = make([]sql.NullInt64, len(statColumns))
		recipes int
	)
	dest := []any{&takenAt}
	for i := range counts {
		dest = append(dest, &counts[i])
	}
	dest = append(dest, &recipes)

	if err := row.Scan(dest...); err != nil {
		return Stats{}, err
	}

	stats := Stats{Pages: make(map[types.PageStatus]int), Recipes: recipes}
	if t, err := time.Parse(time.RFC3339, takenAt); err == nil {
		stats.TakenAt = t
	}
	for i, sc := range statColumns {
		if counts[i].Int64 != 0 {
			stats.Pages[sc.status] = int(counts[i].Int64)
		}
	}
	return stats, nil
}
