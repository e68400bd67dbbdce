// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pdiddy/recipe-finder/pkg/types"
)

// AddPage enqueues a URL. It reports false without error when the URL
// is already known or matches a blacklist fragment, so callers can
// count skips without treating them as failures.
func (s *Store) AddPage(ctx context.Context, url, domain string, priority int, status types.PageStatus) (bool, error) {
	allowed, err := s.allowed(ctx, url)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, nil
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM pages WHERE url = ?`, url).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking page exists: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO pages (url, domain, priority, status) VALUES (?, ?, ?, ?)`,
		url, domain, priority, string(status))
	if err != nil {
		return false, fmt.Errorf("inserting page: %w", err)
	}
	return true, nil
}

// Page fetches one page by id.
func (s *Store) Page(ctx context.Context, id int64) (types.Page, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, domain, content, schema, priority, status FROM pages WHERE id = ?`, id)
	return scanPage(row)
}

func scanPage(row *sql.Row) (types.Page, error) {
	var (
		p               types.Page
		content, schema sql.NullString
		status          string
	)
	if err := row.Scan(&p.ID, &p.URL, &p.Domain, &content, &schema, &p.Priority, &status); err != nil {
		return types.Page{}, fmt.Errorf("scanning page: %w", err)
	}
	p.Content = content.String
	p.Schema = schema.String
	p.Status = types.PageStatus(status)
	return p, nil
}

// NextPages claims up to limit pages in status from, flipping them to
// status to in the same transaction so concurrent stages never claim
// the same page twice. At most one page per domain is returned per
// call, which spreads downloads across sites.
func (s *Store) NextPages(ctx context.Context, from, to types.PageStatus, limit int) ([]types.Page, error) {
	if limit <= 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback()

	// With a bare-column GROUP BY, the max() forces each group's row to
	// be its highest-priority page; plain bare columns would pick an
	// arbitrary row per domain.
	rows, err := tx.QueryContext(ctx,
		`SELECT id, url, domain, content, schema, max(priority) AS priority, status
		 FROM pages WHERE status = ?
		 GROUP BY domain
		 ORDER BY priority DESC
		 LIMIT ?`,
		string(from), limit)
	if err != nil {
		return nil, fmt.Errorf("selecting claimable pages: %w", err)
	}

	var pages []types.Page
	for rows.Next() {
		var (
			p               types.Page
			content, schema sql.NullString
			status          string
		)
		if err := rows.Scan(&p.ID, &p.URL, &p.Domain, &content, &schema, &p.Priority, &status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		p.Content = content.String
		p.Schema = schema.String
		p.Status = to
		pages = append(pages, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating claimable pages: %w", err)
	}
	if len(pages) == 0 {
		return nil, tx.Commit()
	}

	placeholders := make([]string, len(pages))
	args := make([]any, 0, len(pages)+1)
	args = append(args, string(to))
	for i, p := range pages {
		placeholders[i] = "?"
		args = append(args, p.ID)
	}
	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE pages SET status = ? WHERE id IN (%s)`, strings.Join(placeholders, ", ")),
		args...)
	if err != nil {
		return nil, fmt.Errorf("claiming pages: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing claim: %w", err)
	}
	return pages, nil
}

// SetStatus moves a page to status.
func (s *Store) SetStatus(ctx context.Context, id int64, status types.PageStatus) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pages SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("updating page status: %w", err)
	}
	return nil
}

// SetContent stores the downloaded HTML. Pass "" to clear it once the
// follow stage is done with it; page bodies dominate database size.
func (s *Store) SetContent(ctx context.Context, id int64, content string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pages SET content = ? WHERE id = ?`, nullable(content), id)
	if err != nil {
		return fmt.Errorf("updating page content: %w", err)
	}
	return nil
}

// SetSchema stores the extracted payload. Pass "" to clear it once
// parsed.
func (s *Store) SetSchema(ctx context.Context, id int64, schema string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE pages SET schema = ? WHERE id = ?`, nullable(schema), id)
	if err != nil {
		return fmt.Errorf("updating page schema: %w", err)
	}
	return nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ResetTasks returns pages stranded in an in-progress status by a
// previous run to their pending status. Called once at startup before
// workers start claiming.
func (s *Store) ResetTasks(ctx context.Context) error {
	resets := []struct {
		from, to types.PageStatus
	}{
		{types.PageDownloading, types.PagePendingDownload},
		{types.PageExtracting, types.PagePendingExtraction},
		{types.PageParsing, types.PagePendingParsing},
		{types.PageFollowing, types.PagePendingFollowing},
	}
	for _, r := range resets {
		_, err := s.db.ExecContext(ctx,
			`UPDATE pages SET status = ? WHERE status = ?`, string(r.to), string(r.from))
		if err != nil {
			return fmt.Errorf("resetting %s pages: %w", r.from, err)
		}
	}
	return nil
}

// PageCounts returns the number of pages in each status.
func (s *Store) PageCounts(ctx context.Context) (map[types.PageStatus]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, count(*) FROM pages GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting pages: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.PageStatus]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning page count: %w", err)
		}
		counts[types.PageStatus(status)] = n
	}
	return counts, rows.Err()
}
