// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"
)

// AddBlacklistFragment blocks URLs containing fragment from entering
// the frontier. It reports false without error when the fragment is
// already present.
func (s *Store) AddBlacklistFragment(ctx context.Context, fragment string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM blacklist WHERE fragment = ?`, fragment).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking blacklist fragment: %w", err)
	}
	if exists > 0 {
		return false, nil
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO blacklist (fragment) VALUES (?)`, fragment); err != nil {
		return false, fmt.Errorf("inserting blacklist fragment: %w", err)
	}
	return true, nil
}

// BlacklistFragments lists all blocked fragments.
func (s *Store) BlacklistFragments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT fragment FROM blacklist ORDER BY fragment`)
	if err != nil {
		return nil, fmt.Errorf("selecting blacklist: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// allowed reports whether url contains no blacklisted fragment.
func (s *Store) allowed(ctx context.Context, url string) (bool, error) {
	fragments, err := s.BlacklistFragments(ctx)
	if err != nil {
		return false, err
	}
	for _, f := range fragments {
		if strings.Contains(url, f) {
			return false, nil
		}
	}
	return true, nil
}
