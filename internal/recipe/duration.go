// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recipe

import (
	"strconv"
	"strings"
	"time"
)

// parseISODuration parses the ISO 8601 duration subset that appears in
// recipe markup: weeks, days, hours, minutes, and (possibly fractional)
// seconds, e.g. "PT1H30M" or "P0DT45M". Year and month designators are
// rejected; they have no fixed length and never occur in cook times.
func parseISODuration(s string) (time.Duration, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 3 || (s[0] != 'P' && s[0] != 'p') {
		return 0, false
	}

	var (
		total  time.Duration
		inTime bool
		seen   bool
		i      = 1
	)
	for i < len(s) {
		if s[i] == 'T' || s[i] == 't' {
			inTime = true
			i++
			continue
		}

		start := i
		for i < len(s) && (s[i] >= '0' && s[i] <= '9' || s[i] == '.' || s[i] == ',') {
			i++
		}
		if start == i || i >= len(s) {
			return 0, false
		}
		value, err := strconv.ParseFloat(strings.ReplaceAll(s[start:i], ",", "."), 64)
		if err != nil {
			return 0, false
		}

		var unit time.Duration
		switch s[i] {
		case 'W', 'w':
			unit = 7 * 24 * time.Hour
		case 'D', 'd':
			unit = 24 * time.Hour
		case 'H', 'h':
			if !inTime {
				return 0, false
			}
			unit = time.Hour
		case 'M', 'm':
			// Before the T designator this would mean months; reject.
			if !inTime {
				return 0, false
			}
			unit = time.Minute
		case 'S', 's':
			if !inTime {
				return 0, false
			}
			unit = time.Second
		default:
			return 0, false
		}
		total += time.Duration(value * float64(unit))
		seen = true
		i++
	}
	return total, seen
}
