package google

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ports "salmonsurvey/internal/sheets"
)

const runIDColumn = 1

// headerValues names the columns written by rowValues.
func headerValues(row ports.TotalsRow) []any {
	out := []any{"Generated At", "Run ID", "Latest Survey"}
	for _, t := range row.Totals {
		out = append(out, t.Category+" Total", t.Category+" Date")
	}
	return out
}

// rowValues lays out a totals row: generated-at, run id, latest survey, then value and date per category.
func rowValues(row ports.TotalsRow) []any {
	out := []any{
		row.GeneratedAt.UTC().Format(time.RFC3339),
		row.RunID,
		row.LatestSurvey.String(),
	}
	for _, t := range row.Totals {
		out = append(out, t.Value, t.Date.String())
	}
	return out
}

// containsRunID scans the run id column of a values matrix.
func containsRunID(values [][]interface{}, runID string) bool {
	for _, row := range values {
		cols := toStrings(row)
		if len(cols) <= runIDColumn {
			continue
		}
		if cols[runIDColumn] == runID {
			return true
		}
	}
	return false
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
