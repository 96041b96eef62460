// Package report renders a survey summary as a console table, an HTML page or an Excel workbook.
package report

import (
	"fmt"
	"strconv"

	"salmonsurvey/internal/core"
)

const (
	Heading = "Salmon Survey Totals"
	Note    = "Note: Yearly totals are where the number of live + dead are the greatest"
)

// Table is the per-date breakdown, newest date first.
type Table struct {
	Columns []string
	Rows    [][]int64
	Dates   []core.Date
}

// BuildTable lays the summary out as Date, live per yearly group, dead per
// yearly group, nests, then running dead and running all per group.
func BuildTable(summary core.Summary, tax core.Taxonomy) Table {
	yearly := tax.YearlyGroups()

	cols := []string{"Survey Date"}
	for _, g := range yearly {
		cols = append(cols, "Live "+g.DisplayLabel())
	}
	for _, g := range yearly {
		cols = append(cols, "Dead "+g.DisplayLabel())
	}
	nestLabel := tax.NestLabel
	if nestLabel == "" {
		nestLabel = tax.NestStatus
	}
	if nestLabel != "" {
		cols = append(cols, nestLabel)
	}
	for _, g := range tax.Categories {
		cols = append(cols, "Running Dead "+g.DisplayLabel(), "Running All "+g.DisplayLabel())
	}

	t := Table{Columns: cols}
	for _, day := range summary.Newest() {
		row := make([]int64, 0, len(cols)-1)
		for _, g := range yearly {
			row = append(row, day.Counts(g.Name).Live)
		}
		for _, g := range yearly {
			row = append(row, day.Counts(g.Name).Dead)
		}
		if nestLabel != "" {
			row = append(row, day.Nests)
		}
		for _, g := range tax.Categories {
			r := day.RunningFor(g.Name)
			row = append(row, r.Dead, r.All)
		}
		t.Rows = append(t.Rows, row)
		t.Dates = append(t.Dates, day.Date)
	}
	return t
}

// StringRows formats every row with its date as the first cell.
func (t Table) StringRows() [][]string {
	out := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, 0, len(row)+1)
		cells = append(cells, t.Dates[i].String())
		for _, v := range row {
			cells = append(cells, strconv.FormatInt(v, 10))
		}
		out[i] = cells
	}
	return out
}

// Totals returns the yearly peak of every yearly group.
func Totals(summary core.Summary, tax core.Taxonomy) []core.YearlyTotal {
	return summary.YearlyTotals(tax)
}

// YearlyLine formats one yearly total the way the stewards read it.
func YearlyLine(t core.YearlyTotal) string {
	return fmt.Sprintf("Yearly %s total: %d Calculated from survey: %s", t.Category, t.Value, t.Date)
}
