package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"salmonsurvey/internal/core"
)

// Render writes the heading, the per-date table, one line per yearly total and the note.
func Render(w io.Writer, summary core.Summary, tax core.Taxonomy) error {
	heading := color.New(color.FgWhite, color.Bold)
	if _, err := heading.Fprintf(w, "%s\n%s\n", Heading, strings.Repeat("=", len(Heading))); err != nil {
		return fmt.Errorf("write heading: %w", err)
	}

	t := BuildTable(summary, tax)
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignRight,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.Off,
					AutoWrap:   tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignCenter,
				},
			},
		}),
	)
	table.Header(t.Columns)
	if err := table.Bulk(t.StringRows()); err != nil {
		return fmt.Errorf("fill table: %w", err)
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	yearly := color.New(color.FgCyan)
	for _, total := range Totals(summary, tax) {
		if _, err := yearly.Fprintln(w, YearlyLine(total)); err != nil {
			return fmt.Errorf("write yearly total: %w", err)
		}
	}

	if _, err := color.New(color.Faint).Fprintln(w, Note); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}
