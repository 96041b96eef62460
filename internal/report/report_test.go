package report

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salmonsurvey/internal/core"
)

func init() {
	color.NoColor = true
}

func chumSummary() core.Summary {
	rec := func(id, date string, qty int64, status, category string) core.Record {
		return core.Record{ID: id, Date: core.MustParseDate(date), Quantity: qty, Status: status, Category: category}
	}
	return core.Aggregate([]core.Record{
		rec("a", "2023-10-30", 2, "Dead", "Chum"),
		rec("b", "2023-10-30", 3, "Live", "Chum"),
		rec("c", "2023-10-31", 1, "Dead", "Chum"),
		rec("d", "2023-10-31", 4, "Redd", ""),
	}, core.DefaultTaxonomy())
}

func TestBuildTable(t *testing.T) {
	tax := core.DefaultTaxonomy()
	table := BuildTable(chumSummary(), tax)

	// date, 4 live, 4 dead, redds, 5 groups x 2 running columns
	require.Len(t, table.Columns, 1+4+4+1+10)
	assert.Equal(t, "Survey Date", table.Columns[0])
	assert.Equal(t, "Live Chum", table.Columns[1])
	assert.Equal(t, "Live Unknown Salmonids", table.Columns[4])
	assert.Equal(t, "Dead Chum", table.Columns[5])
	assert.Equal(t, "Redds", table.Columns[9])
	assert.Equal(t, "Running Dead Chum", table.Columns[10])
	assert.Equal(t, "Running All Chum", table.Columns[11])

	rows := table.StringRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2023-10-31", rows[0][0], "newest first")
	assert.Equal(t, "2023-10-30", rows[1][0])

	assert.Equal(t, []string{"0", "1", "4", "3", "3"}, []string{rows[0][1], rows[0][5], rows[0][9], rows[0][10], rows[0][11]})
	assert.Equal(t, []string{"3", "2", "0", "2", "5"}, []string{rows[1][1], rows[1][5], rows[1][9], rows[1][10], rows[1][11]})
	for _, row := range rows {
		assert.Len(t, row, len(table.Columns))
	}
}

func TestBuildTable_DeadColumnsFollowGroupStatuses(t *testing.T) {
	tax := core.DefaultTaxonomy()
	rec := func(id string, qty int64, status, category string) core.Record {
		return core.Record{ID: id, Date: core.MustParseDate("2023-11-02"), Quantity: qty, Status: status, Category: category}
	}
	summary := core.Aggregate([]core.Record{
		rec("r", 2, "Remnant", "Chum"),
		rec("d", 1, "Dead", "Chum"),
		rec("t", 4, "Remnant", "Cutthroat"),
	}, tax)

	table := BuildTable(summary, tax)
	require.Equal(t, "Dead Cutthroat", table.Columns[7])
	rows := table.StringRows()
	require.Len(t, rows, 1)
	assert.Equal(t, "3", rows[0][5], "remnants count as dead chum")
	assert.Equal(t, "0", rows[0][7], "cutthroat only counts Dead")
	assert.Equal(t, "3", rows[0][10], "dead column matches running dead")
}

func TestYearlyLine(t *testing.T) {
	line := YearlyLine(core.YearlyTotal{Category: "Chum", Value: 5, Date: core.MustParseDate("2023-10-30")})
	assert.Equal(t, "Yearly Chum total: 5 Calculated from survey: 2023-10-30", line)
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, chumSummary(), core.DefaultTaxonomy()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, Heading+"\n"))
	assert.Contains(t, strings.ToLower(out), "live chum")
	assert.Contains(t, out, "2023-10-31")
	assert.Contains(t, out, "Yearly Chum total: 5 Calculated from survey: 2023-10-30\n")
	assert.Contains(t, out, "Yearly Coho total: 0 Calculated from survey: 2023-10-30\n")
	assert.Contains(t, out, "Yearly Unknown total: 0")
	assert.True(t, strings.HasSuffix(out, Note+"\n"))

	assert.Less(t, strings.Index(out, "Yearly Chum"), strings.Index(out, "Yearly Coho"))
	assert.Less(t, strings.Index(out, "2023-10-31"), strings.Index(out, "2023-10-30 "), "table lists newest first")
}

func TestRender_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, core.Summary{}, core.DefaultTaxonomy()))
	out := buf.String()

	assert.NotContains(t, out, "Yearly")
	assert.Contains(t, out, Note)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, chumSummary(), core.DefaultTaxonomy()))
	out := buf.String()

	assert.Contains(t, out, "<h1>Salmon Survey Totals</h1>")
	assert.Contains(t, out, "<th>Live Unknown Salmonids</th>")
	assert.Contains(t, out, `<td class="date">2023-10-31</td>`)
	assert.Contains(t, out, "<p>Yearly Chum total: 5 Calculated from survey: 2023-10-30</p>")
	assert.Contains(t, out, "Note: Yearly totals are where the number of live &#43; dead are the greatest")
}

func TestRenderHTML_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, core.Summary{}, core.DefaultTaxonomy()))
	assert.Contains(t, buf.String(), "No surveys loaded.")
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "totals.xlsx")
	require.NoError(t, WriteXLSX(path, chumSummary(), core.DefaultTaxonomy()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue(sheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, Heading, title)

	header, err := f.GetCellValue(sheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Live Chum", header)

	newest, err := f.GetCellValue(sheetName, "A3")
	require.NoError(t, err)
	assert.Equal(t, "2023-10-31", newest)

	runningAll, err := f.GetCellValue(sheetName, "L4")
	require.NoError(t, err)
	assert.Equal(t, "5", runningAll)

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	last := rows[len(rows)-1]
	assert.Equal(t, Note, last[0])
}

func TestEncodeXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeXLSX(&buf, chumSummary(), core.DefaultTaxonomy()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{sheetName}, f.GetSheetList())
}
