package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"salmonsurvey/internal/core"
)

const sheetName = "Survey Totals"

// Workbook lays the report out on a single sheet: heading, the per-date
// table, then the yearly lines and the note below it.
func Workbook(summary core.Summary, tax core.Taxonomy) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := fillSheet(f, summary, tax); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func fillSheet(f *excelize.File, summary core.Summary, tax core.Taxonomy) error {
	table := BuildTable(summary, tax)
	lastCol, err := excelize.ColumnNumberToName(len(table.Columns))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F4E79"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#8EA9DB", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	noteStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Color: "#595959"},
	})
	if err != nil {
		return fmt.Errorf("note style: %w", err)
	}

	if err := f.MergeCell(sheetName, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	if err := f.SetCellValue(sheetName, "A1", Heading); err != nil {
		return fmt.Errorf("set title: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", titleStyle); err != nil {
		return fmt.Errorf("style title: %w", err)
	}
	if err := f.SetRowHeight(sheetName, 1, 30); err != nil {
		return fmt.Errorf("title height: %w", err)
	}

	header := make([]interface{}, len(table.Columns))
	for i, c := range table.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A2", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := f.SetCellStyle(sheetName, "A2", lastCol+"2", headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	row := 3
	for i, values := range table.Rows {
		cells := make([]interface{}, 0, len(values)+1)
		cells = append(cells, table.Dates[i].String())
		for _, v := range values {
			cells = append(cells, v)
		}
		if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &cells); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	row++
	for _, total := range Totals(summary, tax) {
		if err := f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), YearlyLine(total)); err != nil {
			return fmt.Errorf("write yearly total: %w", err)
		}
		row++
	}
	noteCell := fmt.Sprintf("A%d", row)
	if err := f.SetCellValue(sheetName, noteCell, Note); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	if err := f.SetCellStyle(sheetName, noteCell, noteCell, noteStyle); err != nil {
		return fmt.Errorf("style note: %w", err)
	}

	if err := f.SetColWidth(sheetName, "A", "A", 14); err != nil {
		return fmt.Errorf("set width: %w", err)
	}
	if len(table.Columns) > 1 {
		if err := f.SetColWidth(sheetName, "B", lastCol, 12); err != nil {
			return fmt.Errorf("set width: %w", err)
		}
	}
	return nil
}

// WriteXLSX saves the workbook to path.
func WriteXLSX(path string, summary core.Summary, tax core.Taxonomy) error {
	f, err := Workbook(summary, tax)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

// EncodeXLSX streams the workbook to w.
func EncodeXLSX(w io.Writer, summary core.Summary, tax core.Taxonomy) error {
	f, err := Workbook(summary, tax)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
