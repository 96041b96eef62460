package google

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"salmonsurvey/internal/core"
	ports "salmonsurvey/internal/sheets"
)

func sampleRow() ports.TotalsRow {
	return ports.TotalsRow{
		RunID:        "run-1",
		GeneratedAt:  time.Date(2023, 11, 5, 12, 0, 0, 0, time.FixedZone("PST", -8*3600)),
		LatestSurvey: core.NewDate(2023, 11, 4),
		Totals: []core.YearlyTotal{
			{Category: "Chum", Value: 12, Date: core.NewDate(2023, 11, 2)},
			{Category: "Coho", Value: 0, Date: core.NewDate(2023, 10, 31)},
		},
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing spreadsheet id" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:   "sheet",
		CredentialsFile: filepath.Join(t.TempDir(), "missing.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test", totalsSheet: "2023 Totals"}

	if _, err := c.AppendTotals(context.Background(), sampleRow()); err == nil {
		t.Fatal("expected error with nil service")
	}
	if _, err := c.HasRun(context.Background(), "run-1"); err == nil {
		t.Fatal("expected error with nil service")
	}

	row := sampleRow()
	row.RunID = ""
	if _, err := c.AppendTotals(context.Background(), row); err == nil || !strings.Contains(err.Error(), "run id") {
		t.Fatalf("expected run id error, got %v", err)
	}
}

func TestRowValues(t *testing.T) {
	got := rowValues(sampleRow())
	want := []any{"2023-11-05T20:00:00Z", "run-1", "2023-11-04", int64(12), "2023-11-02", int64(0), "2023-10-31"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("col %d = %v (%T), want %v (%T)", i, got[i], got[i], want[i], want[i])
		}
	}

	head := headerValues(sampleRow())
	if len(head) != len(want) || head[1] != "Run ID" || head[3] != "Chum Total" || head[6] != "Coho Date" {
		t.Errorf("unexpected header: %v", head)
	}
}

func TestContainsRunID(t *testing.T) {
	values := [][]interface{}{
		{"Generated At", "Run ID"},
		{"2023-11-05T20:00:00Z", " run-1 "},
		{"short"},
	}
	if !containsRunID(values, "run-1") {
		t.Error("expected run-1 to be found")
	}
	if containsRunID(values, "run-2") {
		t.Error("run-2 should not be found")
	}
	if containsRunID(nil, "run-1") {
		t.Error("empty sheet has no runs")
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Totals", "2023 Totals"},
		{"  Totals  ", "2023 Totals"},
		{"2022 Totals", "2022 Totals"},
		{"", ""},
		{"12345", "2023 12345"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2023); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}
