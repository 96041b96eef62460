package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	applog "salmonsurvey/internal/log"
	ports "salmonsurvey/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	totalsSheet   string
}

// Ensure interface conformance
var _ ports.TotalsSink = (*Client)(nil)

// Options selects the spreadsheet and the service account used to write to it.
type Options struct {
	SpreadsheetID string
	// SheetName is a base name; the current year is prefixed unless already present.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Totals"
	}

	svc, err := newSheetsService(ctx, opts.CredentialsJSON, opts.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		totalsSheet:   yearPrefixedName(base, time.Now().Year()),
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials,
// inline JSON taking precedence over a file path.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	credentialsJSON = strings.TrimSpace(credentialsJSON)
	credentialsFile = strings.TrimSpace(credentialsFile)

	var creds []byte
	switch {
	case credentialsJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials", applog.FieldComponent, applog.ComponentSheets)
		creds = []byte(credentialsJSON)
	case credentialsFile != "":
		slog.DebugContext(ctx, "Reading credentials from file",
			applog.FieldComponent, applog.ComponentSheets, "path", credentialsFile)
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// AppendTotals appends one row per run, writing a header first when the sheet is empty.
func (c *Client) AppendTotals(ctx context.Context, row ports.TotalsRow) (string, error) {
	if row.RunID == "" {
		return "", errors.New("totals row without run id")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := [][]any{rowValues(row)}

	head, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.totalsSheet+"!A1:A1").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("read header of %s: %w", c.totalsSheet, err)
	}
	if len(head.Values) == 0 {
		values = append([][]any{headerValues(row)}, values...)
	}

	vr := &gsheet.ValueRange{Values: values}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.totalsSheet+"!A:A", vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append totals to %s: %w", c.totalsSheet, err)
	}

	ref := c.totalsSheet
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	slog.InfoContext(ctx, "Appended totals row",
		applog.FieldComponent, applog.ComponentSheets,
		applog.FieldRunID, row.RunID,
		applog.FieldSheetsRef, ref)
	return ref, nil
}

// HasRun looks for runID in the run id column.
func (c *Client) HasRun(ctx context.Context, runID string) (bool, error) {
	if c.svc == nil {
		return false, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A:B", c.totalsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rng, err)
	}
	return containsRunID(resp.Values, runID), nil
}
