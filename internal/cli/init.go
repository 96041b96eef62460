// Package cli provides common initialization shared by the survey commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"salmonsurvey/internal/config"
	"salmonsurvey/internal/core"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/sheets"
	"salmonsurvey/internal/sheets/google"
	"salmonsurvey/internal/sheets/memory"
	"salmonsurvey/internal/storage"
)

// SetupLogger installs a text logger on stderr at the given level and
// returns it. Stdout stays free for rendered reports.
func SetupLogger(level string) (*applog.Logger, error) {
	lvl, err := applog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := applog.DefaultConfig()
	cfg.Level = lvl
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger, nil
}

// LoadEnvFile loads a .env file for local development. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// LoadAndValidateConfig reads the environment and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitSQLite opens the record store and applies migrations.
func InitSQLite(ctx context.Context, dsn string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}
	slog.DebugContext(ctx, "SQLite repository ready",
		applog.FieldComponent, applog.ComponentStorage, "dsn", dsn)
	return repo, nil
}

// LoadTaxonomy returns the configured taxonomy, or the built-in one.
func LoadTaxonomy(cfg *config.Config) (core.Taxonomy, error) {
	return config.LoadTaxonomy(cfg.TaxonomyFile)
}

// NewTotalsSink returns the Google Sheets sink when a spreadsheet is configured
// and an in-process store otherwise.
func NewTotalsSink(ctx context.Context, cfg *config.Config) (sheets.TotalsSink, error) {
	if !cfg.SheetsEnabled() {
		slog.WarnContext(ctx, "No spreadsheet configured, totals are kept in memory",
			applog.FieldComponent, applog.ComponentSheets)
		return memory.New(), nil
	}
	return google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
