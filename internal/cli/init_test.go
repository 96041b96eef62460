package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salmonsurvey/internal/config"
	"salmonsurvey/internal/sheets/memory"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger, err := SetupLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	_, err = SetupLogger("verbose")
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadEnvFile(filepath.Join(dir, "missing.env")))

	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("SURVEY_TEST_ENV_KEY=from-file\n"), 0o600))
	t.Setenv("SURVEY_TEST_ENV_KEY", "")
	require.NoError(t, os.Unsetenv("SURVEY_TEST_ENV_KEY"))

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("SURVEY_TEST_ENV_KEY"))
}

func TestNewTotalsSink_DefaultsToMemory(t *testing.T) {
	sink, err := NewTotalsSink(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, sink)
}

func TestNewTotalsSink_SheetsWithoutCredentials(t *testing.T) {
	_, err := NewTotalsSink(context.Background(), &config.Config{GoogleSpreadsheetID: "sheet"})
	assert.ErrorContains(t, err, "credentials")
}

func TestInitSQLiteAndTaxonomy(t *testing.T) {
	repo, err := InitSQLite(context.Background(), "file:cli_init?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	n, err := repo.CountRecords(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	tax, err := LoadTaxonomy(&config.Config{})
	require.NoError(t, err)
	assert.NotEmpty(t, tax.Categories)
}
