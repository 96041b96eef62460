package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"salmonsurvey/internal/core"
)

func newTestRefresher(interval time.Duration) (*Refresher, *fakeFetcher) {
	fetcher := &fakeFetcher{pages: chumPages()}
	store := newMemStore()
	r := NewRefresher(
		NewLoader(fetcher, store),
		NewReportService(store, core.DefaultTaxonomy()),
		RefresherConfig{URL: "http://kobo/p1", Interval: interval},
	)
	return r, fetcher
}

func TestDefaultRefresherConfig(t *testing.T) {
	config := DefaultRefresherConfig()

	if config.Interval != 15*time.Minute {
		t.Errorf("expected Interval 15m, got %v", config.Interval)
	}

	r := NewRefresher(nil, nil, RefresherConfig{})
	if r.config.Interval != 15*time.Minute {
		t.Errorf("zero interval should fall back to default, got %v", r.config.Interval)
	}
}

func TestRefresher_IsRunning(t *testing.T) {
	r, _ := newTestRefresher(time.Hour)

	if r.IsRunning() {
		t.Error("refresher should not be running initially")
	}
}

func TestRefresher_StopNotRunning(t *testing.T) {
	r, _ := newTestRefresher(time.Hour)

	if err := r.Stop(context.Background()); err != nil {
		t.Errorf("Stop should not error when not running: %v", err)
	}
}

func TestRefresher_RefreshOnce(t *testing.T) {
	r, _ := newTestRefresher(time.Hour)

	var got []Report
	r.OnRefresh(func(ctx context.Context, stats LoadStats, report Report) {
		assert.Equal(t, stats.RunID, report.RunID)
		got = append(got, report)
	})

	report, err := r.RefreshOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, int64(5), report.Totals[0].Value)
}

func TestRefresher_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	r, fetcher := newTestRefresher(20 * time.Millisecond)
	refreshed := make(chan Report, 16)
	r.OnRefresh(func(ctx context.Context, stats LoadStats, report Report) {
		select {
		case refreshed <- report:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, r.Start(ctx))
	assert.True(t, r.IsRunning())
	assert.Error(t, r.Start(ctx), "second start must fail")

	// Startup refresh plus at least one tick.
	for i := 0; i < 2; i++ {
		select {
		case <-refreshed:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for refresh")
		}
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	require.NoError(t, r.Stop(stopCtx))
	assert.False(t, r.IsRunning())
	assert.GreaterOrEqual(t, len(fetcher.Calls()), 4)
}
