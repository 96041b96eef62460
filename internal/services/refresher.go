package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	applog "salmonsurvey/internal/log"
)

// RefresherConfig holds configuration for the refresher
type RefresherConfig struct {
	// URL is the first page of the survey source
	URL string

	// Interval is how often to reload and rebuild (default: 15m)
	Interval time.Duration
}

// DefaultRefresherConfig returns sensible defaults
func DefaultRefresherConfig() RefresherConfig {
	return RefresherConfig{
		Interval: 15 * time.Minute,
	}
}

// RefreshHook receives every successfully rebuilt report.
type RefreshHook func(ctx context.Context, stats LoadStats, report Report)

// Refresher periodically reloads the survey and rebuilds the report
type Refresher struct {
	loader  *Loader
	reports *ReportService
	config  RefresherConfig
	hooks   []RefreshHook

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRefresher creates a new refresher
func NewRefresher(loader *Loader, reports *ReportService, config RefresherConfig) *Refresher {
	if config.Interval <= 0 {
		config.Interval = DefaultRefresherConfig().Interval
	}
	return &Refresher{
		loader:  loader,
		reports: reports,
		config:  config,
	}
}

// OnRefresh registers a hook. Hooks must be registered before Start.
func (r *Refresher) OnRefresh(hook RefreshHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Start begins the refresh loop. Returns an error if already running.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("refresher is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	r.mu.Unlock()

	go r.runLoop(ctx)

	slog.InfoContext(ctx, "Refresher started",
		"interval", r.config.Interval,
		"url", r.config.URL)

	return nil
}

// Stop gracefully stops the refresher and waits for completion.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Refresher stopped gracefully")
	case <-ctx.Done():
		slog.WarnContext(ctx, "Refresher stop timed out")
		return ctx.Err()
	}

	r.mu.Lock()
	r.running = false
	r.mu.Unlock()

	return nil
}

// IsRunning returns whether the refresher is currently running
func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// RefreshOnce loads the source, rebuilds the report and runs the hooks.
func (r *Refresher) RefreshOnce(ctx context.Context) (Report, error) {
	stats, err := r.loader.Load(ctx, r.config.URL)
	if err != nil {
		return Report{}, fmt.Errorf("load survey: %w", err)
	}

	report, err := r.reports.Report(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("build report: %w", err)
	}
	report.RunID = stats.RunID

	r.mu.Lock()
	hooks := append([]RefreshHook(nil), r.hooks...)
	r.mu.Unlock()
	for _, hook := range hooks {
		hook(ctx, stats, report)
	}

	return report, nil
}

func (r *Refresher) runLoop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	// Refresh immediately on startup
	r.refresh(ctx)

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	// Stop interrupts an in-flight load
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.stopCh:
			cancel()
		case <-runCtx.Done():
		}
	}()

	if _, err := r.RefreshOnce(runCtx); err != nil {
		slog.ErrorContext(ctx, "Refresh failed", applog.FieldComponent, applog.ComponentLoader, applog.FieldError, err)
	}
}
