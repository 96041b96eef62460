package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salmonsurvey/internal/cache"
	"salmonsurvey/internal/core"
	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/middleware/security"
	"salmonsurvey/internal/middleware/trace"
	"salmonsurvey/internal/services"
)

const reportKey = "report"

// ReportSource builds reports from the stored records.
type ReportSource interface {
	Report(ctx context.Context) (services.Report, error)
	Taxonomy() core.Taxonomy
}

// Server serves the survey report over HTTP.
type Server struct {
	echo    *echo.Echo
	addr    string
	reports ReportSource
	trace   *trace.Middleware

	reportCache  *cache.LRUCache[services.Report]
	cacheManager *cache.Manager
}

// NewServer wires routes and middleware. A non-positive cacheTTL keeps the
// cached report until the next refresh replaces it.
func NewServer(addr string, reports ReportSource, cacheTTL time.Duration) *Server {
	if cacheTTL < 0 {
		cacheTTL = 0
	}
	s := &Server{
		echo:         echo.New(),
		addr:         addr,
		reports:      reports,
		trace:        trace.NewMiddleware(),
		reportCache:  cache.NewLRUCache[services.Report](1, cacheTTL),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.reportCache)

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = 10 * time.Second
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second

	e.Use(middleware.Recover())
	e.Use(s.trace.Handler)
	e.Use(security.Headers(security.DefaultHeadersConfig()))

	e.GET("/", s.handleIndex)
	e.GET("/api/report", s.handleReportJSON)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.cacheManager.StartCleanup(time.Minute)
	defer s.cacheManager.Stop()

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening",
			applog.FieldComponent, applog.ComponentHTTP, "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	slog.InfoContext(ctx, "HTTP server shutting down", applog.FieldComponent, applog.ComponentHTTP)
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// StoreReport replaces the cached report with a freshly refreshed one.
func (s *Server) StoreReport(_ context.Context, rep services.Report) {
	s.reportCache.Purge()
	s.reportCache.Set(reportKey, rep)
}

// InvalidateReport drops the cached report so the next request rebuilds it.
func (s *Server) InvalidateReport() {
	s.reportCache.Purge()
}

func (s *Server) currentReport(ctx context.Context) (services.Report, error) {
	rep, hit, err := s.reportCache.GetOrLoad(reportKey, func() (services.Report, error) {
		return s.reports.Report(ctx)
	})
	if err != nil {
		return services.Report{}, err
	}
	if hit {
		metricsReportBuild("cache")
	} else {
		metricsReportBuild("build")
	}
	return rep, nil
}
