package http

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"

	applog "salmonsurvey/internal/log"
	"salmonsurvey/internal/metrics"
	"salmonsurvey/internal/report"
)

var metricsReportBuild = metrics.RecordReportBuild

func (s *Server) handleIndex(c echo.Context) error {
	ctx := c.Request().Context()
	rep, err := s.currentReport(ctx)
	if err != nil {
		return s.reportError(c, err)
	}

	var buf bytes.Buffer
	meta := report.PageMeta{RunID: rep.RunID, GeneratedAt: rep.GeneratedAt}
	if err := report.RenderHTMLWithMeta(&buf, rep.Summary, s.reports.Taxonomy(), meta); err != nil {
		metrics.RecordError(applog.OpRender)
		applog.FromContext(ctx).ErrorContext(ctx, "Render report page", applog.FieldError, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not render report")
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (s *Server) handleReportJSON(c echo.Context) error {
	rep, err := s.currentReport(c.Request().Context())
	if err != nil {
		return s.reportError(c, err)
	}
	return c.JSON(http.StatusOK, newReportResponse(rep, s.reports.Taxonomy()))
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) reportError(c echo.Context, err error) error {
	ctx := c.Request().Context()
	metrics.RecordError(applog.OpBuild)
	applog.FromContext(ctx).ErrorContext(ctx, "Build report", applog.FieldError, err)
	return echo.NewHTTPError(http.StatusServiceUnavailable, "report unavailable")
}
