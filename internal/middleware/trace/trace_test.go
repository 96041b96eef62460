package trace

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	applog "salmonsurvey/internal/log"
)

func TestGenerateRequestID(t *testing.T) {
	a, b := GenerateRequestID(), GenerateRequestID()
	assert.True(t, strings.HasPrefix(a, "req_"))
	assert.Len(t, a, len("req_")+16)
	assert.NotEqual(t, a, b)
}

func TestMiddleware_AssignsRequestID(t *testing.T) {
	m := NewMiddleware()
	e := echo.New()
	e.Use(m.Handler)

	var seenID, seenComponent string
	e.GET("/", func(c echo.Context) error {
		seenID = GetRequestID(c.Request().Context())
		seenComponent = applog.FromContext(c.Request().Context()).Component()
		return c.NoContent(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, seenID)
	assert.Equal(t, seenID, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, applog.ComponentHTTP, seenComponent)
	assert.Equal(t, int64(1), m.GetMetrics().TotalRequests)
}

func TestMiddleware_KeepsIncomingRequestID(t *testing.T) {
	e := echo.New()
	e.Use(NewMiddleware().Handler)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "upstream-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, "upstream-1", rec.Header().Get(HeaderRequestID))
}

func TestMiddleware_HandlerErrorWritesStatus(t *testing.T) {
	e := echo.New()
	e.Use(NewMiddleware().Handler)
	e.GET("/", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusBadGateway, errors.New("upstream down").Error())
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
