package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hoa-manager/hoa-backend/internal/middleware"
	"github.com/hoa-manager/hoa-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes(t *testing.T) {
	e := echo.New()
	f := setupReportHandler(t)
	billHandler, _ := setupBillHandler()
	rl := middleware.NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	RegisterRoutes(e, f.handler, billHandler, NewWebSocketHandler(websocket.NewHub(), nil), rl)

	registered := make(map[string]bool)
	for _, r := range e.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"GET /api/v1/reports",
		"POST /api/v1/reports",
		"GET /api/v1/reports/:id",
		"PUT /api/v1/reports/:id",
		"DELETE /api/v1/reports/:id",
		"POST /api/v1/reports/:id/generate",
		"POST /api/v1/reports/quick-generate",
		"POST /api/v1/reports/send-email",
		"GET /api/v1/reports/generations",
		"GET /api/v1/reports/generations/:id",
		"GET /api/v1/reports/download/:id",
		"GET /api/v1/reports/templates",
		"GET /api/v1/reports/dashboard",
		"GET /api/v1/bills",
		"POST /api/v1/bills",
		"GET /api/v1/bills/:id",
		"PUT /api/v1/bills/:id",
		"DELETE /api/v1/bills/:id",
		"GET /ws",
	} {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestRegisterRoutes_RenderEndpointsAreRateLimited(t *testing.T) {
	e := echo.New()
	f := setupReportHandler(t)
	billHandler, _ := setupBillHandler()
	rl := middleware.NewRateLimiterWithConfig(60, 1)
	defer rl.Stop()

	RegisterRoutes(e, f.handler, billHandler, NewWebSocketHandler(websocket.NewHub(), nil), rl)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/quick-generate",
			strings.NewReader(`{"templateName": "financial_monthly", "year": 2025, "month": 3}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.RemoteAddr = "203.0.113.9:4711"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	require.Equal(t, http.StatusCreated, first.Code)

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))

	// Reads are not limited
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reports/templates", nil)
	req.RemoteAddr = "203.0.113.9:4711"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
