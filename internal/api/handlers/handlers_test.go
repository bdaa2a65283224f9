package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alligatorO15/fin-dashboard/internal/analytics"
	"github.com/alligatorO15/fin-dashboard/internal/api/middleware"
	"github.com/alligatorO15/fin-dashboard/internal/models"
	"github.com/alligatorO15/fin-dashboard/internal/ratelimit"
	"github.com/alligatorO15/fin-dashboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAnalytics struct {
	desc models.PeriodDescriptor
	topN int
	err  error
}

func (s *stubAnalytics) GetAnalytics(_ context.Context, _ uuid.UUID, desc models.PeriodDescriptor, topN int) (*models.AnalyticsReport, error) {
	s.desc, s.topN = desc, topN
	if s.err != nil {
		return nil, s.err
	}
	return &models.AnalyticsReport{Period: desc}, nil
}

func (s *stubAnalytics) GetDashboard(context.Context, uuid.UUID) (*models.Dashboard, error) {
	return &models.Dashboard{}, s.err
}

func (s *stubAnalytics) GetCategories(context.Context, uuid.UUID) ([]models.CategoryInfo, error) {
	return []models.CategoryInfo{}, s.err
}

type stubCommands struct {
	result   *models.CommandResult
	decision ratelimit.Decision
	err      error
}

func (s *stubCommands) Send(context.Context, uuid.UUID, string) (*models.CommandResult, ratelimit.Decision, error) {
	return s.result, s.decision, s.err
}

func get(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func analyticsRouter(svc service.AnalyticsService) *gin.Engine {
	router := gin.New()
	h := NewAnalyticsHandler(svc)
	router.GET("/analytics", h.GetAnalytics)
	router.GET("/analytics/trends.png", h.GetTrendsChart)
	return router
}

func TestGetAnalytics_Period(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		query    string
		wantDesc models.PeriodDescriptor
		wantTop  int
	}{
		{"default", "", models.PeriodDescriptor{Preset: models.PeriodLast6Months}, 0},
		{"alias", "?period=3m", models.PeriodDescriptor{Preset: models.PeriodLast3Months}, 0},
		{"full name", "?period=all-time&top=3", models.PeriodDescriptor{Preset: models.PeriodAllTime}, 3},
		{"explicit pair", "?from=2025-01-01&to=2025-03-31&period=1y", models.PeriodDescriptor{From: &from, To: &to}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubAnalytics{}
			w := get(analyticsRouter(svc), "/analytics"+tt.query)

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.wantDesc, svc.desc)
			assert.Equal(t, tt.wantTop, svc.topN)
		})
	}
}

func TestGetAnalytics_BadRequest(t *testing.T) {
	queries := []string{
		"?period=last-week",
		"?from=2025-01-01",
		"?from=01/01/2025&to=2025-02-01",
		"?top=0",
		"?top=21",
		"?top=abc",
	}

	for _, query := range queries {
		t.Run(query, func(t *testing.T) {
			w := get(analyticsRouter(&stubAnalytics{}), "/analytics"+query)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetTrendsChart_NotEnoughData(t *testing.T) {
	w := get(analyticsRouter(&stubAnalytics{}), "/analytics/trends.png?period=3m")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrForbidden, http.StatusNotFound},
		{fmt.Errorf("load: %w", service.ErrInvalidToken), http.StatusUnauthorized},
		{service.ErrUserExists, http.StatusConflict},
		{service.ErrAssistantBusy, http.StatusConflict},
		{service.ErrRateLimited, http.StatusTooManyRequests},
		{service.ErrAssistantUnavailable, http.StatusBadGateway},
		{service.ErrAssistantNotConfigured, http.StatusBadGateway},
		{fmt.Errorf("%w: unknown preset", analytics.ErrInvalidPeriod), http.StatusBadRequest},
		{service.ErrCommandInvalid, http.StatusBadRequest},
		{service.ErrCreditOnlyField, http.StatusBadRequest},
		{service.ErrInvalidFrequency, http.StatusBadRequest},
		{errors.New("pool closed"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	w := get(analyticsRouter(&stubAnalytics{err: errors.New("password=secret")}), "/analytics")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "secret")
}

func commandRouter(svc service.CommandService) *gin.Engine {
	router := gin.New()
	router.POST("/commands", NewCommandHandler(svc).Send)
	return router
}

func postCommand(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/commands", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestCommandSend_Headers(t *testing.T) {
	reset := time.Now().Add(30 * time.Second)
	svc := &stubCommands{
		result:   &models.CommandResult{Success: true, Data: json.RawMessage(`{"reply":"ok"}`)},
		decision: ratelimit.Decision{Allowed: true, Limit: 10, Remaining: 9, ResetAt: reset},
	}

	w := postCommand(commandRouter(svc), `{"command":"saldo"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))
	assert.JSONEq(t, `{"success":true,"data":{"reply":"ok"}}`, w.Body.String())
}

func TestCommandSend_Errors(t *testing.T) {
	reset := time.Now().Add(30 * time.Second)

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"rate limited", service.ErrRateLimited, http.StatusTooManyRequests},
		{"busy", service.ErrAssistantBusy, http.StatusConflict},
		{"invalid", service.ErrCommandInvalid, http.StatusBadRequest},
		{"unavailable", service.ErrAssistantUnavailable, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubCommands{
				decision: ratelimit.Decision{Allowed: tt.status != http.StatusTooManyRequests, Limit: 10, ResetAt: reset, RetryAfter: 30 * time.Second},
				err:      tt.err,
			}
			w := postCommand(commandRouter(svc), `{"command":"saldo"}`)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusTooManyRequests {
				assert.Equal(t, "30", w.Header().Get("Retry-After"))
			}
		})
	}
}

func TestCommandSend_BadBody(t *testing.T) {
	w := postCommand(commandRouter(&stubCommands{}), `{`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetDashboard_UsesUserFromContext(t *testing.T) {
	router := gin.New()
	userID := uuid.New()
	router.GET("/dashboard", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
	}, NewAnalyticsHandler(&stubAnalytics{}).GetDashboard)

	w := get(router, "/dashboard")
	assert.Equal(t, http.StatusOK, w.Code)
}
