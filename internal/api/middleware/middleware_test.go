package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

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

type stubValidator struct {
	userID uuid.UUID
}

func (v stubValidator) ValidateToken(token string) (*service.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &service.Claims{UserID: v.userID, Email: "ana@example.com"}, nil
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth(t *testing.T) {
	userID := uuid.New()
	router := gin.New()
	router.GET("/me", Auth(stubValidator{userID: userID}), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c).String())
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Bearer", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"ok", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.header != "" {
				header.Set("Authorization", tt.header)
			}
			w := serve(router, http.MethodGet, "/me", header)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, userID.String(), w.Body.String())
			}
		})
	}
}

func TestGetUserID_WithoutAuth(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, GetUserID(c))
}

func TestRateLimit(t *testing.T) {
	// часы Store далеко от реального времени, Retry-After должен считаться по ним
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	store := ratelimit.NewStore(2, time.Minute, ratelimit.WithClock(func() time.Time { return now }))

	router := gin.New()
	router.GET("/dashboard", RateLimit(store, ByUser), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	reset := strconv.FormatInt(now.Add(time.Minute).UnixMilli(), 10)

	w := serve(router, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, reset, w.Header().Get("X-RateLimit-Reset"))

	serve(router, http.MethodGet, "/dashboard", nil)

	w = serve(router, http.MethodGet, "/dashboard", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "try again in 60s")
}

func TestByUser(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "10.0.0.7:5555"
	assert.Equal(t, "ip:10.0.0.7", ByUser(c))

	userID := uuid.New()
	c.Set(UserIDKey, userID)
	assert.Equal(t, "user:"+userID.String(), ByUser(c))
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	header := http.Header{}
	header.Set("Origin", "https://app.example.com")
	w := serve(router, http.MethodGet, "/health", header)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	header.Set("Origin", "https://evil.example.com")
	w = serve(router, http.MethodGet, "/health", header)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodOptions, "/health", header)
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestCORS_AllowAll(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"*"}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(router, http.MethodGet, "/health", nil)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAbortRateLimited_RetryAfter(t *testing.T) {
	tests := []struct {
		name       string
		retryAfter time.Duration
		want       string
	}{
		{"whole seconds", 30 * time.Second, "30"},
		{"rounds up", 1500 * time.Millisecond, "2"},
		{"at least one second", 0, "1"},
		{"stale decision", -5 * time.Second, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			AbortRateLimited(c, ratelimit.Decision{Limit: 1, RetryAfter: tt.retryAfter})

			assert.Equal(t, http.StatusTooManyRequests, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Retry-After"))
		})
	}
}
