package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Config{
		JWTSecret: "test-secret",
		Events:    config.EventsConfig{Backend: config.EventsBackendNone},
		Feed:      config.FeedConfig{Backend: config.FeedBackendNone},
	}
	srv, err := New(t.Context(), cfg, logging.Discard(), WithMemoryStore())
	require.NoError(t, err)
	return srv
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New(t.Context(), config.Config{}, nil, WithMemoryStore())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestNewRejectsUnknownBackends(t *testing.T) {
	cfg := config.Config{JWTSecret: "s", Events: config.EventsConfig{Backend: "kafka"}}
	_, err := New(t.Context(), cfg, nil, WithMemoryStore())
	assert.Error(t, err)

	cfg = config.Config{JWTSecret: "s", Feed: config.FeedConfig{Backend: "s3"}}
	_, err = New(t.Context(), cfg, nil, WithMemoryStore())
	assert.Error(t, err)
}

func TestSeededLoginExposesTokenHeader(t *testing.T) {
	srv := newMemoryServer(t)

	report, err := srv.Seed(t.Context())
	require.NoError(t, err)
	assert.True(t, report.AdminCreated)
	assert.Equal(t, 4, report.CardsCreated)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"username":"admin","password":"admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://console.example")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(auth.TokenHeader))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), auth.TokenHeader)

	req = httptest.NewRequest(http.MethodGet, "/cards/visible", nil)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, strings.Count(rec.Body.String(), `"isVisible":true`))
}

func TestPreflightAllowsTokenHeader(t *testing.T) {
	router := NewRouter(Deps{AllowedOrigins: []string{"http://console.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/cards", nil)
	req.Header.Set("Origin", "http://console.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", auth.TokenHeader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "http://console.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), auth.TokenHeader)
}
