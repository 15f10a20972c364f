package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/healthycare/healthycare/auth"
	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/placeholder"
	"github.com/healthycare/healthycare/providers"
	"github.com/healthycare/healthycare/server"
	"github.com/healthycare/healthycare/session"
	"github.com/healthycare/healthycare/session/storefakes"
	"github.com/healthycare/healthycare/token"
	"github.com/stretchr/testify/require"
)

type exchangeFixture struct {
	server       *server.Server
	upstreamBody map[string]string
}

func setupExchangeFixture(t *testing.T) *exchangeFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	cfg := config.New()
	f := &exchangeFixture{}

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&f.upstreamBody))
		json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_exchanged",
			"token_type":   "bearer",
			"scope":        "read:user,user:email",
		})
	}))
	t.Cleanup(upstream.Close)

	store := storefakes.NewFakeStore()
	registry := providers.NewRegistry(&stubProvider{name: string(session.ProviderGithub)})
	tokens := token.NewCreator(cfg.GetSessionTokenSecret(), time.Hour)
	machine, err := auth.NewMachine(store, registry, tokens, cfg)
	require.NoError(t, err)

	srv, err := server.New(cfg, machine, placeholder.NewClient("http://unused.invalid"),
		server.WithGithubTokenURL(upstream.URL))
	require.NoError(t, err)
	f.server = srv

	return f
}

func TestGithubExchangeForwardsCredentials(t *testing.T) {
	f := setupExchangeFixture(t)

	req := httptest.NewRequest("POST", "/api/github/oauth", strings.NewReader(`{"code":"abc123","redirect_uri":"http://localhost:8080/auth/callback"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "gho_exchanged")

	require.Equal(t, "test-github-id", f.upstreamBody["client_id"])
	require.Equal(t, "test-github-secret", f.upstreamBody["client_secret"])
	require.Equal(t, "abc123", f.upstreamBody["code"])
	require.Equal(t, "http://localhost:8080/auth/callback", f.upstreamBody["redirect_uri"])
}

func TestGithubExchangeRequiresCode(t *testing.T) {
	f := setupExchangeFixture(t)

	req := httptest.NewRequest("POST", "/api/github/oauth", strings.NewReader(`{"redirect_uri":"http://localhost:8080/auth/callback"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Code is required")
}

func TestGithubExchangePreflight(t *testing.T) {
	f := setupExchangeFixture(t)

	req := httptest.NewRequest("OPTIONS", "/api/github/oauth", nil)
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	require.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
}
