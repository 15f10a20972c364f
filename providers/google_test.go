package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/providers"
	"github.com/healthycare/healthycare/session"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// googleFixture fakes Google's token and userinfo endpoints.
type googleFixture struct {
	tokenStatus     int
	tokenResponse   map[string]any
	profileResponse map[string]any

	tokenForm url.Values
	server    *httptest.Server
}

func newGoogleFixture(t *testing.T) *googleFixture {
	t.Helper()

	f := &googleFixture{
		tokenStatus: http.StatusOK,
		tokenResponse: map[string]any{
			"access_token": "ya29.test",
			"token_type":   "Bearer",
			"expires_in":   3600,
		},
		profileResponse: map[string]any{
			"id":      "google-uid-1",
			"email":   "test@example.com",
			"name":    "Test User",
			"picture": "https://lh3.example.com/photo.jpg",
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.tokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.tokenStatus)
		json.NewEncoder(w).Encode(f.tokenResponse)
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer ya29.test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(f.profileResponse)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *googleFixture) provider(t *testing.T) *providers.Google {
	t.Helper()
	t.Setenv("ENV", "TEST")
	return providers.NewGoogle(config.New(),
		providers.WithGoogleEndpoint(oauth2.Endpoint{
			AuthURL:   f.server.URL + "/auth",
			TokenURL:  f.server.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		providers.WithGoogleUserInfoURL(f.server.URL+"/userinfo"),
		providers.WithGoogleNowTime(func() time.Time { return fixedNow }),
	)
}

func TestGoogleAuthorizationURL(t *testing.T) {
	t.Setenv("ENV", "TEST")
	google := providers.NewGoogle(config.New())

	u, err := url.Parse(google.AuthorizationURL("google"))
	require.NoError(t, err)
	require.Equal(t, "accounts.google.com", u.Host)
	require.Equal(t, "/o/oauth2/v2/auth", u.Path)

	query := u.Query()
	require.Equal(t, "test-google-id", query.Get("client_id"))
	require.Equal(t, "code", query.Get("response_type"))
	require.Equal(t, "google", query.Get("state"))
	require.Equal(t, "openid email profile", query.Get("scope"))
	require.Contains(t, query.Get("redirect_uri"), "/auth/callback")
}

func TestGoogleCompleteAuthorization(t *testing.T) {
	f := newGoogleFixture(t)
	google := f.provider(t)

	got, err := google.CompleteAuthorization(context.Background(), "test-code")
	require.NoError(t, err)
	require.Equal(t, session.Session{
		ID:        "google-uid-1",
		Name:      "Test User",
		Email:     "test@example.com",
		Picture:   "https://lh3.example.com/photo.jpg",
		Provider:  session.ProviderGoogle,
		CreatedAt: fixedNow,
	}, got)

	// Form-encoded authorization_code grant with the client secret
	require.Equal(t, "test-code", f.tokenForm.Get("code"))
	require.Equal(t, "authorization_code", f.tokenForm.Get("grant_type"))
	require.Equal(t, "test-google-id", f.tokenForm.Get("client_id"))
	require.Equal(t, "test-google-secret", f.tokenForm.Get("client_secret"))
}

func TestGoogleCompleteAuthorizationSubFallback(t *testing.T) {
	f := newGoogleFixture(t)
	f.profileResponse = map[string]any{
		"sub":   "google-sub-2",
		"email": "sub@example.com",
	}
	google := f.provider(t)

	got, err := google.CompleteAuthorization(context.Background(), "test-code")
	require.NoError(t, err)
	require.Equal(t, "google-sub-2", got.ID)
	// Display name falls back to the email address
	require.Equal(t, "sub@example.com", got.Name)
}

func TestGoogleCompleteAuthorizationExchangeFailure(t *testing.T) {
	f := newGoogleFixture(t)
	f.tokenStatus = http.StatusBadRequest
	f.tokenResponse = map[string]any{"error": "invalid_grant"}
	google := f.provider(t)

	_, err := google.CompleteAuthorization(context.Background(), "expired-code")
	require.ErrorIs(t, err, errors.ErrTokenExchange)
}

func TestGoogleCompleteAuthorizationIncompleteProfile(t *testing.T) {
	f := newGoogleFixture(t)
	f.profileResponse = map[string]any{"name": "No ID"}
	google := f.provider(t)

	_, err := google.CompleteAuthorization(context.Background(), "test-code")
	require.ErrorIs(t, err, errors.ErrProfileFetch)
}

func TestRegistryForState(t *testing.T) {
	t.Setenv("ENV", "TEST")
	cfg := config.New()
	registry := providers.NewRegistry(providers.NewGithub(cfg), providers.NewGoogle(cfg))

	github, err := registry.ForState("github")
	require.NoError(t, err)
	require.Equal(t, "github", github.Name())

	google, err := registry.ForState("google")
	require.NoError(t, err)
	require.Equal(t, "google", google.Name())

	_, err = registry.ForState("netlify")
	require.ErrorIs(t, err, errors.ErrUnknownProviderState)
}
