package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/session"
	"golang.org/x/oauth2"
)

const (
	googleIssuerURL   = "https://accounts.google.com"
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// IDTokenVerifier checks the ID token returned alongside the access token.
// Satisfied by *oidc.IDTokenVerifier.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Google performs the Google authorization-code exchange directly against
// Google's token endpoint; its token endpoint accepts a client secret from
// a public client build, so no proxy is involved.
type Google struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	verifier    IDTokenVerifier
	httpClient  *http.Client
	nowTime     func() time.Time
}

// GoogleOption modifies a Google provider instance.
type GoogleOption func(*Google)

// WithGoogleHTTPClient sets the HTTP client used for the token exchange and
// profile fetch (primarily for testing).
func WithGoogleHTTPClient(client *http.Client) GoogleOption {
	return func(g *Google) { g.httpClient = client }
}

// WithGoogleEndpoint overrides the OAuth2 endpoint (primarily for testing).
func WithGoogleEndpoint(endpoint oauth2.Endpoint) GoogleOption {
	return func(g *Google) { g.oauthConfig.Endpoint = endpoint }
}

// WithGoogleUserInfoURL overrides the profile endpoint (primarily for testing).
func WithGoogleUserInfoURL(userInfoURL string) GoogleOption {
	return func(g *Google) { g.userInfoURL = userInfoURL }
}

// WithGoogleVerifier enables ID token verification for the exchange.
func WithGoogleVerifier(verifier IDTokenVerifier) GoogleOption {
	return func(g *Google) { g.verifier = verifier }
}

// WithGoogleNowTime sets the now time function (primarily for testing).
func WithGoogleNowTime(nowFunc func() time.Time) GoogleOption {
	return func(g *Google) { g.nowTime = nowFunc }
}

func NewGoogle(cfg config.Config, options ...GoogleOption) *Google {
	g := &Google{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GetGoogleClientID(),
			ClientSecret: cfg.GetGoogleClientSecret(),
			RedirectURL:  cfg.GetRedirectOrigin() + "/auth/callback",
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  googleAuthURL,
				TokenURL: googleTokenURL,
			},
		},
		userInfoURL: googleUserInfoURL,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

// NewGoogleIDTokenVerifier builds a verifier from Google's OIDC discovery
// document. Requires network access, so callers wire it at startup and fall
// back to unverified exchange when discovery is unavailable.
func NewGoogleIDTokenVerifier(ctx context.Context, clientID string) (IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, googleIssuerURL)
	if err != nil {
		return nil, errors.Wrapf(err, "[NewGoogleIDTokenVerifier] oidc discovery")
	}
	return provider.Verifier(&oidc.Config{ClientID: clientID}), nil
}

var _ Provider = (*Google)(nil)

func (g *Google) Name() string {
	return string(session.ProviderGoogle)
}

func (g *Google) AuthorizationURL(state string) string {
	return g.oauthConfig.AuthCodeURL(state)
}

func (g *Google) CompleteAuthorization(ctx context.Context, code string) (session.Session, error) {
	if g.oauthConfig.ClientID == "" {
		return session.Session{}, errors.Wrapf(errors.ErrMissingConfiguration, "google client id")
	}

	if g.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
	}

	tok, err := g.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return session.Session{}, errors.Wrapf(errors.ErrTokenExchange, "google: %v", err)
	}
	if tok.AccessToken == "" {
		return session.Session{}, errors.Wrapf(errors.ErrTokenExchange, "google: empty access token")
	}

	if g.verifier != nil {
		rawIDToken, ok := tok.Extra("id_token").(string)
		if !ok {
			return session.Session{}, errors.Wrapf(errors.ErrTokenExchange, "google: no id token in response")
		}
		if _, err := g.verifier.Verify(ctx, rawIDToken); err != nil {
			return session.Session{}, errors.Wrapf(errors.ErrTokenExchange, "google: id token verification: %v", err)
		}
	}

	profile, err := g.fetchProfile(ctx, tok.AccessToken)
	if err != nil {
		return session.Session{}, err
	}

	id := profile.ID
	if id == "" {
		id = profile.Sub
	}
	name := profile.Name
	if name == "" {
		name = profile.Email
	}

	s := session.Session{
		ID:        id,
		Name:      name,
		Email:     profile.Email,
		Picture:   profile.Picture,
		Provider:  session.ProviderGoogle,
		CreatedAt: g.nowTime(),
	}
	if s.ID == "" || s.Email == "" {
		return session.Session{}, errors.Wrapf(errors.ErrProfileFetch, "google profile incomplete")
	}
	return s, nil
}

type googleProfile struct {
	ID      string `json:"id"`
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (g *Google) fetchProfile(ctx context.Context, accessToken string) (googleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return googleProfile{}, errors.Wrapf(err, "[Google.fetchProfile] build request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	client := g.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return googleProfile{}, errors.Wrapf(errors.ErrProfileFetch, "google userinfo: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, errors.Wrapf(errors.ErrProfileFetch, "google userinfo: status %d", resp.StatusCode)
	}

	var profile googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return googleProfile{}, errors.Wrapf(errors.ErrProfileFetch, "google userinfo: %v", err)
	}
	return profile, nil
}
