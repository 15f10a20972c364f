package config

import "fmt"

// OAuthConfig resolves provider credentials and redirect origins.
// Absent values resolve to empty strings so that callers fail later with a
// clear "missing configuration" error instead of crashing at startup.
type OAuthConfig interface {
	GetGithubClientID() string
	GetGithubClientSecret() string
	GetGoogleClientID() string
	GetGoogleClientSecret() string
	GetRedirectOrigin() string
	GetGithubExchangePath() string
	GetSessionTokenSecret() string
}

// Deterministic values returned when ENV=TEST so the exchange clients are
// unit-testable without real credentials.
const (
	testGithubClientID     = "test-github-id"
	testGithubClientSecret = "test-github-secret"
	testGoogleClientID     = "test-google-id"
	testGoogleClientSecret = "test-google-secret"
)

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (o OAuth) GetGithubClientID() string {
	if o.isTestEnv() {
		return testGithubClientID
	}
	return GetEnv("GITHUB_CLIENT_ID", "")
}

// GetGithubClientSecret returns the confidential secret used only by the
// server-side exchange proxy. It is never exposed to callers of the public
// endpoints.
func (o OAuth) GetGithubClientSecret() string {
	if o.isTestEnv() {
		return testGithubClientSecret
	}
	return GetEnv("GITHUB_CLIENT_SECRET", "")
}

func (o OAuth) GetGoogleClientID() string {
	if o.isTestEnv() {
		return testGoogleClientID
	}
	return GetEnv("GOOGLE_CLIENT_ID", "")
}

func (o OAuth) GetGoogleClientSecret() string {
	if o.isTestEnv() {
		return testGoogleClientSecret
	}
	return GetEnv("GOOGLE_CLIENT_SECRET", "")
}

// GetRedirectOrigin returns the origin used to build OAuth redirect URIs.
// Falls back to the local listen address when no site URL is configured.
func (o OAuth) GetRedirectOrigin() string {
	if siteURL := (EnvVars{}).GetSiteURL(); siteURL != "" {
		return siteURL
	}
	return fmt.Sprintf("http://localhost%s", EnvVars{}.GetPort())
}

// GetGithubExchangePath returns the path of the same-origin proxy that
// performs the GitHub code-for-token exchange. GitHub's token endpoint
// requires a confidential client secret and forbids direct browser calls,
// so the exchange always goes through this proxy. Any backend accepting
// {code, redirect_uri} and answering {access_token, ...} is interchangeable.
func (OAuth) GetGithubExchangePath() string {
	return GetEnv("GITHUB_EXCHANGE_PATH", "/api/github/oauth")
}

// GetSessionTokenSecret returns the HS256 signing secret for locally minted
// session tokens (email/password demo path).
func (o OAuth) GetSessionTokenSecret() string {
	if o.isTestEnv() {
		return "test-session-token-secret"
	}
	return GetEnv("SESSION_TOKEN_SECRET", "healthycare-dev-secret")
}

func (OAuth) isTestEnv() bool {
	return EnvVars{}.GetEnv() == "TEST"
}
