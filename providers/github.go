package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/session"
)

const (
	githubAuthorizeURL = "https://github.com/login/oauth/authorize"
	githubAPIBaseURL   = "https://api.github.com"
	githubScope        = "read:user user:email"
)

// Github performs the GitHub authorization-code exchange. GitHub's token
// endpoint requires a confidential client secret and rejects cross-origin
// browser calls, so the exchange goes through a same-origin proxy accepting
// {code, redirect_uri} and answering {access_token, ...} or {error}.
type Github struct {
	clientID    string
	redirectURI string
	exchangeURL string
	apiBaseURL  string
	httpClient  *http.Client
	nowTime     func() time.Time
}

// GithubOption modifies a Github provider instance.
type GithubOption func(*Github)

// WithGithubHTTPClient sets the HTTP client (primarily for testing).
func WithGithubHTTPClient(client *http.Client) GithubOption {
	return func(g *Github) { g.httpClient = client }
}

// WithGithubAPIBaseURL overrides the GitHub API base URL (primarily for testing).
func WithGithubAPIBaseURL(baseURL string) GithubOption {
	return func(g *Github) { g.apiBaseURL = baseURL }
}

// WithGithubExchangeURL overrides the token exchange proxy URL.
func WithGithubExchangeURL(exchangeURL string) GithubOption {
	return func(g *Github) { g.exchangeURL = exchangeURL }
}

// WithGithubNowTime sets the now time function (primarily for testing).
func WithGithubNowTime(nowFunc func() time.Time) GithubOption {
	return func(g *Github) { g.nowTime = nowFunc }
}

func NewGithub(cfg config.Config, options ...GithubOption) *Github {
	origin := cfg.GetRedirectOrigin()
	g := &Github{
		clientID:    cfg.GetGithubClientID(),
		redirectURI: origin + "/auth/callback",
		exchangeURL: origin + cfg.GetGithubExchangePath(),
		apiBaseURL:  githubAPIBaseURL,
		httpClient:  http.DefaultClient,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

var _ Provider = (*Github)(nil)

func (g *Github) Name() string {
	return string(session.ProviderGithub)
}

func (g *Github) AuthorizationURL(state string) string {
	query := url.Values{}
	query.Set("client_id", g.clientID)
	query.Set("redirect_uri", g.redirectURI)
	query.Set("scope", githubScope)
	query.Set("response_type", "code")
	query.Set("state", state)
	return githubAuthorizeURL + "?" + query.Encode()
}

func (g *Github) CompleteAuthorization(ctx context.Context, code string) (session.Session, error) {
	if g.clientID == "" {
		return session.Session{}, errors.Wrapf(errors.ErrMissingConfiguration, "github client id")
	}

	accessToken, err := g.exchangeCode(ctx, code)
	if err != nil {
		return session.Session{}, err
	}

	profile, err := g.fetchProfile(ctx, accessToken)
	if err != nil {
		return session.Session{}, err
	}

	email := profile.Email
	if email == "" {
		// The primary profile endpoint may not expose a public email;
		// the emails endpoint is the authoritative source.
		email, err = g.fetchPrimaryEmail(ctx, accessToken)
		if err != nil {
			return session.Session{}, err
		}
	}

	name := profile.Name
	if name == "" {
		name = profile.Login
	}

	s := session.Session{
		ID:        strconv.FormatInt(profile.ID, 10),
		Name:      name,
		Email:     email,
		Picture:   profile.AvatarURL,
		Provider:  session.ProviderGithub,
		CreatedAt: g.nowTime(),
	}
	if profile.ID == 0 || s.Email == "" {
		return session.Session{}, errors.Wrapf(errors.ErrProfileFetch, "github profile incomplete")
	}
	return s, nil
}

// exchangeCode posts the authorization code to the exchange proxy and
// returns the access token.
func (g *Github) exchangeCode(ctx context.Context, code string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"code":         code,
		"redirect_uri": g.redirectURI,
	})
	if err != nil {
		return "", errors.Wrapf(err, "[Github.exchangeCode] marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.exchangeURL, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrapf(err, "[Github.exchangeCode] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(errors.ErrTokenExchange, "github proxy call: %v", err)
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Scope       string `json:"scope"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", errors.Wrapf(errors.ErrTokenExchange, "github proxy response: %v", err)
	}
	if payload.AccessToken == "" {
		cause := payload.Error
		if cause == "" {
			cause = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", errors.Wrapf(errors.ErrTokenExchange, "github: %s", cause)
	}
	return payload.AccessToken, nil
}

type githubProfile struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

func (g *Github) fetchProfile(ctx context.Context, accessToken string) (githubProfile, error) {
	var profile githubProfile
	if err := g.apiGet(ctx, "/user", accessToken, &profile); err != nil {
		return githubProfile{}, err
	}
	return profile, nil
}

// fetchPrimaryEmail returns the address flagged primary, falling back to
// the first entry when none is flagged.
func (g *Github) fetchPrimaryEmail(ctx context.Context, accessToken string) (string, error) {
	var emails []struct {
		Email      string `json:"email"`
		Primary    bool   `json:"primary"`
		Verified   bool   `json:"verified"`
		Visibility string `json:"visibility"`
	}
	if err := g.apiGet(ctx, "/user/emails", accessToken, &emails); err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return "", errors.Wrapf(errors.ErrProfileFetch, "github returned no email addresses")
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	return emails[0].Email, nil
}

func (g *Github) apiGet(ctx context.Context, path, accessToken string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBaseURL+path, nil)
	if err != nil {
		return errors.Wrapf(err, "[Github.apiGet] build request %s", path)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrProfileFetch, "github %s: %v", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(errors.ErrProfileFetch, "github %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(errors.ErrProfileFetch, "github %s: %v", path, err)
	}
	return nil
}
