package auth

import (
	"context"
	"strings"
	"time"

	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/internal/utils"
	"github.com/healthycare/healthycare/providers"
	"github.com/healthycare/healthycare/session"
	"github.com/healthycare/healthycare/token"
	"github.com/rs/zerolog/log"
)

// Status is the finite state describing whether/how authentication is in
// progress.
type Status string

const (
	StatusIdle            Status = "idle"            // Not yet initialized
	StatusLoading         Status = "loading"         // An operation is in flight
	StatusAuthenticated   Status = "authenticated"   // A session is present
	StatusUnauthenticated Status = "unauthenticated" // No session
)

// MetricsRecorder receives login outcome events.
type MetricsRecorder interface {
	RecordLoginSuccess(provider string)
	RecordLoginFailure(provider string, reason string)
}

type nopMetrics struct{}

func (nopMetrics) RecordLoginSuccess(string)         {}
func (nopMetrics) RecordLoginFailure(string, string) {}

// Machine owns the auth status lifecycle. It is the exclusive owner of the
// session record: every transition into authenticated is accompanied by a
// store write, and every transition out clears the store.
type Machine struct {
	store    session.Store
	registry *providers.Registry
	tokens   *token.Creator
	accounts map[string]DemoAccount
	metrics  MetricsRecorder

	minPasswordLength int
	loginDelay        time.Duration
	nowTime           func() time.Time

	pub *publisher

	status      Status
	user        *session.Session
	lastErr     error
	initialized bool
}

// Option defines a function type to modify the Machine instance.
type Option func(*Machine)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Machine) { m.nowTime = nowFunc }
}

// WithLoginDelay overrides the artificial delay of the simulated
// email/password check.
func WithLoginDelay(delay time.Duration) Option {
	return func(m *Machine) { m.loginDelay = delay }
}

// WithDemoAccounts replaces the built-in allow-list.
func WithDemoAccounts(accounts map[string]DemoAccount) Option {
	return func(m *Machine) { m.accounts = accounts }
}

// WithMetrics sets the login outcome recorder.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(m *Machine) { m.metrics = metrics }
}

// NewMachine initializes the auth state machine with required dependencies.
func NewMachine(store session.Store, registry *providers.Registry, tokens *token.Creator, cfg config.Config, options ...Option) (*Machine, error) {
	if store == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewMachine] store is required")
	}
	if registry == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewMachine] provider registry is required")
	}
	if tokens == nil {
		return nil, errors.Wrapf(errors.ErrInternal, "[NewMachine] token creator is required")
	}

	m := &Machine{
		store:             store,
		registry:          registry,
		tokens:            tokens,
		accounts:          DefaultDemoAccounts(),
		metrics:           nopMetrics{},
		minPasswordLength: cfg.GetMinPasswordLength(),
		loginDelay:        cfg.GetLoginDelay(),
		nowTime:           time.Now,
		pub:               newPublisher(),
		status:            StatusIdle,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Initialize restores a persisted session, if any. Runs once at startup and
// never touches the network: a locally persisted record is trusted, except
// that an email-path session with an invalid or expired token is treated as
// an invalid local copy and silently discarded.
func (m *Machine) Initialize(ctx context.Context) {
	restored, err := m.store.Load()
	if err != nil {
		log.Err(err).Msg("session restore failed, starting logged out")
		restored = nil
	}

	if restored != nil && restored.Provider == session.ProviderEmail {
		if err := m.tokens.ValidateSessionToken(restored.Token); err != nil {
			log.Warn().Err(err).Msg("persisted session token no longer valid, clearing")
			_ = m.store.Clear()
			restored = nil
		}
	}

	m.pub.mutate(func() Snapshot {
		m.initialized = true
		m.lastErr = nil
		if restored != nil {
			m.user = restored
			m.status = StatusAuthenticated
		} else {
			m.user = nil
			m.status = StatusUnauthenticated
		}
		return m.snapshotLocked()
	})
}

// LoginWithPassword runs the email/password path. Validation failures fail
// fast without any delay; the simulated credential check happens after an
// artificial delay and succeeds only for allow-listed demo accounts.
func (m *Machine) LoginWithPassword(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := ValidateCredentials(email, password, m.minPasswordLength); err != nil {
		m.fail(string(session.ProviderEmail), err)
		return err
	}

	m.setLoading()

	select {
	case <-time.After(m.loginDelay):
	case <-ctx.Done():
		m.fail(string(session.ProviderEmail), ctx.Err())
		return ctx.Err()
	}

	account, ok := m.accounts[email]
	if !ok || !CheckPasswordHash(password, account.PasswordHash) {
		err := errors.Wrapf(errors.ErrInvalidCredentials, "email %q", email)
		m.fail(string(session.ProviderEmail), err)
		return err
	}

	s := session.Session{
		ID:        account.ID,
		Name:      account.Name,
		Email:     email,
		Provider:  session.ProviderEmail,
		CreatedAt: m.nowTime(),
	}
	signed, err := m.tokens.CreateSessionToken(s)
	if err != nil {
		m.fail(string(session.ProviderEmail), err)
		return err
	}
	s.Token = signed

	return m.adopt(s)
}

// BeginProviderLogin transitions to loading and returns the provider's
// authorization URL; the HTTP layer performs the full-page redirect. No
// further local state change happens until the provider calls back.
func (m *Machine) BeginProviderLogin(name string) (string, error) {
	provider, err := m.registry.ForState(name)
	if err != nil {
		return "", err
	}
	m.setLoading()
	return provider.AuthorizationURL(provider.Name()), nil
}

// CompleteProviderLogin processes an OAuth redirect callback. The code is
// consumed exactly once: success adopts the returned session, failure
// records the error and clears any stale session. A failed code is never
// retried.
func (m *Machine) CompleteProviderLogin(ctx context.Context, code, state string) error {
	provider, err := m.registry.ForState(state)
	if err != nil {
		// Not initiated by a known provider: ignored, not processed.
		log.Warn().Str("state", state).Msg("oauth callback with unknown state ignored")
		return err
	}

	m.setLoading()

	s, err := provider.CompleteAuthorization(ctx, code)
	if err != nil {
		log.Err(err).Str("provider", provider.Name()).Msg("provider exchange failed")
		m.fail(provider.Name(), err)
		return err
	}

	return m.adopt(s)
}

// Logout clears the session. Succeeds even when the storage is already
// empty.
func (m *Machine) Logout(ctx context.Context) error {
	m.setLoading()

	if err := m.store.Clear(); err != nil {
		log.Err(err).Msg("clearing session store failed")
	}

	m.pub.mutate(func() Snapshot {
		m.user = nil
		m.lastErr = nil
		m.status = StatusUnauthenticated
		return m.snapshotLocked()
	})
	return nil
}

// Snapshot returns the current published state.
func (m *Machine) Snapshot() Snapshot {
	return m.pub.read(m.snapshotLocked)
}

// Subscribe registers a callback invoked with a fresh snapshot after every
// state change. The returned function unsubscribes.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	return m.pub.subscribe(m.snapshotLocked, fn)
}

// snapshotLocked builds an immutable snapshot. Callers must hold the
// publisher lock.
func (m *Machine) snapshotLocked() Snapshot {
	snap := Snapshot{
		Status:          m.status,
		Err:             m.lastErr,
		IsAuthenticated: m.status == StatusAuthenticated,
		IsInitializing:  !m.initialized,
	}
	if m.user != nil {
		snap.User = utils.Ptr(utils.Value(m.user))
	}
	return snap
}

// adopt persists the session and transitions to authenticated. The write
// happens before the state is published so a crash never yields an
// authenticated status without a persisted record.
func (m *Machine) adopt(s session.Session) error {
	if err := m.store.Save(s); err != nil {
		m.fail(string(s.Provider), err)
		return err
	}

	m.metrics.RecordLoginSuccess(string(s.Provider))
	m.pub.mutate(func() Snapshot {
		m.user = utils.Ptr(s)
		m.lastErr = nil
		m.status = StatusAuthenticated
		return m.snapshotLocked()
	})
	return nil
}

func (m *Machine) setLoading() {
	m.pub.mutate(func() Snapshot {
		m.lastErr = nil
		m.status = StatusLoading
		return m.snapshotLocked()
	})
}

// fail transitions to unauthenticated. Leaving authenticated always clears
// the store, so a later restore cannot resurrect a session the machine has
// already abandoned.
func (m *Machine) fail(provider string, err error) {
	if clearErr := m.store.Clear(); clearErr != nil {
		log.Err(clearErr).Msg("clearing session store failed")
	}
	m.metrics.RecordLoginFailure(provider, failureReason(err))
	m.pub.mutate(func() Snapshot {
		m.user = nil
		m.lastErr = err
		m.status = StatusUnauthenticated
		return m.snapshotLocked()
	})
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, errors.ErrValidation):
		return "validation"
	case errors.Is(err, errors.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, errors.ErrTokenExchange):
		return "token_exchange"
	case errors.Is(err, errors.ErrProfileFetch):
		return "profile_fetch"
	default:
		return "other"
	}
}
