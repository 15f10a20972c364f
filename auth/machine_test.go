package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/healthycare/healthycare/auth"
	"github.com/healthycare/healthycare/internal/config"
	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/providers"
	"github.com/healthycare/healthycare/session"
	"github.com/healthycare/healthycare/session/storefakes"
	"github.com/healthycare/healthycare/token"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeProvider is a providers.Provider test double.
type fakeProvider struct {
	name    string
	session session.Session
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) AuthorizationURL(state string) string {
	return "https://provider.example.com/authorize?state=" + state
}

func (f *fakeProvider) CompleteAuthorization(ctx context.Context, code string) (session.Session, error) {
	f.calls++
	if f.err != nil {
		return session.Session{}, f.err
	}
	return f.session, nil
}

type testFixture struct {
	store   *storefakes.FakeStore
	tokens  *token.Creator
	github  *fakeProvider
	google  *fakeProvider
	machine *auth.Machine
}

func setupTestFixture(t *testing.T, options ...auth.Option) *testFixture {
	t.Helper()
	t.Setenv("ENV", "TEST")

	f := &testFixture{
		store:  storefakes.NewFakeStore(),
		tokens: token.NewCreator("test-session-token-secret", time.Hour),
		github: &fakeProvider{
			name: "github",
			session: session.Session{
				ID:        "123",
				Name:      "Test User",
				Email:     "test@example.com",
				Picture:   "https://avatars.example.com/u/123",
				Provider:  session.ProviderGithub,
				CreatedAt: fixedNow,
			},
		},
		google: &fakeProvider{
			name: "google",
			session: session.Session{
				ID:        "google-uid-1",
				Name:      "Test User",
				Email:     "test@example.com",
				Provider:  session.ProviderGoogle,
				CreatedAt: fixedNow,
			},
		},
	}

	options = append([]auth.Option{
		auth.WithNowTime(func() time.Time { return fixedNow }),
	}, options...)

	machine, err := auth.NewMachine(f.store, providers.NewRegistry(f.github, f.google), f.tokens, config.New(), options...)
	require.NoError(t, err)
	f.machine = machine
	return f
}

func TestInitializeStartsIdle(t *testing.T) {
	f := setupTestFixture(t)

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusIdle, snap.Status)
	require.True(t, snap.IsInitializing)
}

func TestInitializeRestoresPersistedSession(t *testing.T) {
	f := setupTestFixture(t)

	stored := f.github.session
	require.NoError(t, f.store.Save(stored))

	f.machine.Initialize(context.Background())

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.True(t, snap.IsAuthenticated)
	require.False(t, snap.IsInitializing)
	require.Equal(t, stored, *snap.User)
	// Restore trusts the local record: no provider round trip
	require.Zero(t, f.github.calls)
}

func TestInitializeWithoutSession(t *testing.T) {
	f := setupTestFixture(t)

	f.machine.Initialize(context.Background())

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.Nil(t, snap.User)
	require.False(t, snap.IsInitializing)
}

func TestInitializeCorruptStorage(t *testing.T) {
	f := setupTestFixture(t)

	require.NoError(t, f.store.Save(f.github.session))
	f.store.SetCorrupt()

	f.machine.Initialize(context.Background())

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.Nil(t, snap.User)
	require.Nil(t, snap.Err, "a corrupt record is a silent reset, not a surfaced error")
	require.Nil(t, f.store.Stored())
}

func TestInitializeExpiredEmailSessionToken(t *testing.T) {
	f := setupTestFixture(t)

	expired := token.NewCreator("test-session-token-secret", -time.Minute)
	s := session.Session{
		ID:       "email-1",
		Name:     "Test User",
		Email:    "test@example.com",
		Provider: session.ProviderEmail,
	}
	signed, err := expired.CreateSessionToken(s)
	require.NoError(t, err)
	s.Token = signed
	require.NoError(t, f.store.Save(s))

	f.machine.Initialize(context.Background())

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.Nil(t, f.store.Stored())
}

func TestLoginWithPasswordSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	require.NoError(t, f.machine.LoginWithPassword(context.Background(), "test@example.com", "validpass1"))

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.Equal(t, session.ProviderEmail, snap.User.Provider)
	require.Equal(t, "test@example.com", snap.User.Email)

	stored := f.store.Stored()
	require.NotNil(t, stored)
	require.Equal(t, session.ProviderEmail, stored.Provider)
	require.NoError(t, f.tokens.ValidateSessionToken(stored.Token))
}

func TestLoginWithPasswordValidationFailsFast(t *testing.T) {
	// A huge delay proves validation short-circuits before the simulated check
	f := setupTestFixture(t, auth.WithLoginDelay(time.Minute))
	f.machine.Initialize(context.Background())

	start := time.Now()
	err := f.machine.LoginWithPassword(context.Background(), "x", "y")
	require.ErrorIs(t, err, errors.ErrValidation)
	require.Less(t, time.Since(start), time.Second)

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.ErrorIs(t, snap.Err, errors.ErrValidation)
	require.Nil(t, f.store.Stored())
}

func TestLoginWithPasswordValidationCases(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "validpass1"},
		{name: "bad email shape", email: "not-an-email", password: "validpass1"},
		{name: "missing domain dot", email: "user@host", password: "validpass1"},
		{name: "empty password", email: "test@example.com", password: ""},
		{name: "short password", email: "test@example.com", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.machine.LoginWithPassword(context.Background(), tt.email, tt.password)
			require.ErrorIs(t, err, errors.ErrValidation)
		})
	}
}

func TestLoginWithPasswordUnknownAccount(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	err := f.machine.LoginWithPassword(context.Background(), "stranger@example.com", "validpass1")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.Nil(t, f.store.Stored())
}

func TestLoginWithPasswordWrongPassword(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	err := f.machine.LoginWithPassword(context.Background(), "test@example.com", "wrongpass1")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)
}

func TestLoginWithPasswordFailureClearsExistingSession(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(f.github.session))
	f.machine.Initialize(context.Background())
	require.True(t, f.machine.Snapshot().IsAuthenticated)

	err := f.machine.LoginWithPassword(context.Background(), "test@example.com", "wrongpass1")
	require.ErrorIs(t, err, errors.ErrInvalidCredentials)

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.Nil(t, snap.User)
	require.Nil(t, f.store.Stored(), "leaving authenticated must clear the persisted record")

	// Restarting cannot resurrect the abandoned session
	f.machine.Initialize(context.Background())
	require.False(t, f.machine.Snapshot().IsAuthenticated)
}

func TestBeginProviderLogin(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	redirect, err := f.machine.BeginProviderLogin("github")
	require.NoError(t, err)
	require.Equal(t, "https://provider.example.com/authorize?state=github", redirect)
	require.Equal(t, auth.StatusLoading, f.machine.Snapshot().Status)
}

func TestBeginProviderLoginUnknown(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	_, err := f.machine.BeginProviderLogin("netlify")
	require.ErrorIs(t, err, errors.ErrUnknownProviderState)
	require.Equal(t, auth.StatusUnauthenticated, f.machine.Snapshot().Status)
}

func TestCompleteProviderLoginSuccess(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	require.NoError(t, f.machine.CompleteProviderLogin(context.Background(), "test-code", "github"))

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.Equal(t, f.github.session, *snap.User)
	require.Equal(t, f.github.session, *f.store.Stored())
	require.Equal(t, 1, f.github.calls)
}

func TestCompleteProviderLoginFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())
	f.github.err = errors.Wrapf(errors.ErrTokenExchange, "github: bad_code")

	err := f.machine.CompleteProviderLogin(context.Background(), "expired-code", "github")
	require.ErrorIs(t, err, errors.ErrTokenExchange)

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.Nil(t, snap.User)
	require.ErrorIs(t, snap.Err, errors.ErrTokenExchange)
	require.Nil(t, f.store.Stored())
}

func TestCompleteProviderLoginSupersedesRestoredSession(t *testing.T) {
	f := setupTestFixture(t)

	stale := f.google.session
	stale.ID = "stale-uid"
	require.NoError(t, f.store.Save(stale))
	f.machine.Initialize(context.Background())

	// A fresh callback replaces the restored session wholesale
	require.NoError(t, f.machine.CompleteProviderLogin(context.Background(), "test-code", "github"))
	require.Equal(t, f.github.session, *f.store.Stored())
}

func TestCompleteProviderLoginUnknownStateIgnored(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(f.github.session))
	f.machine.Initialize(context.Background())

	err := f.machine.CompleteProviderLogin(context.Background(), "test-code", "netlify")
	require.ErrorIs(t, err, errors.ErrUnknownProviderState)

	// Not processed: the existing session survives untouched
	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusAuthenticated, snap.Status)
	require.NotNil(t, f.store.Stored())
}

func TestLogoutIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	f.machine.Initialize(context.Background())

	require.NoError(t, f.machine.LoginWithPassword(context.Background(), "test@example.com", "validpass1"))
	require.NoError(t, f.machine.Logout(context.Background()))

	snap := f.machine.Snapshot()
	require.Equal(t, auth.StatusUnauthenticated, snap.Status)
	require.Nil(t, snap.User)
	require.Nil(t, f.store.Stored())

	// Logging out again with empty storage still succeeds
	require.NoError(t, f.machine.Logout(context.Background()))
	require.Equal(t, auth.StatusUnauthenticated, f.machine.Snapshot().Status)
}

func TestSubscribePublishesStateChanges(t *testing.T) {
	f := setupTestFixture(t)

	var events []auth.Snapshot
	unsubscribe := f.machine.Subscribe(func(s auth.Snapshot) {
		events = append(events, s)
	})

	// Current state is delivered immediately
	require.Len(t, events, 1)
	require.Equal(t, auth.StatusIdle, events[0].Status)

	f.machine.Initialize(context.Background())
	require.Equal(t, auth.StatusUnauthenticated, events[len(events)-1].Status)

	require.NoError(t, f.machine.LoginWithPassword(context.Background(), "test@example.com", "validpass1"))
	last := events[len(events)-1]
	require.Equal(t, auth.StatusAuthenticated, last.Status)
	require.Equal(t, "test@example.com", last.User.Email)

	seen := len(events)
	unsubscribe()
	require.NoError(t, f.machine.Logout(context.Background()))
	require.Len(t, events, seen, "no notifications after unsubscribe")
}

func TestSnapshotIsACopy(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.store.Save(f.github.session))
	f.machine.Initialize(context.Background())

	snap := f.machine.Snapshot()
	snap.User.Name = "Mutated"

	require.Equal(t, "Test User", f.machine.Snapshot().User.Name)
}
