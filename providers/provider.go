// Package providers encapsulates the per-provider OAuth protocol: building
// the authorization redirect and completing the code-for-session exchange.
// Provider-specific payload shapes never leak past this package; every
// client normalizes its profile into the canonical session record at the
// boundary.
package providers

import (
	"context"

	"github.com/healthycare/healthycare/internal/errors"
	"github.com/healthycare/healthycare/session"
)

// Provider is the capability set shared by all OAuth login integrations.
type Provider interface {
	// Name returns the provider identifier ("github", "google"). It doubles
	// as the state parameter of the authorization redirect, which is how
	// the callback is routed back to the right provider.
	Name() string

	// AuthorizationURL builds the provider's authorization endpoint URL
	// with client_id, redirect_uri, scope, response_type=code and the
	// given state.
	AuthorizationURL(state string) string

	// CompleteAuthorization exchanges an authorization code for an access
	// token, fetches the user profile, and returns the normalized session.
	CompleteAuthorization(ctx context.Context, code string) (session.Session, error)
}

// Registry maps callback state values to their providers.
type Registry struct {
	providers map[string]Provider
}

func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider)}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// ForState resolves the provider that initiated a flow from the callback's
// state parameter. An unknown state is not processed.
func (r *Registry) ForState(state string) (Provider, error) {
	p, ok := r.providers[state]
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownProviderState, "state %q", state)
	}
	return p, nil
}
