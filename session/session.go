package session

import (
	"fmt"
	"time"
)

// ProviderType identifies which login path produced a session.
type ProviderType string

const (
	ProviderEmail  ProviderType = "email"
	ProviderGoogle ProviderType = "google"
	ProviderGithub ProviderType = "github"
)

// Session is the canonical authenticated-user record. Exactly one session
// may be active at a time; it is created by a successful login or OAuth
// callback, only ever replaced wholesale, and destroyed on logout or when
// the persisted copy turns out to be invalid.
type Session struct {
	ID        string       `json:"id"`                 // Provider-scoped identifier
	Name      string       `json:"name"`               // Display name, falls back to the provider login/handle
	Email     string       `json:"email"`              // Primary email address
	Picture   string       `json:"picture,omitempty"`  // Avatar URL
	Provider  ProviderType `json:"provider"`           // Which login path produced the session
	Token     string       `json:"token,omitempty"`    // Locally minted session token (email path only)
	CreatedAt time.Time    `json:"created_at"`         // When the session was established
}

// Validate rejects partial records: a session with a missing ID or email is
// a failure, never degraded success.
func (s Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session is missing an id")
	}
	if s.Email == "" {
		return fmt.Errorf("session is missing an email")
	}
	switch s.Provider {
	case ProviderEmail, ProviderGoogle, ProviderGithub:
	default:
		return fmt.Errorf("session has unknown provider %q", s.Provider)
	}
	return nil
}
