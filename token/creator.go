package token

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/healthycare/healthycare/session"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Creator mints and validates the locally signed session token carried by
// email/password sessions. A restored session whose token no longer
// validates is treated as an invalid local copy and discarded.
type Creator struct {
	secret []byte
	expiry time.Duration
}

// NewCreator creates a session token creator signing with HS256.
func NewCreator(secret string, expiry time.Duration) *Creator {
	return &Creator{
		secret: []byte(secret),
		expiry: expiry,
	}
}

// CreateSessionToken creates a signed token binding the session identity.
func (c *Creator) CreateSessionToken(s session.Session) (string, error) {
	claims := jwtlib.MapClaims{
		"sub":      s.ID,
		"email":    s.Email,
		"name":     s.Name,
		"provider": string(s.Provider),
		"iat":      int64(NowTimeFunc().Unix()),
		"exp":      int64(NowTimeFunc().Add(c.expiry).Unix()),
		"jti":      uuid.New().String(),
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ValidateSessionToken verifies the signature and expiry of a session token.
func (c *Creator) ValidateSessionToken(raw string) error {
	parsed, err := jwtlib.Parse(raw, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwtlib.WithTimeFunc(func() time.Time { return NowTimeFunc() }))
	if err != nil {
		return fmt.Errorf("invalid session token: %w", err)
	}
	if !parsed.Valid {
		return fmt.Errorf("invalid session token")
	}
	return nil
}
