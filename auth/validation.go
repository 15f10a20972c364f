package auth

import (
	"regexp"
	"strings"

	"github.com/healthycare/healthycare/internal/errors"
)

// Standard local@domain shape; anything fancier is the provider's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateCredentials checks the email/password shape before any network or
// simulated work happens. Failures here are always fast.
func ValidateCredentials(email, password string, minPasswordLength int) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.Wrapf(errors.ErrValidation, "email is required")
	}
	if !emailPattern.MatchString(email) {
		return errors.Wrapf(errors.ErrValidation, "invalid email format")
	}
	if password == "" {
		return errors.Wrapf(errors.ErrValidation, "password is required")
	}
	if len(password) < minPasswordLength {
		return errors.Wrapf(errors.ErrValidation, "password must be at least %d characters", minPasswordLength)
	}
	return nil
}
