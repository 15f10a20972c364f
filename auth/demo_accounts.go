package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// DemoAccount is an allow-listed identity for the email/password path.
// This path has no real backend: it simulates a credential check for
// demonstration purposes only and must never be mistaken for verification.
type DemoAccount struct {
	ID           string
	Name         string
	PasswordHash string
}

// HashPassword hashes a password for storage using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with its bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func mustHashPassword(password string) string {
	hash, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}

// DefaultDemoAccounts returns the built-in allow-list. The addresses are
// demo fixtures, not a requirement of the login contract.
func DefaultDemoAccounts() map[string]DemoAccount {
	return map[string]DemoAccount{
		"test@example.com": {
			ID:           "email-1",
			Name:         "Test User",
			PasswordHash: mustHashPassword("validpass1"),
		},
		"demo@healthycare.app": {
			ID:           "email-2",
			Name:         "Demo User",
			PasswordHash: mustHashPassword("healthypass1"),
		},
	}
}
