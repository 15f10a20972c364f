package config

import "time"

type SecurityConfig interface {
	GetMinPasswordLength() int
	GetLoginDelay() time.Duration
	GetSessionTokenExpiry() time.Duration
	GetEnableRateLimiting() bool
	GetLoginRatePerMinute() int
	GetLoginBurst() int
}

type Security struct{}

var _ SecurityConfig = Security{}

func (Security) GetMinPasswordLength() int {
	return 8
}

// GetLoginDelay is the artificial delay applied before the simulated
// email/password verdict. Skipped entirely when validation fails.
func (s Security) GetLoginDelay() time.Duration {
	if (EnvVars{}).GetEnv() == "TEST" {
		return 0
	}
	return 700 * time.Millisecond
}

func (Security) GetSessionTokenExpiry() time.Duration {
	return 24 * time.Hour
}

func (Security) GetEnableRateLimiting() bool {
	return true
}

func (Security) GetLoginRatePerMinute() int {
	return 30
}

func (Security) GetLoginBurst() int {
	return 10
}
