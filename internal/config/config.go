package config

type Config interface {
	EnvConfig
	OAuthConfig
	SecurityConfig
	CorsConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetDataFolder() string
	GetEnv() string
	GetSiteURL() string
	GetPlaceholderBaseURL() string
}

type CorsConfig interface {
	GetAllowedOrigin() string
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type mainConfig struct {
	EnvVars
	OAuth
	Security
	Cors
}

func New() Config {
	return mainConfig{}
}
