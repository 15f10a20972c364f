package config

import (
	"fmt"
	"os"
)

const (
	portEnvVar     = "PORT"
	appNameVar     = "APP_NAME"
	folderEnvVar   = "FOLDER"
	siteURLVar     = "SITE_URL"
	placeholderVar = "PLACEHOLDER_API_URL"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "HealthyCare")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetSiteURL returns the externally visible base URL of the application
// (e.g. "https://healthycare.example.com"). Empty when not deployed behind
// a fixed hostname; callers fall back to the local listen address.
func (EnvVars) GetSiteURL() string {
	return GetEnv(siteURLVar, "")
}

// GetPlaceholderBaseURL returns the base URL of the public placeholder REST
// API that backs the photo/album viewer.
func (EnvVars) GetPlaceholderBaseURL() string {
	return GetEnv(placeholderVar, "https://jsonplaceholder.typicode.com")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
