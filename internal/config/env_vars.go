package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	portEnvVar        = "PORT"
	appNameVar        = "APP_NAME"
	credentialsEnvVar = "CREDENTIALS_FILE"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "3000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "CertiTrack")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

// GetCredentialsFile returns the path of the on-disk credential file
// used by the CLI surface. Defaults to ~/.certitrack/credentials.json.
func (EnvVars) GetCredentialsFile() string {
	if file := os.Getenv(credentialsEnvVar); file != "" {
		return file
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".certitrack", "credentials.json")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
