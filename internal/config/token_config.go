package config

import (
	"os"
	"time"
)

const (
	accessHorizonVar  = "ACCESS_TOKEN_HORIZON"
	refreshHorizonVar = "REFRESH_TOKEN_HORIZON"
)

type TokenConfig interface {
	GetAccessTokenHorizon() time.Duration
	GetRefreshTokenHorizon() time.Duration
}

type Tokens struct{}

var _ TokenConfig = Tokens{}

// Horizons bound how long each stored credential survives locally.
// They are storage lifetimes, not the remote server's token expiries.
// Values are Go durations (e.g. "24h", "168h").

func (Tokens) GetAccessTokenHorizon() time.Duration {
	return getDuration(accessHorizonVar, 24*time.Hour)
}

func (Tokens) GetRefreshTokenHorizon() time.Duration {
	return getDuration(refreshHorizonVar, 7*24*time.Hour)
}

func getDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
