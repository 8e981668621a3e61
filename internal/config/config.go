package config

type Config interface {
	EnvConfig
	APIConfig
	TokenConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetCredentialsFile() string
}

type mainConfig struct {
	EnvVars
	API
	Tokens
}

func New() Config {
	return mainConfig{}
}
