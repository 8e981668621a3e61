package config

const apiBaseURLVar = "CERTITRACK_API_URL"

type APIConfig interface {
	GetAPIBaseURL() string
	GetLoginPath() string
}

type API struct{}

var _ APIConfig = API{}

// GetAPIBaseURL returns the base address of the remote CertiTrack API
// (e.g. "https://api.certitrack.example.com/api/v1").
func (API) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080/api/v1")
}

// GetLoginPath is the local login entry point users are sent to when a
// session can no longer be recovered.
func (API) GetLoginPath() string {
	return "/login"
}
