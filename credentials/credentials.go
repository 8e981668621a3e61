package credentials

// Pair holds the access and refresh tokens issued by the CertiTrack
// API. A stored pair is always written and cleared as a unit: readers
// never observe the access token of one pair alongside the refresh
// token of another.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Empty reports whether neither token is present.
func (p Pair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}

// Store persists the credential pair for the lifetime of the browsing
// session. Implementations decide the medium (file on disk for the CLI,
// browser cookies for the web front-end, memory for tests).
type Store interface {
	// Get returns the stored pair. It never blocks and never fails:
	// an unset or unreadable store reports absent (false). A pair past
	// its access horizon may come back with an empty access token while
	// the refresh token is still live.
	Get() (Pair, bool)

	// Set overwrites the stored pair atomically with respect to
	// readers and persists it past a restart.
	Set(pair Pair) error

	// Clear removes both tokens. Clearing an empty store is a no-op,
	// not an error.
	Clear() error
}
