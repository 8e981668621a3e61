// Package filestore is the durable credential store used by the CLI
// surface. The pair is kept in a single JSON file that is replaced via
// a temp-file rename, so a reader either sees the previous pair or the
// new one, never a mix.
package filestore

import (
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/certitrack/client-go/credentials"
	"github.com/pkg/errors"
)

const fileMode = 0o600

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// storedPair is the on-disk layout. Each token carries its own expiry
// horizon so the access token can lapse while the refresh token stays
// live.
type storedPair struct {
	AccessToken      string    `json:"access_token"`
	RefreshToken     string    `json:"refresh_token"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type Store struct {
	path           string
	accessHorizon  time.Duration
	refreshHorizon time.Duration
	passphrase     string
	nowTime        func() time.Time
	lock           sync.Mutex // serialises writers; readers rely on rename atomicity
}

var _ credentials.Store = (*Store)(nil)

// Option defines a function type to modify the Store instance.
type Option func(*Store)

// WithAccessHorizon sets how long a stored access token survives.
func WithAccessHorizon(d time.Duration) Option {
	return func(s *Store) { s.accessHorizon = d }
}

// WithRefreshHorizon sets how long a stored refresh token survives.
func WithRefreshHorizon(d time.Duration) Option {
	return func(s *Store) { s.refreshHorizon = d }
}

// WithPassphrase enables at-rest encryption of the credential file.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) { s.passphrase = passphrase }
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) { s.nowTime = nowFunc }
}

// New creates a file-backed credential store at path. Horizons default
// to 1 day for the access token and 7 days for the refresh token.
func New(path string, options ...Option) *Store {
	s := &Store{
		path:           path,
		accessHorizon:  24 * time.Hour,
		refreshHorizon: 7 * 24 * time.Hour,
		nowTime:        func() time.Time { return NowTimeFunc() },
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Get returns the stored pair. A missing, unreadable or corrupt file
// reports absent rather than an error. A pair past its refresh horizon
// is absent; past only its access horizon the access token is dropped
// and the refresh token returned alone.
func (s *Store) Get() (credentials.Pair, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return credentials.Pair{}, false
	}

	if s.passphrase != "" {
		raw, err = decrypt(raw, s.passphrase)
		if err != nil {
			return credentials.Pair{}, false
		}
	}

	var stored storedPair
	if err := json.Unmarshal(raw, &stored); err != nil {
		return credentials.Pair{}, false
	}

	now := s.nowTime()
	if !stored.RefreshExpiresAt.After(now) {
		return credentials.Pair{}, false
	}

	pair := credentials.Pair{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
	}
	if !stored.AccessExpiresAt.After(now) {
		pair.AccessToken = ""
	}
	if pair.Empty() {
		return credentials.Pair{}, false
	}
	return pair, true
}

// Set overwrites the stored pair. The file is written to a sibling
// temp file and renamed into place so concurrent readers never observe
// a half-written pair.
func (s *Store) Set(pair credentials.Pair) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := s.nowTime()
	raw, err := json.Marshal(storedPair{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		AccessExpiresAt:  now.Add(s.accessHorizon),
		RefreshExpiresAt: now.Add(s.refreshHorizon),
	})
	if err != nil {
		return errors.Wrap(err, "[Store.Set] marshal")
	}

	if s.passphrase != "" {
		raw, err = encrypt(raw, s.passphrase)
		if err != nil {
			return errors.Wrap(err, "[Store.Set] encrypt")
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[Store.Set] mkdir")
	}

	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return errors.Wrap(err, "[Store.Set] create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.Set] write temp file")
	}
	if err := tmp.Chmod(fileMode); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.Set] chmod temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.Set] close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "[Store.Set] rename")
	}
	return nil
}

// Clear removes the credential file. Clearing an already-empty store
// is a no-op.
func (s *Store) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "[Store.Clear] remove")
	}
	return nil
}
