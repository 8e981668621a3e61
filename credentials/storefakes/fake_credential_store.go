package storefakes

import (
	"sync"

	"github.com/certitrack/client-go/credentials"
)

var _ credentials.Store = (*FakeCredentialStore)(nil)

// FakeCredentialStore is an in-memory credential store for tests. It
// counts calls so tests can assert on store traffic.
type FakeCredentialStore struct {
	lock    sync.Mutex
	pair    credentials.Pair
	present bool

	GetCalls   int
	SetCalls   int
	ClearCalls int

	SetErr error // returned by Set when non-nil
}

func NewFakeCredentialStore() *FakeCredentialStore {
	return &FakeCredentialStore{}
}

// NewWithPair returns a fake store pre-loaded with pair.
func NewWithPair(pair credentials.Pair) *FakeCredentialStore {
	return &FakeCredentialStore{pair: pair, present: true}
}

func (s *FakeCredentialStore) Get() (credentials.Pair, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.GetCalls++
	if !s.present {
		return credentials.Pair{}, false
	}
	return s.pair, true
}

func (s *FakeCredentialStore) Set(pair credentials.Pair) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.SetCalls++
	if s.SetErr != nil {
		return s.SetErr
	}
	s.pair = pair
	s.present = true
	return nil
}

func (s *FakeCredentialStore) Clear() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.ClearCalls++
	s.pair = credentials.Pair{}
	s.present = false
	return nil
}
