package filestore_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/certitrack/client-go/credentials"
	"github.com/certitrack/client-go/credentials/filestore"
	"github.com/stretchr/testify/require"
)

const (
	testAccessToken  = "access-token-1"
	testRefreshToken = "refresh-token-1"
)

func testPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "credentials.json")
}

func testPair() credentials.Pair {
	return credentials.Pair{AccessToken: testAccessToken, RefreshToken: testRefreshToken}
}

func TestGetOnMissingFileReportsAbsent(t *testing.T) {
	store := filestore.New(testPath(t))

	pair, ok := store.Get()
	require.False(t, ok)
	require.True(t, pair.Empty())
}

func TestSetThenGetRoundTrips(t *testing.T) {
	store := filestore.New(testPath(t))

	require.NoError(t, store.Set(testPair()))

	pair, ok := store.Get()
	require.True(t, ok)
	require.Equal(t, testPair(), pair)
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := testPath(t)

	require.NoError(t, filestore.New(path).Set(testPair()))

	pair, ok := filestore.New(path).Get()
	require.True(t, ok)
	require.Equal(t, testPair(), pair)
}

func TestClearIsIdempotent(t *testing.T) {
	store := filestore.New(testPath(t))
	require.NoError(t, store.Set(testPair()))

	require.NoError(t, store.Clear())
	_, ok := store.Get()
	require.False(t, ok)

	// Clearing an already-empty store is a no-op, not an error.
	require.NoError(t, store.Clear())
	_, ok = store.Get()
	require.False(t, ok)
}

func TestCorruptFileReportsAbsent(t *testing.T) {
	path := testPath(t)
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0o600))

	_, ok := filestore.New(path).Get()
	require.False(t, ok)
}

func TestAtomicPairUpdate(t *testing.T) {
	store := filestore.New(testPath(t))

	pairA := credentials.Pair{AccessToken: "access-A", RefreshToken: "refresh-A"}
	pairB := credentials.Pair{AccessToken: "access-B", RefreshToken: "refresh-B"}
	require.NoError(t, store.Set(pairA))

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if i%2 == 0 {
				_ = store.Set(pairB)
			} else {
				_ = store.Set(pairA)
			}
		}
		close(done)
	}()

	// No read may ever observe one token from pairA and one from pairB.
	for {
		select {
		case <-done:
			wg.Wait()
			return
		default:
		}
		pair, ok := store.Get()
		if !ok {
			continue
		}
		require.Contains(t, []credentials.Pair{pairA, pairB}, pair)
	}
}

func TestAccessHorizonDropsAccessTokenOnly(t *testing.T) {
	now := time.Now()
	store := filestore.New(testPath(t),
		filestore.WithAccessHorizon(time.Hour),
		filestore.WithRefreshHorizon(24*time.Hour),
		filestore.WithNowTime(func() time.Time { return now }),
	)
	require.NoError(t, store.Set(testPair()))

	now = now.Add(2 * time.Hour)

	pair, ok := store.Get()
	require.True(t, ok)
	require.Empty(t, pair.AccessToken)
	require.Equal(t, testRefreshToken, pair.RefreshToken)
}

func TestRefreshHorizonExpiresWholePair(t *testing.T) {
	now := time.Now()
	store := filestore.New(testPath(t),
		filestore.WithAccessHorizon(time.Hour),
		filestore.WithRefreshHorizon(24*time.Hour),
		filestore.WithNowTime(func() time.Time { return now }),
	)
	require.NoError(t, store.Set(testPair()))

	now = now.Add(25 * time.Hour)

	_, ok := store.Get()
	require.False(t, ok)
}

func TestEncryptedStoreRoundTrips(t *testing.T) {
	path := testPath(t)
	store := filestore.New(path, filestore.WithPassphrase("correct horse"))

	require.NoError(t, store.Set(testPair()))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(raw), testAccessToken)
	require.NotContains(t, string(raw), testRefreshToken)

	pair, ok := filestore.New(path, filestore.WithPassphrase("correct horse")).Get()
	require.True(t, ok)
	require.Equal(t, testPair(), pair)
}

func TestWrongPassphraseReportsAbsent(t *testing.T) {
	path := testPath(t)
	require.NoError(t, filestore.New(path, filestore.WithPassphrase("correct horse")).Set(testPair()))

	_, ok := filestore.New(path, filestore.WithPassphrase("battery staple")).Get()
	require.False(t, ok)
}
