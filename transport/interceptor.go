// Package transport wraps an http.RoundTripper so that every outbound
// call to the CertiTrack API carries the stored access token, and an
// expired token is recovered from exactly once per logical request: on
// a 401 the interceptor runs a refresh exchange, stores the new pair
// and replays the original request with the new token. A failed
// exchange cascades to logout (credentials cleared, expiry hook fired)
// and the refresh error, not the original 401, reaches the caller.
//
// The interceptor is composed into an http.Client by whoever builds
// the stack; nothing is installed globally.
package transport

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/certitrack/client-go/credentials"
	interrors "github.com/certitrack/client-go/internal/errors"
	"github.com/certitrack/client-go/token"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

// maxAttempts bounds one logical request: the original call plus one
// replay after a successful refresh.
const maxAttempts = 2

// Refresher performs the refresh exchange against the remote API.
// api.Client satisfies it.
type Refresher interface {
	RefreshCredentials(ctx context.Context, refreshToken string) (credentials.Pair, error)
}

type Interceptor struct {
	base            http.RoundTripper
	store           credentials.Store
	refresher       Refresher
	onExpired       func()
	proactiveWindow time.Duration
	log             zerolog.Logger

	// refreshLock serialises refresh exchanges so concurrent 401s
	// share one exchange instead of racing their own.
	refreshLock sync.Mutex
}

var _ http.RoundTripper = (*Interceptor)(nil)

// Option defines a function type to modify the Interceptor instance.
type Option func(*Interceptor)

// WithBase sets the underlying RoundTripper (default
// http.DefaultTransport).
func WithBase(base http.RoundTripper) Option {
	return func(i *Interceptor) { i.base = base }
}

// WithOnExpired sets the hook fired when a refresh exchange fails and
// the session is no longer recoverable. The web surface navigates to
// the login entry point here.
func WithOnExpired(fn func()) Option {
	return func(i *Interceptor) { i.onExpired = fn }
}

// WithProactiveRefresh refreshes before sending when the access token
// expires inside window, saving the round trip that would 401. Zero
// disables it (the default). A failed proactive exchange is logged and
// the request goes out with the current token; the logout cascade is
// reserved for the 401-recovery path.
func WithProactiveRefresh(window time.Duration) Option {
	return func(i *Interceptor) { i.proactiveWindow = window }
}

func WithLogger(log zerolog.Logger) Option {
	return func(i *Interceptor) { i.log = log }
}

// New creates an interceptor over store. refresher may be nil, in
// which case 401s are never recovered and pass through untouched.
func New(store credentials.Store, refresher Refresher, options ...Option) *Interceptor {
	i := &Interceptor{
		base:      http.DefaultTransport,
		store:     store,
		refresher: refresher,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(i)
	}
	return i
}

// RoundTrip implements http.RoundTripper. The attempt counter is local
// to this call: nothing is smuggled through the request object, and no
// state leaks between logical requests.
func (i *Interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	pair, _ := i.store.Get()
	accessToken := pair.AccessToken

	if i.proactiveWindow > 0 && i.refresher != nil &&
		accessToken != "" && pair.RefreshToken != "" &&
		token.ExpiresWithin(accessToken, i.proactiveWindow) {
		fresh, err := i.refresh(req.Context(), accessToken, false)
		if err != nil {
			i.log.Warn().Err(err).Msg("proactive refresh failed, sending with current token")
		} else {
			accessToken = fresh.AccessToken
		}
	}

	requestID := req.Header.Get(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}

	for attempt := 0; ; attempt++ {
		out := req.Clone(req.Context())
		out.Header.Set(requestIDHeader, requestID)
		if accessToken != "" {
			out.Header.Set("Authorization", "Bearer "+accessToken)
		}
		if attempt > 0 {
			body, err := req.GetBody()
			if err != nil {
				if req.Body != nil {
					req.Body.Close()
				}
				return nil, errors.Wrap(err, "[Interceptor.RoundTrip] replay body")
			}
			out.Body = body
		}

		resp, err := i.base.RoundTrip(out)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusUnauthorized || attempt >= maxAttempts-1 || i.refresher == nil {
			return resp, nil
		}

		// First 401 for this logical request. Without a refresh token,
		// or with a body that cannot be replayed, the original failure
		// propagates unchanged.
		pair, ok := i.store.Get()
		if !ok || pair.RefreshToken == "" {
			return resp, nil
		}
		if req.Body != nil && req.GetBody == nil {
			i.log.Warn().Str("request_id", requestID).Msg("401 with unreplayable body, skipping refresh")
			return resp, nil
		}

		resp.Body.Close()
		i.log.Debug().Str("request_id", requestID).Msg("access token rejected, refreshing")

		fresh, err := i.refresh(req.Context(), accessToken, true)
		if err != nil {
			return nil, errors.Wrap(err, "[Interceptor.RoundTrip] refresh")
		}
		accessToken = fresh.AccessToken
	}
}

// refresh runs the exchange while holding the refresh lock. A caller
// that lost the race to a concurrent refresh finds a different access
// token in the store and reuses it instead of spending the refresh
// token again. cascade controls whether a rejected exchange tears the
// session down; only the 401-recovery path cascades, a proactive
// refresh keeps the session intact and lets the request 401 for real.
func (i *Interceptor) refresh(ctx context.Context, staleAccess string, cascade bool) (credentials.Pair, error) {
	i.refreshLock.Lock()
	defer i.refreshLock.Unlock()

	pair, ok := i.store.Get()
	if !ok || pair.RefreshToken == "" {
		return credentials.Pair{}, errors.Wrap(interrors.ErrNoRefreshToken, "[Interceptor.refresh]")
	}
	if pair.AccessToken != "" && pair.AccessToken != staleAccess {
		return pair, nil
	}

	fresh, err := i.refresher.RefreshCredentials(ctx, pair.RefreshToken)
	if err != nil {
		if cascade {
			if clearErr := i.store.Clear(); clearErr != nil {
				i.log.Error().Err(clearErr).Msg("clearing credentials after failed refresh")
			}
			if i.onExpired != nil {
				i.onExpired()
			}
		}
		return credentials.Pair{}, errors.Wrap(err, "[Interceptor.refresh] exchange")
	}

	if err := i.store.Set(fresh); err != nil {
		return credentials.Pair{}, errors.Wrap(err, "[Interceptor.refresh] store pair")
	}
	return fresh, nil
}
