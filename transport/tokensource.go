package transport

import (
	"golang.org/x/oauth2"

	"github.com/certitrack/client-go/credentials"
	"github.com/certitrack/client-go/token"
	"github.com/pkg/errors"
)

// TokenSource exposes the stored credentials as an oauth2.TokenSource
// for libraries that accept one. The source reads the store on every
// call, so tokens refreshed by the interceptor are picked up without
// re-wiring.
func TokenSource(store credentials.Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

type storeTokenSource struct {
	store credentials.Store
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	pair, ok := s.store.Get()
	if !ok || pair.AccessToken == "" {
		return nil, errors.New("[TokenSource] no access token stored")
	}

	t := &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
	}
	if exp, err := token.Expiry(pair.AccessToken); err == nil {
		t.Expiry = exp
	}
	return t, nil
}
