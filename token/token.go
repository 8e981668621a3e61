// Package token inspects access tokens issued by the CertiTrack API.
// The client holds no verification keys (signing is the remote
// collaborator's responsibility), so claims are parsed unverified and
// used for display and scheduling only, never for access decisions.
package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

var parser = jwt.NewParser()

// Expiry returns the exp claim of a raw JWT without verifying its
// signature.
func Expiry(raw string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, errors.Wrap(err, "[Expiry] ParseUnverified")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "[Expiry] GetExpirationTime")
	}
	if exp == nil {
		return time.Time{}, errors.New("[Expiry] token carries no exp claim")
	}
	return exp.Time, nil
}

// ExpiresWithin reports whether raw expires inside the given window.
// Unparseable tokens report false; the 401 retry path covers them.
func ExpiresWithin(raw string, window time.Duration) bool {
	exp, err := Expiry(raw)
	if err != nil {
		return false
	}
	return time.Until(exp) <= window
}
