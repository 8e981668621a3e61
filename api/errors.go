package api

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Error is a rejection from the remote API. Message is the
// remote-supplied error field, or the calling endpoint's fallback when
// the body carried none.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsUnauthorized reports whether err is a remote 401 rejection.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}
