package driven

import (
	"errors"
	"fmt"
)

// ErrMissingCredentials is returned before any network call when the
// configured identity or secret is empty. A login attempt with blank
// credentials is never valid, so the executor refuses to try.
var ErrMissingCredentials = errors.New("inflection identity and secret are not configured")

// AuthError reports a rejected login exchange. It carries the upstream status
// only; the secret and any token returned by the upstream never appear in the
// error text.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("inflection login rejected with status %d", e.Status)
}

// ReauthError reports that a 401 was observed and the recovery login also
// failed. It wraps the login failure.
type ReauthError struct {
	Err error
}

func (e *ReauthError) Error() string {
	return fmt.Sprintf("re-authentication after credential rejection failed: %v", e.Err)
}

func (e *ReauthError) Unwrap() error { return e.Err }

// MaxRetriesError reports that the upstream kept rejecting the credential
// across every re-authentication cycle. Attempts is the total number of
// requests sent.
type MaxRetriesError struct {
	Attempts int
}

func (e *MaxRetriesError) Error() string {
	return fmt.Sprintf("credential rejected on all %d request attempts", e.Attempts)
}

// APIError is any non-2xx, non-401 upstream response. The executor performs
// no recovery for these; they surface to the caller untouched.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("inflection API returned status %d", e.Status)
	}
	return fmt.Sprintf("inflection API returned status %d: %s", e.Status, e.Body)
}

// IsAuthFailure reports whether err belongs to the authentication error
// taxonomy (missing credentials, rejected login, failed re-authentication, or
// exhausted retries). Callers use this to decide between "re-authenticate"
// and ordinary error handling.
func IsAuthFailure(err error) bool {
	var (
		authErr    *AuthError
		reauthErr  *ReauthError
		retriesErr *MaxRetriesError
	)
	return errors.Is(err, ErrMissingCredentials) ||
		errors.As(err, &authErr) ||
		errors.As(err, &reauthErr) ||
		errors.As(err, &retriesErr)
}
