package model

import "time"

// UsableMargin is how long before actual expiry a credential is treated as
// expired, so a request never races the upstream clock with a token that is
// about to lapse in transit.
const UsableMargin = 30 * time.Second

// CredentialRecord holds the bearer token obtained from the Inflection.io
// login endpoint together with its lifetime. A record is either empty
// (Token == "") or fully populated; there is no partial state. Identity is
// kept only so the executor can re-authenticate automatically -- it is never
// persisted or logged.
type CredentialRecord struct {
	Token     string
	Identity  string
	IssuedAt  time.Time
	ExpiresAt time.Time // zero means the upstream did not report a lifetime
}

// Populated returns true when the record carries a token.
func (r CredentialRecord) Populated() bool {
	return r.Token != ""
}

// Usable reports whether the record can be attached to a request at the given
// instant: it must be populated and not within UsableMargin of expiry. A
// record with unknown expiry is treated as usable; a 401 from the upstream
// will correct us.
func (r CredentialRecord) Usable(now time.Time) bool {
	if !r.Populated() {
		return false
	}
	if r.ExpiresAt.IsZero() {
		return true
	}
	return now.Add(UsableMargin).Before(r.ExpiresAt)
}
