package driven

import "github.com/inflectionhq/inflection-mcp/internal/domain/model"

// CredentialStore holds the single bearer credential shared by every
// operation in the process. Implementations must be safe for concurrent use:
// a reader never observes a half-written record, Set replaces the whole
// record atomically, and Clear is idempotent.
type CredentialStore interface {
	// Get returns the current record. An empty record (Token == "") means no
	// credential is held.
	Get() model.CredentialRecord

	// Set atomically replaces the current record.
	Set(record model.CredentialRecord)

	// Clear atomically resets the store to empty.
	Clear()
}
