package session

// Store defines the interface for session persistence. The store is a dumb
// persistence delegate: no network, no UI side effects, no business logic.
type Store interface {
	// Load deserializes the persisted record. A missing or unparsable
	// record yields (nil, nil); parse failures also clear the storage so
	// a bad record is never seen twice.
	Load() (*Session, error)

	// Save serializes and persists the session, overwriting any prior value.
	Save(session Session) error

	// Clear removes the persisted value. Idempotent.
	Clear() error
}
