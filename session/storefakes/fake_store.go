package storefakes

import (
	"sync"

	"github.com/healthycare/healthycare/session"
)

var _ session.Store = (*FakeStore)(nil)

// FakeStore is an in-memory session.Store for tests. SetCorrupt simulates
// an unparsable persisted record: the next Load clears it and reports no
// session, mirroring the file store's silent-reset behavior.
type FakeStore struct {
	mu      sync.Mutex
	session *session.Session
	corrupt bool

	SaveCalls  int
	ClearCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Load() (*session.Session, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if fs.corrupt {
		fs.corrupt = false
		fs.session = nil
		return nil, nil
	}
	if fs.session == nil {
		return nil, nil
	}
	copied := *fs.session
	return &copied, nil
}

func (fs *FakeStore) Save(s session.Session) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.SaveCalls++
	copied := s
	fs.session = &copied
	return nil
}

func (fs *FakeStore) Clear() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.ClearCalls++
	fs.session = nil
	fs.corrupt = false
	return nil
}

// SetCorrupt marks the persisted record as unparsable.
func (fs *FakeStore) SetCorrupt() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.corrupt = true
}

// Stored returns the currently persisted session, if any.
func (fs *FakeStore) Stored() *session.Session {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.session == nil {
		return nil
	}
	copied := *fs.session
	return &copied
}
