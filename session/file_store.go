package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const sessionFileName = "session.json"

// FileStore persists the single session record as one JSON document under
// the application's data folder.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store rooted at the given data folder.
func NewFileStore(dataFolder string) *FileStore {
	return &FileStore{path: filepath.Join(dataFolder, sessionFileName)}
}

var _ Store = (*FileStore)(nil)

func (fs *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(fs.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[FileStore.Load] read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Treat any parse failure as "no session": clear the bad record
		// so it is never seen twice, and never crash the caller.
		_ = fs.Clear()
		return nil, nil
	}
	if err := session.Validate(); err != nil {
		_ = fs.Clear()
		return nil, nil
	}
	return &session, nil
}

func (fs *FileStore) Save(session Session) error {
	if err := session.Validate(); err != nil {
		return fmt.Errorf("[FileStore.Save] %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o755); err != nil {
		return fmt.Errorf("[FileStore.Save] create data folder: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("[FileStore.Save] marshal session: %w", err)
	}
	if err := os.WriteFile(fs.path, data, 0o600); err != nil {
		return fmt.Errorf("[FileStore.Save] write session file: %w", err)
	}
	return nil
}

func (fs *FileStore) Clear() error {
	err := os.Remove(fs.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("[FileStore.Clear] remove session file: %w", err)
	}
	return nil
}
