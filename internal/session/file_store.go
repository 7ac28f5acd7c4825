package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists cookies as JSON so a session survives between CLI runs.
// Every write rewrites the file; the file is created with 0600 permissions.
type FileStore struct {
	*MemoryStore
	path string

	// flushMu serialises snapshot, write and rename so an older snapshot
	// never replaces a newer one.
	flushMu sync.Mutex
}

func OpenFileStore(path string) (*FileStore, error) {
	fs := &FileStore{MemoryStore: NewMemoryStore(), path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var entries map[string]entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode session file %s: %w", path, err)
	}
	now := fs.now()
	for name, e := range entries {
		if !e.expired(now) {
			fs.entries[name] = e
		}
	}

	return fs, nil
}

func (fs *FileStore) Set(c *http.Cookie) error {
	if err := fs.MemoryStore.Set(c); err != nil {
		return err
	}
	return fs.Flush()
}

func (fs *FileStore) Remove(names ...string) error {
	if err := fs.MemoryStore.Remove(names...); err != nil {
		return err
	}
	return fs.Flush()
}

// Flush writes the current cookies to disk.
func (fs *FileStore) Flush() error {
	fs.flushMu.Lock()
	defer fs.flushMu.Unlock()

	data, err := json.MarshalIndent(fs.snapshot(), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
