package clubio

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

var _ TokenStore = &MemoryTokenStore{}
var _ TokenStore = &FileTokenStore{}

// MemoryTokenStore holds the token for the process lifetime only. Useful
// for tests and for callers that manage persistence themselves.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

// FileTokenStore persists the token to a single file, the process
// equivalent of the browser's durable storage. The token survives
// restarts; absence of the file is normal, not an error.
type FileTokenStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

// NewFileTokenStore loads any previously persisted token from path.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	s := &FileTokenStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "unable to read token file")
	}

	s.token = strings.TrimSpace(string(raw))
	return s, nil
}

func (s *FileTokenStore) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Set writes the token to memory and to disk before returning. Subsequent
// requests include it.
func (s *FileTokenStore) Set(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to create token directory")
	}

	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to write token file")
	}

	s.token = token
	return nil
}

// Clear removes the token from memory and disk. Clearing an absent token
// is a no-op.
func (s *FileTokenStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "unable to remove token file")
	}

	return nil
}
