package portalsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

// TokenPair is the credential set a Session keeps between calls.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CredentialStore persists a token pair between requests (and, for file
// backed stores, between process runs). Implementations must be safe for
// concurrent use.
type CredentialStore interface {
	// Save replaces the stored pair.
	Save(pair TokenPair) error

	// Load returns the stored pair, or ok=false when nothing is stored.
	Load() (pair TokenPair, ok bool)

	// Clear removes the stored pair. Clearing an empty store is not an error.
	Clear() error
}

// MemoryStore keeps the pair in process memory only.
type MemoryStore struct {
	mu   sync.RWMutex
	pair TokenPair
	set  bool
}

// NewMemoryStore creates an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = pair
	s.set = true
	return nil
}

func (s *MemoryStore) Load() (TokenPair, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair, s.set
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = TokenPair{}
	s.set = false
	return nil
}

// FileStore persists the pair as JSON at a fixed path with 0600 permissions,
// for CLI tools that need the session to survive the process.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a credential store backed by the given file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(pair TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return nil
}

func (s *FileStore) Load() (TokenPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return TokenPair{}, false
	}

	var pair TokenPair
	if err := json.Unmarshal(raw, &pair); err != nil || pair.AccessToken == "" {
		return TokenPair{}, false
	}
	return pair, true
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}
