package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore holds the current access token between requests.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

// MemoryTokenStore keeps the token for the life of the process.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

func (s *MemoryTokenStore) Clear() {
	s.SetToken("")
}

// FileTokenStore persists the token as JSON with 0600 permissions so
// separate short-lived processes can share one session. Persistence is
// best-effort: a failed write degrades to memory-only behavior.
type FileTokenStore struct {
	mu    sync.RWMutex
	path  string
	token string
}

type tokenFile struct {
	AccessToken string `json:"access_token"`
}

// NewFileTokenStore loads any previously saved token from path.
// A missing or unreadable file starts an empty store.
func NewFileTokenStore(path string) *FileTokenStore {
	s := &FileTokenStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}

	var f tokenFile
	if err := json.Unmarshal(data, &f); err != nil {
		return s
	}

	s.token = f.AccessToken
	return s
}

func (s *FileTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *FileTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token

	data, err := json.Marshal(tokenFile{AccessToken: token})
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0o600)
}

func (s *FileTokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	_ = os.Remove(s.path)
}
