package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/existflow/taskboard/internal/db"
)

// TokenKey is the single persisted key holding the raw auth token
const TokenKey = "auth_token"

// TokenStore persists the raw auth token. Load returns "" when nothing is
// stored; absence means logged out.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// FileTokenStore keeps the token in a 0600 file
type FileTokenStore struct {
	path string
}

// NewFileTokenStore stores the token at <dir>/auth_token
func NewFileTokenStore(dir string) *FileTokenStore {
	return &FileTokenStore{path: filepath.Join(dir, TokenKey)}
}

// Path returns the token file location
func (s *FileTokenStore) Path() string {
	return s.path
}

func (s *FileTokenStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return fmt.Errorf("failed to write token: %w", err)
	}
	return nil
}

func (s *FileTokenStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

// DBTokenStore keeps the token in the client_state table
type DBTokenStore struct {
	db *db.DB
}

// NewDBTokenStore wraps an open state database
func NewDBTokenStore(database *db.DB) *DBTokenStore {
	return &DBTokenStore{db: database}
}

func (s *DBTokenStore) Load(ctx context.Context) (string, error) {
	token, err := s.db.GetState(ctx, TokenKey)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil
	}
	return token, err
}

func (s *DBTokenStore) Save(ctx context.Context, token string) error {
	return s.db.SetState(ctx, TokenKey, token)
}

func (s *DBTokenStore) Clear(ctx context.Context) error {
	return s.db.DeleteState(ctx, TokenKey)
}

// MemoryTokenStore is an in-memory token store for tests and ephemeral sessions
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryTokenStore creates an empty store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryTokenStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
