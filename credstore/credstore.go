// Package credstore provides CredentialStore implementations.
//
// The bearer credential is the only durably persisted piece of session
// state: its absence means "logged out", and it must survive a process
// restart so a returning user is verified instead of re-prompted.
package credstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tenantflow "github.com/tenantflow/tenantflow-go"
)

// File persists the credential as a single file under the user config
// directory. Safe for concurrent use.
type File struct {
	mu   sync.Mutex
	path string
}

// compile-time check
var _ tenantflow.CredentialStore = (*File)(nil)

// DefaultPath returns the default credential file location:
// <user config dir>/tenantflow/credential.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("credstore: resolve config dir: %w", err)
	}
	return filepath.Join(dir, "tenantflow", "credential"), nil
}

// NewFile creates a file-backed store at the given path. An empty path
// selects DefaultPath.
func NewFile(path string) (*File, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return &File{path: path}, nil
}

// Load returns the stored credential, or tenantflow.ErrNoCredential.
func (f *File) Load() (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", tenantflow.ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("credstore: read credential: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", tenantflow.ErrNoCredential
	}
	return token, nil
}

// Save durably stores the credential, creating parent directories as
// needed. The file is written with owner-only permissions.
func (f *File) Save(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("credstore: create directory: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("credstore: write credential: %w", err)
	}
	return nil
}

// Clear removes the stored credential. A missing file is not an error.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("credstore: remove credential: %w", err)
	}
	return nil
}

// Memory is an in-process store for tests and ephemeral sessions.
type Memory struct {
	mu    sync.Mutex
	token string
	set   bool
}

// compile-time check
var _ tenantflow.CredentialStore = (*Memory)(nil)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory { return &Memory{} }

// Load returns the stored credential, or tenantflow.ErrNoCredential.
func (m *Memory) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.set {
		return "", tenantflow.ErrNoCredential
	}
	return m.token, nil
}

// Save stores the credential.
func (m *Memory) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = token, true
	return nil
}

// Clear removes the stored credential.
func (m *Memory) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.set = "", false
	return nil
}
