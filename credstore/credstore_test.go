package credstore

import (
	"errors"
	"path/filepath"
	"testing"

	tenantflow "github.com/tenantflow/tenantflow-go"
)

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credential")
	store, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile() error: %v", err)
	}

	if _, err := store.Load(); !errors.Is(err, tenantflow.ErrNoCredential) {
		t.Fatalf("Load() on empty store = %v, want ErrNoCredential", err)
	}

	if err := store.Save("tok-abc"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	// A second store at the same path sees the credential: this is
	// what survives a process restart.
	reopened, _ := NewFile(path)
	token, err := reopened.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if token != "tok-abc" {
		t.Errorf("Load() = %q, want %q", token, "tok-abc")
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, tenantflow.ErrNoCredential) {
		t.Errorf("Load() after Clear() = %v, want ErrNoCredential", err)
	}

	// Clearing again is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on empty store error: %v", err)
	}
}

func TestFile_EmptyFileMeansLoggedOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential")
	store, _ := NewFile(path)
	if err := store.Save("   \n"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, tenantflow.ErrNoCredential) {
		t.Errorf("Load() of whitespace-only file = %v, want ErrNoCredential", err)
	}
}

func TestMemory_RoundTrip(t *testing.T) {
	store := NewMemory()

	if _, err := store.Load(); !errors.Is(err, tenantflow.ErrNoCredential) {
		t.Fatalf("Load() on empty store = %v, want ErrNoCredential", err)
	}

	if err := store.Save("tok-1"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	token, err := store.Load()
	if err != nil || token != "tok-1" {
		t.Fatalf("Load() = %q, %v; want tok-1, nil", token, err)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if _, err := store.Load(); !errors.Is(err, tenantflow.ErrNoCredential) {
		t.Errorf("Load() after Clear() = %v, want ErrNoCredential", err)
	}
}
