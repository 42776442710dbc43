package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/example/gearshop/internal/domain/cart"
)

// Interface is the client-local durable storage holding the guest cart:
// a single keyed entry overwritten wholesale on every guest mutation
// and cleared exactly once when the guest cart is merged at login.
// There is no partial-update primitive, mirroring browser local storage.
type Interface interface {
	Load() ([]cart.Line, error)
	Save(lines []cart.Line) error
	Clear() error
}

// FileStore persists the guest cart as a JSON file. Writes go through a
// temp file and rename so a crash mid-write never leaves a truncated
// entry behind.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored guest lines. A missing file means no guest
// cart and returns nil lines without an error.
func (s *FileStore) Load() ([]cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read guest cart: %w", err)
	}

	var lines []cart.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode guest cart: %w", err)
	}
	return lines, nil
}

// Save overwrites the stored guest lines in full.
func (s *FileStore) Save(lines []cart.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to encode guest cart: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create guest cart dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write guest cart: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace guest cart: %w", err)
	}
	return nil
}

// Clear removes the stored entry. Clearing an absent entry is a no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear guest cart: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory guest store for tests.
type MemoryStore struct {
	mu    sync.Mutex
	lines []cart.Line

	// Failure injection for tests
	LoadErr  error
	SaveErr  error
	ClearErr error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() ([]cart.Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}
	if s.lines == nil {
		return nil, nil
	}
	lines := make([]cart.Line, len(s.lines))
	copy(lines, s.lines)
	return lines, nil
}

func (s *MemoryStore) Save(lines []cart.Line) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.lines = make([]cart.Line, len(lines))
	copy(s.lines, lines)
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.lines = nil
	return nil
}
