package host

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStateStore persists connector state as a JSON file, mirroring the
// platform's per-asset state file.
type FileStateStore struct {
	path string
}

// NewFileStateStore creates a store backed by path. The directory is created
// on first save.
func NewFileStateStore(path string) *FileStateStore {
	return &FileStateStore{path: path}
}

// Load reads the state file. A missing file yields the zero state, which
// reports the first scheduled run as pending.
func (s *FileStateStore) Load(ctx context.Context) (State, error) {
	_ = ctx
	var state State
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("failed to read state file %s: %w", s.path, err)
	}
	if err := json.Unmarshal(raw, &state); err != nil {
		return State{}, fmt.Errorf("failed to parse state file %s: %w", s.path, err)
	}
	return state, nil
}

// Save writes the state file atomically (write temp, rename).
func (s *FileStateStore) Save(ctx context.Context, state State) error {
	_ = ctx
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory %s: %w", dir, err)
		}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
