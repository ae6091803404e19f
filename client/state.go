package client

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var ErrNoState = errors.New("no saved state")

// StateDir keeps small JSON documents for the command line tools, such as
// the last scanned table or a waiter session.
type StateDir struct {
	Dir string
}

// NewStateDir uses ~/.tableorder when dir is empty.
func NewStateDir(dir string) (*StateDir, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".tableorder")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}
	return &StateDir{Dir: dir}, nil
}

// path hex-encodes name; names carry tenant slugs, which must neither
// collide nor escape Dir.
func (s *StateDir) path(name string) string {
	return filepath.Join(s.Dir, hex.EncodeToString([]byte(name))+".json")
}

func (s *StateDir) Load(name string, v interface{}) error {
	raw, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNoState
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *StateDir) Save(name string, v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(name), raw, 0o600)
}

func (s *StateDir) Remove(name string) error {
	err := os.Remove(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
