package cart

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

var ErrNotStored = errors.New("no stored cart")

// Storage is durable device-local storage, scoped by tenant.
type Storage interface {
	Load(tenant string) ([]byte, error)
	Save(tenant string, payload []byte) error
}

// FileStorage keeps one JSON document per tenant under Dir.
type FileStorage struct {
	Dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{Dir: dir}
}

func (s *FileStorage) path(tenant string) string {
	return filepath.Join(s.Dir, "cart-"+fileKey(tenant)+".json")
}

func (s *FileStorage) Load(tenant string) ([]byte, error) {
	raw, err := os.ReadFile(s.path(tenant))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotStored
	}
	return raw, err
}

// Save writes through a temp file and rename so a crash never leaves a
// half-written cart behind.
func (s *FileStorage) Save(tenant string, payload []byte) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.Dir, ".cart-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(tenant)); err != nil {
		return fmt.Errorf("rename cart file: %w", err)
	}
	return nil
}

// fileKey hex-encodes the tenant so distinct slugs never share a file and
// no slug can leave Dir.
func fileKey(tenant string) string {
	return hex.EncodeToString([]byte(tenant))
}

type MemoryStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (s *MemoryStorage) Load(tenant string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.data[tenant]
	if !ok {
		return nil, ErrNotStored
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStorage) Save(tenant string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[tenant] = append([]byte(nil), payload...)
	return nil
}
