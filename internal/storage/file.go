package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/pkg/errors"
)

// Dir keeps each key in its own JSON file under a directory.
type Dir struct {
	path string
}

func OpenDir(dir string) (*Dir, error) {
	if dir == "" {
		return nil, errors.New("storage dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create storage dir")
	}
	return &Dir{path: dir}, nil
}

func (d *Dir) Get(key string) (string, bool, error) {
	name, err := d.fileFor(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "get %q", key)
	}
	return string(data), true, nil
}

// Set replaces the file atomically, so a crash never leaves a half-written
// value behind.
func (d *Dir) Set(key, value string) error {
	name, err := d.fileFor(key)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(name, []byte(value), 0o644, renameio.WithTempDir(d.path)); err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (d *Dir) Close() error {
	return nil
}

func (d *Dir) fileFor(key string) (string, error) {
	if key == "" {
		return "", errors.New("key is empty")
	}
	if strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", errors.Errorf("invalid key %q", key)
	}
	return filepath.Join(d.path, key+".json"), nil
}

type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("key is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *Memory) Set(key, value string) error {
	if key == "" {
		return errors.New("key is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Close() error {
	return nil
}
