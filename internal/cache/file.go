package cache

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const fileVersion = "v1"

// ErrMiss is returned by FileCache.Load when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

// FileCache stores gob-encoded values under a directory, one file per key.
type FileCache struct {
	dir string
}

func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) filename(key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.gob", key, fileVersion))
}

// Save encodes v under key. The file is written to a temp name and renamed
// into place.
func (c *FileCache) Save(key string, v any) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, key+"_*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(v); err != nil {
		tmp.Close()
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), c.filename(key))
}

// Load decodes the entry for key into v.
func (c *FileCache) Load(key string, v any) error {
	file, err := os.Open(c.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	defer file.Close()

	if err := gob.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *FileCache) Remove(key string) error {
	err := os.Remove(c.filename(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Purge removes every entry of the current version.
func (c *FileCache) Purge() error {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), "_"+fileVersion+".gob") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
