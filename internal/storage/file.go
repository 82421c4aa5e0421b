package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStorage keeps every key in one JSON object on disk. An advisory lock
// next to the file serializes writers across processes.
type FileStorage struct {
	mu   sync.Mutex
	path string
	lock *flock.Flock
}

func OpenFile(path string) (*FileStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage: file path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &FileStorage{path: path, lock: flock.New(path + ".lock")}, nil
}

func (s *FileStorage) Close() error {
	return nil
}

func (s *FileStorage) GetItem(ctx context.Context, key string) (string, error) {
	var value string
	err := s.withLock(ctx, func(items map[string]string) (bool, error) {
		v, ok := items[key]
		if !ok {
			return false, ErrNotFound
		}
		value = v
		return false, nil
	})
	return value, err
}

func (s *FileStorage) SetItem(ctx context.Context, key, value string) error {
	return s.withLock(ctx, func(items map[string]string) (bool, error) {
		items[key] = value
		return true, nil
	})
}

func (s *FileStorage) RemoveItem(ctx context.Context, key string) error {
	return s.withLock(ctx, func(items map[string]string) (bool, error) {
		if _, ok := items[key]; !ok {
			return false, nil
		}
		delete(items, key)
		return true, nil
	})
}

func (s *FileStorage) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.withLock(ctx, func(items map[string]string) (bool, error) {
		keys = make([]string, 0, len(items))
		for k := range items {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return false, nil
	})
	return keys, err
}

// withLock loads the file under both locks, runs fn, and writes the map back
// when fn reports a change.
func (s *FileStorage) withLock(ctx context.Context, fn func(map[string]string) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire storage lock: %w", err)
	}
	if !ok {
		return errors.New("storage: lock not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()

	items, err := s.read()
	if err != nil {
		return err
	}
	changed, err := fn(items)
	if err != nil || !changed {
		return err
	}
	return s.write(items)
}

func (s *FileStorage) read() (map[string]string, error) {
	items := make(map[string]string)
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return items, nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode storage file: %w", err)
	}
	return items, nil
}

func (s *FileStorage) write(items map[string]string) error {
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
