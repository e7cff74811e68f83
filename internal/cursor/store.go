// Package cursor persists the Telegram update offset between dispatcher runs.
//
// The file holds a single decimal integer: the lowest update id that has not
// been acknowledged yet. Only one dispatcher may hold the cursor at a time;
// Lock takes an advisory lock on a sibling ".lock" file.
package cursor

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

var (
	// ErrNoCursor is returned by Load when the cursor file does not exist yet.
	ErrNoCursor = errors.New("cursor file not found")
	// ErrMalformed is returned by Load when the file content is not a non-negative integer.
	ErrMalformed = errors.New("malformed cursor")
	// ErrLocked is returned by Lock when another process holds the cursor.
	ErrLocked = errors.New("cursor is locked by another process")
)

// FileStore is a single-writer cursor persisted in a one-line text file.
type FileStore struct {
	path string
	lock *flock.Flock
}

// NewFileStore creates a store backed by path. The file is not touched until Load or Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the cursor file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the persisted cursor.
func (s *FileStore) Load() (int64, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNoCursor
		}
		return 0, fmt.Errorf("failed to read cursor: %w", err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, fmt.Errorf("%w: empty file", ErrMalformed)
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformed, text)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative value %d", ErrMalformed, v)
	}
	return v, nil
}

// LoadOrZero applies the fail-open policy: any load error yields 0.
func (s *FileStore) LoadOrZero(logger *slog.Logger) int64 {
	v, err := s.Load()
	if err == nil {
		return v
	}
	if errors.Is(err, ErrNoCursor) {
		logger.Debug("no cursor yet; starting from 0", "path", s.path)
	} else {
		logger.Warn("cursor unreadable; starting from 0", "path", s.path, "error", err)
	}
	return 0
}

// Save overwrites the cursor. The value is written to a temp file in the
// same directory and renamed over the old one.
func (s *FileStore) Save(v int64) error {
	if v < 0 {
		return fmt.Errorf("refusing to save negative cursor %d", v)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".cursor-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if _, err := os.Stat(tmpPath); err == nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(strconv.FormatInt(v, 10) + "\n"); err != nil {
		return fmt.Errorf("failed to write cursor: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace cursor file: %w", err)
	}
	return nil
}

// Lock takes the advisory lock without blocking. The returned func releases it.
func (s *FileStore) Lock() (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to lock cursor: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() { _ = s.lock.Unlock() }, nil
}
