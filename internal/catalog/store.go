package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// ErrNotFound is returned when an entry does not exist in the store.
var ErrNotFound = errors.New("catalog entry not found")

// ErrWriteConflict is returned when an entry changed on disk between
// read and write. A reconciliation that sees this must abort rather
// than retry blindly; another writer owns the entry right now.
var ErrWriteConflict = errors.New("catalog entry modified concurrently")

// Store is the persistence collaborator consumed by the
// reconciliation driver. Reads and writes are atomic per entry.
type Store interface {
	Read(name string) (*Entry, error)
	Write(name string, e *Entry) error
}

// FileStore keeps one pretty-printed JSON file per entry under a
// bucket directory. Writes go through a temp file and rename, so a
// crashed process never leaves a half-written entry behind.
type FileStore struct {
	dir string

	mu sync.Mutex
	// readStamps records each entry's mtime at read, for conflict
	// detection at write.
	readStamps map[string]time.Time
}

// NewFileStore creates a store rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create bucket directory: %w", err)
	}
	return &FileStore{dir: dir, readStamps: make(map[string]time.Time)}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Read loads an entry by name.
func (s *FileStore) Read(name string) (*Entry, error) {
	path := s.path(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}

	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("failed to parse entry %s: %w", name, err)
	}
	if e.Name == "" {
		e.Name = name
	}

	if info, err := os.Stat(path); err == nil {
		s.mu.Lock()
		s.readStamps[name] = info.ModTime()
		s.mu.Unlock()
	}

	return &e, nil
}

// Write persists an entry, failing with ErrWriteConflict when the file
// changed since this store last read it.
func (s *FileStore) Write(name string, e *Entry) error {
	path := s.path(name)

	s.mu.Lock()
	stamp, seen := s.readStamps[name]
	s.mu.Unlock()

	if seen {
		if info, err := os.Stat(path); err == nil && !info.ModTime().Equal(stamp) {
			return fmt.Errorf("%w: %s", ErrWriteConflict, name)
		}
	}

	data, err := json.MarshalIndent(e, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode entry %s: %w", name, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write entry %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace entry %s: %w", name, err)
	}

	if info, err := os.Stat(path); err == nil {
		s.mu.Lock()
		s.readStamps[name] = info.ModTime()
		s.mu.Unlock()
	}

	return nil
}

// List returns the names of all entries in the bucket, sorted.
func (s *FileStore) List() ([]string, error) {
	globbed, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(globbed))
	for _, p := range globbed {
		base := filepath.Base(p)
		names = append(names, base[:len(base)-len(".json")])
	}
	sort.Strings(names)
	return names, nil
}

// SortedTags returns target platform tags in stable order.
func SortedTags(targets map[string]*Target) []string {
	tags := make([]string, 0, len(targets))
	for tag := range targets {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
