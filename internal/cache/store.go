package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// Common cache errors.
var (
	ErrInvalidCacheKey = errors.New("cache key cannot be empty")
	ErrCorruptStore    = errors.New("cache file is corrupt")
)

// Permissions for the cache file and the directory that holds it.
const (
	cacheDirPerm  = 0o750
	cacheFilePerm = 0o600
)

// Option configures a FileStore.
type Option func(*FileStore)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		s.now = now
	}
}

// FileStore is a TTL cache persisted as a single JSON object on disk.
// It holds no entries in memory: each call reloads the file.
type FileStore struct {
	// path is the cache file location.
	path string

	// now is the clock used to stamp and check expiry.
	now func() time.Time

	// mu serializes load-mutate-persist cycles within this process.
	mu sync.Mutex
}

// NewFileStore creates a store backed by the file at path.
// Neither the file nor its directory need to exist yet; both are created on the first Put.
func NewFileStore(path string, opts ...Option) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("cache file path cannot be empty")
	}

	s := &FileStore{
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Get decodes the value stored under key into out.
// It returns false when the key is absent or expired. Storage and decode
// failures are returned as errors rather than reported as a miss.
func (s *FileStore) Get(key string, out any) (bool, error) {
	if key == "" {
		return false, ErrInvalidCacheKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return false, err
	}

	entry, ok := entries[key]
	if !ok || !entry.IsValidAt(s.now()) {
		return false, nil
	}

	if out != nil {
		if unmarshalErr := json.Unmarshal(entry.Value, out); unmarshalErr != nil {
			return false, fmt.Errorf("failed to decode cache entry %q: %w", key, unmarshalErr)
		}
	}
	return true, nil
}

// Put stores value under key for ttl and rewrites the cache file.
// Other entries, expired or not, are preserved as they were on disk.
func (s *FileStore) Put(key string, value any, ttl time.Duration) error {
	if key == "" {
		return ErrInvalidCacheKey
	}
	if ttl <= 0 {
		return fmt.Errorf("%w: got %s", ErrInvalidTTL, ttl)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entries[key] = NewEntry(data, s.now(), ttl)
	return s.save(entries)
}

// EntryInfo describes one stored entry without its value.
type EntryInfo struct {
	Key       string
	ExpiresAt time.Time
	// ExpiresIn is zero once the entry is stale.
	ExpiresIn time.Duration
	Valid     bool
}

// Stats lists every entry on disk, expired ones included, sorted by key.
func (s *FileStore) Stats() ([]EntryInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}

	now := s.now()
	infos := make([]EntryInfo, 0, len(entries))
	for key, entry := range entries {
		infos = append(infos, EntryInfo{
			Key:       key,
			ExpiresAt: entry.ExpiresAt,
			ExpiresIn: entry.TimeUntilExpiration(now),
			Valid:     entry.IsValidAt(now),
		})
	}
	slices.SortFunc(infos, func(a, b EntryInfo) int {
		return strings.Compare(a.Key, b.Key)
	})
	return infos, nil
}

// Clear removes the cache file. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove cache file: %w", err)
	}
	return nil
}

// Path returns the cache file location.
func (s *FileStore) Path() string {
	return s.path
}

// load reads the full snapshot. Must be called with mu held.
func (s *FileStore) load() (map[string]Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]Entry), nil
		}
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]Entry), nil
	}

	var entries map[string]Entry
	if unmarshalErr := json.Unmarshal(data, &entries); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCorruptStore, s.path, unmarshalErr)
	}
	if entries == nil {
		entries = make(map[string]Entry)
	}
	return entries, nil
}

// save writes the full snapshot. Must be called with mu held.
func (s *FileStore) save(entries map[string]Entry) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, cacheDirPerm); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, writeErr := tmp.Write(data); writeErr != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache file: %w", writeErr)
	}
	if closeErr := tmp.Close(); closeErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write cache file: %w", closeErr)
	}
	if chmodErr := os.Chmod(tmpPath, cacheFilePerm); chmodErr != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to set cache file permissions: %w", chmodErr)
	}

	if renameErr := os.Rename(tmpPath, s.path); renameErr != nil {
		_ = os.Remove(tmpPath) // Clean up temp file on error
		return fmt.Errorf("failed to rename cache file: %w", renameErr)
	}

	return nil
}

// Disabled is a cache that never stores anything. Every Get misses and every Put succeeds.
type Disabled struct{}

// Get always reports a miss.
func (Disabled) Get(string, any) (bool, error) {
	return false, nil
}

// Put discards the value.
func (Disabled) Put(string, any, time.Duration) error {
	return nil
}
