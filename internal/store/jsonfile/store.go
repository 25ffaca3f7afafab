// Package jsonfile implements the key-value port on top of a single JSON
// document on disk, plus a watcher that reports when that document changes.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/colonyops/taskcal/internal/core/kv"
	memkv "github.com/colonyops/taskcal/pkg/kv"
)

// FileName is the default document name inside the data directory.
const FileName = "taskcal.json"

// Document is the root JSON structure stored on disk.
type Document struct {
	Entries map[string]kv.Entry `json:"entries"`
}

// Store implements kv.KV using a JSON file for persistence. The parsed
// document is cached in memory; Reload discards the cache and re-reads the
// file after an external writer has changed it.
type Store struct {
	path  string
	now   func() time.Time
	mu    sync.Mutex
	cache *memkv.Store[string, kv.Entry]
}

var (
	_ kv.KV      = (*Store)(nil)
	_ kv.Sweeper = (*Store)(nil)
)

// Open loads the document at path. A missing file is an empty store. A file
// that is not a valid document is moved aside (see RecoverFromCorruption)
// and the store starts empty.
func Open(path string) (*Store, error) {
	s := &Store{
		path:  path,
		now:   time.Now,
		cache: memkv.New[string, kv.Entry](),
	}

	err := s.Reload()
	if IsCorruptionError(err) {
		backup, rerr := RecoverFromCorruption(path)
		if rerr != nil {
			return nil, fmt.Errorf("recover %s: %w", path, rerr)
		}
		log.Warn().Err(err).Str("backup", backup).Msg("data file was corrupt, starting fresh")
		err = s.Reload()
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// IsCorruptionError reports whether err comes from a data file that does not
// decode as a Document.
func IsCorruptionError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

// RecoverFromCorruption renames the document at path to
// "<path>.corrupt.<timestamp>" and returns the backup path.
func RecoverFromCorruption(path string) (string, error) {
	backup := fmt.Sprintf("%s.corrupt.%s", path, time.Now().Format("20060102-150405"))
	if err := os.Rename(path, backup); err != nil {
		return "", fmt.Errorf("failed to backup corrupted data file: %w", err)
	}
	return backup, nil
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// Reload replaces the in-memory cache with the document currently on disk.
func (s *Store) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	s.cache.Clear()
	s.cache.SetBatch(doc.Entries)
	return nil
}

func (s *Store) Get(ctx context.Context, key string, dest any) error {
	entry, ok := s.live(key)
	if !ok {
		return fmt.Errorf("kv get %q: %w", key, kv.ErrNotFound)
	}
	if err := json.Unmarshal(entry.Value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key string, value any) error {
	return s.set(key, value, nil)
}

func (s *Store) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	expiresAt := s.now().Add(ttl)
	return s.set(key, value, &expiresAt)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.cache.Get(key); !ok {
		return nil
	}
	s.cache.Delete(key)
	return s.flush()
}

// SweepExpired drops expired entries and rewrites the document if anything
// was removed.
func (s *Store) SweepExpired(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for _, k := range s.cache.Keys() {
		if e, ok := s.cache.Get(k); ok && e.Expired(now) {
			s.cache.Delete(k)
			removed++
		}
	}
	if removed == 0 {
		return nil
	}
	return s.flush()
}

func (s *Store) live(key string) (kv.Entry, bool) {
	entry, ok := s.cache.Get(key)
	if !ok || entry.Expired(s.now()) {
		return kv.Entry{}, false
	}
	return entry, true
}

func (s *Store) set(key string, value any, expiresAt *time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := kv.Entry{
		Key:       key,
		Value:     data,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if prev, ok := s.cache.Get(key); ok {
		entry.CreatedAt = prev.CreatedAt
	}

	s.cache.Set(key, entry)
	if err := s.flush(); err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

// load reads the document from disk. Returns an empty document if the file
// doesn't exist or is empty.
func (s *Store) load() (Document, error) {
	doc := Document{Entries: map[string]kv.Entry{}}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return doc, err
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]kv.Entry{}
	}
	return doc, nil
}

// flush writes the cached document to disk atomically. Callers hold mu.
func (s *Store) flush() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}

	doc := Document{Entries: make(map[string]kv.Entry, s.cache.Len())}
	for _, k := range s.cache.Keys() {
		if e, ok := s.cache.Get(k); ok {
			doc.Entries[k] = e
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	return os.Rename(tmp, s.path)
}
