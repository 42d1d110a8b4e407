// Package cache is a content-addressed byte store on disk with
// time-to-live invalidation. It is shared across runs: slow academic
// datasets are downloaded once and reused until they go stale.
package cache

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// Key derives the stable cache key of a canonical request descriptor.
// Identical descriptors yield identical keys across runs; sha1 is
// collision-safe for the few dozen descriptors this tool produces.
func Key(descriptor string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(descriptor)))
}

// Store is a file-per-entry byte store. An entry is immutable once
// written and superseded only by an explicit overwrite or a full Clear.
// Entries are pure functions of their descriptor, so concurrent writers
// to the same key are idempotent and last-writer-wins is fine.
type Store struct {
	dir string
	ttl time.Duration
}

// New returns a store rooted at dir whose entries expire after ttl. The
// directory is created lazily on first write.
func New(dir string, ttl time.Duration) *Store {
	return &Store{dir: dir, ttl: ttl}
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key)
}

// Get returns the payload stored under key, or false when the entry is
// absent or older than the TTL.
func (s *Store) Get(key string) ([]byte, bool) {
	file := s.path(key)
	info, err := os.Stat(file)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > s.ttl {
		logrus.Debugf("cache entry %s expired", key)
		return nil, false
	}
	payload, err := os.ReadFile(file)
	if err != nil {
		return nil, false
	}
	logrus.Debugf("cache hit %s (%d bytes)", key, len(payload))
	return payload, true
}

// Put persists the payload under key, overwriting any prior entry. The
// write goes through a temp file and a rename so concurrent readers
// never observe a partial entry.
func (s *Store) Put(key string, payload []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("cannot create cache directory %q: %w", s.dir, err)
	}
	tmp, err := os.CreateTemp(s.dir, key+".tmp*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	logrus.Debugf("cached %s (%d bytes)", key, len(payload))
	return nil
}

// Clear removes every entry unconditionally.
func (s *Store) Clear() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("cannot clear cache %q: %w", s.dir, err)
	}
	return nil
}

// Stat summarizes the store content for display.
func (s *Store) Stat() (entries int, bytes int64, err error) {
	items, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	for _, item := range items {
		info, err := item.Info()
		if err != nil {
			continue
		}
		entries++
		bytes += info.Size()
	}
	return entries, bytes, nil
}
