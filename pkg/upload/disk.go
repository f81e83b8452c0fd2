package upload

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DiskStore stages selections in a local directory.
type DiskStore struct {
	dir     string
	maxSize int64
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]diskEntry
}

type diskEntry struct {
	owner       string
	filename    string
	contentType string
	size        int64
	createdAt   time.Time
}

// NewDiskStore creates the directory if needed. maxSize of 0 means no limit.
func NewDiskStore(dir string, maxSize int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{
		dir:     dir,
		maxSize: maxSize,
		now:     time.Now,
		entries: make(map[string]diskEntry),
	}, nil
}

// Dir returns the staging directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Save implements Store. The declared size is only a hint; the limit is
// enforced on the bytes actually written.
func (s *DiskStore) Save(owner, filename, contentType string, size int64, r io.Reader) (string, error) {
	if s.maxSize > 0 && size > s.maxSize {
		return "", ErrTooLarge
	}

	tempID, err := newTempID()
	if err != nil {
		return "", err
	}
	path := s.path(tempID)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", err
	}

	src := r
	if s.maxSize > 0 {
		src = io.LimitReader(r, s.maxSize+1)
	}
	written, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		os.Remove(path)
		return "", copyErr
	case closeErr != nil:
		os.Remove(path)
		return "", closeErr
	case s.maxSize > 0 && written > s.maxSize:
		os.Remove(path)
		return "", ErrTooLarge
	}

	s.mu.Lock()
	s.entries[tempID] = diskEntry{
		owner:       owner,
		filename:    filename,
		contentType: contentType,
		size:        written,
		createdAt:   s.now(),
	}
	s.mu.Unlock()

	return tempID, nil
}

// Claim implements Store. A temp ID can be claimed once, and only by the
// owner it was saved for.
func (s *DiskStore) Claim(owner, tempID string) (*File, error) {
	s.mu.Lock()
	entry, ok := s.entries[tempID]
	if ok && entry.owner != owner {
		ok = false
	}
	if ok {
		delete(s.entries, tempID)
	}
	s.mu.Unlock()

	if !ok {
		return nil, ErrNotFound
	}

	path := s.path(tempID)
	if _, err := os.Stat(path); err != nil {
		return nil, ErrNotFound
	}

	return &File{
		ID:          tempID,
		Filename:    entry.filename,
		ContentType: entry.contentType,
		Size:        entry.size,
		Path:        path,
		release: func() error {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return err
			}
			return nil
		},
	}, nil
}

// Cleanup implements Store. Unclaimed entries older than maxAge are dropped,
// and so are files on disk with an older modification time.
func (s *DiskStore) Cleanup(maxAge time.Duration) error {
	cutoff := s.now().Add(-maxAge)

	s.mu.Lock()
	for tempID, entry := range s.entries {
		if entry.createdAt.Before(cutoff) {
			delete(s.entries, tempID)
			os.Remove(s.path(tempID))
		}
	}
	s.mu.Unlock()

	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, de.Name()))
		}
	}
	return nil
}

func (s *DiskStore) path(tempID string) string {
	return filepath.Join(s.dir, tempID)
}

// newTempID generates a random 128-bit hex ID.
func newTempID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
