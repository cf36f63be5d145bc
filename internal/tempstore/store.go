// Package tempstore manages the on-disk lifetime of uploaded audio:
// request-scoped files with collision-resistant names, idempotent
// deletion, age-based collection of orphans, and full removal at
// shutdown.
package tempstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
)

// StoredFile is a handle to one persisted upload. The store owns the
// file; the request that created it schedules its deletion.
type StoredFile struct {
	Name      string
	Path      string
	CreatedAt time.Time
}

type Store struct {
	dir string
}

func New(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) Dir() string { return s.dir }

// Provision ensures the store directory exists. Idempotent.
func (s *Store) Provision() error {
	return os.MkdirAll(s.dir, 0o755)
}

// Save writes the upload under a random name carrying the original
// extension (the engine may need it to infer the container format).
// The write goes to a temp name first so a stored file is never
// observed half-written.
func (s *Store) Save(data []byte, ext string) (*StoredFile, error) {
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return nil, fmt.Errorf("write upload: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("finalize upload: %w", err)
	}

	return &StoredFile{Name: name, Path: path, CreatedAt: time.Now()}, nil
}

// Delete unlinks the stored file. A file already gone (collected, or
// deleted by an earlier call) is not an error.
func (s *Store) Delete(f *StoredFile) error {
	if f == nil {
		return nil
	}
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CollectExpired removes every entry older than maxAge and reports how
// many were removed. Called opportunistically before each new upload,
// so idle growth stays proportional to request rate.
func (s *Store) CollectExpired(maxAge time.Duration) int {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if os.Remove(filepath.Join(s.dir, entry.Name())) == nil {
				removed++
			}
		}
	}
	return removed
}

// Teardown removes the store directory and anything left in it.
func (s *Store) Teardown() error {
	return os.RemoveAll(s.dir)
}

// FreeSpace reports the free bytes on the filesystem holding the store.
func (s *Store) FreeSpace() (uint64, error) {
	var st syscall.Statfs_t
	if err := syscall.Statfs(s.dir, &st); err != nil {
		return 0, err
	}
	return st.Bavail * uint64(st.Bsize), nil
}
