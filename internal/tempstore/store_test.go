package tempstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "uploads"))
}

func TestProvisionIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision())
	require.NoError(t, s.Provision())

	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestSaveWritesFileWithExtension(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision())

	f, err := s.Save([]byte("RIFF fake wav"), ".wav")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(f.Name, ".wav"))

	data, err := os.ReadFile(f.Path)
	require.NoError(t, err)
	require.Equal(t, []byte("RIFF fake wav"), data)

	// No leftover partial file.
	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision())

	a, err := s.Save([]byte("a"), ".mp3")
	require.NoError(t, err)
	b, err := s.Save([]byte("b"), ".mp3")
	require.NoError(t, err)
	require.NotEqual(t, a.Name, b.Name)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision())

	f, err := s.Save([]byte("x"), ".wav")
	require.NoError(t, err)

	require.NoError(t, s.Delete(f))
	require.NoError(t, s.Delete(f))
	require.NoError(t, s.Delete(nil))
}

func TestCollectExpiredRemovesOnlyOldFiles(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision())

	old, err := s.Save([]byte("old"), ".wav")
	require.NoError(t, err)
	fresh, err := s.Save([]byte("fresh"), ".wav")
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old.Path, past, past))

	removed := s.CollectExpired(time.Hour)
	require.Equal(t, 1, removed)

	_, err = os.Stat(old.Path)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(fresh.Path)
	require.NoError(t, err)
}

func TestTeardownRemovesDirectory(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision())

	_, err := s.Save([]byte("x"), ".mp4")
	require.NoError(t, err)

	require.NoError(t, s.Teardown())
	_, err = os.Stat(s.Dir())
	require.True(t, os.IsNotExist(err))
}

func TestFreeSpaceReportsNonZero(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Provision())

	free, err := s.FreeSpace()
	require.NoError(t, err)
	require.NotZero(t, free)
}
