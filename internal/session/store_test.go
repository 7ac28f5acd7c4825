package session

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	s.Set(&http.Cookie{Name: AccessCookie, Value: "tok", MaxAge: 900})
	v, ok := s.Get(AccessCookie)
	require.True(t, ok)
	require.Equal(t, "tok", v)

	now = now.Add(15 * time.Minute)
	_, ok = s.Get(AccessCookie)
	require.False(t, ok, "cookie must be gone once Max-Age elapses")
}

func TestMemoryStore_DeleteSemantics(t *testing.T) {
	s := NewMemoryStore()
	s.Set(&http.Cookie{Name: NameCookie, Value: "Ana"})
	s.Set(&http.Cookie{Name: UserIDCookie, Value: "1"})

	s.Set(&http.Cookie{Name: NameCookie, Value: "", MaxAge: -1})
	_, ok := s.Get(NameCookie)
	require.False(t, ok)

	s.Set(&http.Cookie{Name: UserIDCookie, Value: "1", Expires: time.Unix(0, 0)})
	_, ok = s.Get(UserIDCookie)
	require.False(t, ok)

	s.Remove(All...)
	s.Remove(All...)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	fs, err := OpenFileStore(path)
	require.NoError(t, err)
	fs.Set(&http.Cookie{Name: RefreshCookie, Value: "refresh", MaxAge: 3600})
	fs.Set(&http.Cookie{Name: NameCookie, Value: "Ana"})

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	v, ok := reopened.Get(RefreshCookie)
	require.True(t, ok)
	require.Equal(t, "refresh", v)

	reopened.Remove(All...)
	again, err := OpenFileStore(path)
	require.NoError(t, err)
	_, ok = again.Get(NameCookie)
	require.False(t, ok)
}

func TestFileStore_WriteErrorSurfaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	fs, err := OpenFileStore(filepath.Join(dir, "session.json"))
	require.NoError(t, err)

	// The session directory cannot be created once a plain file holds its name.
	require.NoError(t, os.WriteFile(dir, []byte("x"), 0o600))

	err = fs.Set(&http.Cookie{Name: RefreshCookie, Value: "refresh", MaxAge: 3600})
	require.Error(t, err)
	require.Contains(t, err.Error(), "create session dir")

	require.Error(t, fs.Remove(All...))
}

func TestFileStore_ConcurrentWritesKeepLatestState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	fs, err := OpenFileStore(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, fs.Set(&http.Cookie{Name: fmt.Sprintf("c%d", i), Value: "v"}))
		}()
	}
	wg.Wait()

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	for i := range 20 {
		_, ok := reopened.Get(fmt.Sprintf("c%d", i))
		require.True(t, ok, "cookie c%d missing from the file", i)
	}
}
