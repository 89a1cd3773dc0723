package store_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sealkv/internal/domain"
	"sealkv/internal/keyring"
	"sealkv/internal/store"
)

func openGlobal(t *testing.T, root string, name domain.StoreName) *store.FileKVStore {
	t.Helper()
	reg := newRegistry(t, root, "")
	s, err := reg.OpenFile(domain.ScopeGlobal, name)
	require.NoError(t, err)
	return s
}

func entryPath(t *testing.T, root string, name domain.StoreName) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(root, "global", name.String(), "entries", "*.entry"))
	require.NoError(t, err)
	return matches
}

func TestSetGet_RoundTrip(t *testing.T) {
	s := openGlobal(t, t.TempDir(), "Foo")

	values := map[string][]byte{
		"plain":      []byte("value"),
		"empty":      {},
		"binary":     {0, 1, 2, 255},
		"with/slash": []byte("x"),
		"ünïcode":    []byte("✓"),
	}
	for k, v := range values {
		require.NoError(t, s.Set(k, v))
	}
	for k, v := range values {
		got, err := s.Get(k)
		require.NoError(t, err)
		gv, ok := got.Get()
		assert.True(t, ok, k)
		assert.True(t, bytes.Equal(v, gv), k)
	}

	require.NoError(t, s.Set("plain", []byte("overwritten")))
	got, err := s.Get("plain")
	require.NoError(t, err)
	assert.Equal(t, "overwritten", got.String())
}

func TestGet_MissingIsNotFoundNotError(t *testing.T) {
	s := openGlobal(t, t.TempDir(), "Foo")

	got, err := s.Get("never-set")
	require.NoError(t, err)
	assert.False(t, got.IsFound())
}

func TestSet_RejectsBadInput(t *testing.T) {
	root := t.TempDir()
	reg, err := store.NewRegistry(store.Options{
		Root:          root,
		Keys:          keyring.NewFileSource(filepath.Join(root, "master.key")),
		MaxValueBytes: 8,
	})
	require.NoError(t, err)
	s, err := reg.SharedGlobal("Foo")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Set("", []byte("v")), domain.ErrInvalidKey)
	assert.ErrorIs(t, s.Set("k", []byte("123456789")), domain.ErrValueTooLarge)
	assert.NoError(t, s.Set("k", []byte("12345678")))

	_, err = s.Get("")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)
	assert.ErrorIs(t, s.Remove(""), domain.ErrInvalidKey)
}

func TestSet_RejectsInvalidUTF8Key(t *testing.T) {
	s := openGlobal(t, t.TempDir(), "Foo")

	assert.ErrorIs(t, s.Set("k\xff", []byte("v")), domain.ErrInvalidKey)
	_, err := s.Get("k\xff")
	assert.ErrorIs(t, err, domain.ErrInvalidKey)

	require.NoError(t, s.Set("clé", []byte("v")))
	got, err := s.Get("clé")
	require.NoError(t, err)
	assert.True(t, got.IsFound())
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"clé"}, keys)
}

func TestRemove(t *testing.T) {
	s := openGlobal(t, t.TempDir(), "Foo")

	require.NoError(t, s.Set("k", []byte("v")))
	require.NoError(t, s.Remove("k"))

	got, err := s.Get("k")
	require.NoError(t, err)
	assert.False(t, got.IsFound())

	assert.NoError(t, s.Remove("k"))
	assert.NoError(t, s.Remove("never-set"))
}

func TestKeysCountRemoveAll(t *testing.T) {
	s := openGlobal(t, t.TempDir(), "Foo")

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	for _, k := range []string{"b", "a", "c"} {
		require.NoError(t, s.Set(k, []byte(k)))
	}
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, s.RemoveAll())
	n, err = s.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	// The store keeps working after RemoveAll.
	require.NoError(t, s.Set("d", []byte("d")))
	keys, err = s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, keys)
}

func TestAtRest_NoPlaintextOnDisk(t *testing.T) {
	root := t.TempDir()
	s := openGlobal(t, root, "Foo")
	require.NoError(t, s.Set("visible-key", []byte("visible-value")))

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		require.NoError(t, err)
		assert.NotContains(t, path, "visible-key")
		if info.IsDir() {
			return nil
		}
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.False(t, bytes.Contains(b, []byte("visible-value")), path)
		assert.False(t, bytes.Contains(b, []byte("visible-key")), path)
		return nil
	})
	require.NoError(t, err)
}

func TestTamperedEntry_IsIntegrityError(t *testing.T) {
	root := t.TempDir()
	s := openGlobal(t, root, "Foo")
	require.NoError(t, s.Set("k", []byte("v")))

	files := entryPath(t, root, "Foo")
	require.Len(t, files, 1)
	b, err := os.ReadFile(files[0])
	require.NoError(t, err)
	// Flip a character inside the base64 ciphertext.
	i := bytes.Index(b, []byte(`"ct":"`)) + len(`"ct":"`) + 4
	if b[i] == 'A' {
		b[i] = 'B'
	} else {
		b[i] = 'A'
	}
	require.NoError(t, os.WriteFile(files[0], b, 0o600))

	got, err := s.Get("k")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.False(t, got.IsFound())

	_, err = s.Keys()
	assert.ErrorIs(t, err, domain.ErrIntegrity)

	require.NoError(t, os.WriteFile(files[0], []byte("garbage"), 0o600))
	_, err = s.Get("k")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestSwappedEntries_AreIntegrityErrors(t *testing.T) {
	root := t.TempDir()
	s := openGlobal(t, root, "Foo")
	require.NoError(t, s.Set("a", []byte("1")))
	require.NoError(t, s.Set("b", []byte("2")))

	files := entryPath(t, root, "Foo")
	require.Len(t, files, 2)
	a, err := os.ReadFile(files[0])
	require.NoError(t, err)
	b, err := os.ReadFile(files[1])
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(files[0], b, 0o600))
	require.NoError(t, os.WriteFile(files[1], a, 0o600))

	_, err = s.Get("a")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	_, err = s.Get("b")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestEntryCopiedAcrossStores_IsIntegrityError(t *testing.T) {
	root := t.TempDir()
	reg := newRegistry(t, root, "alice")
	src, err := reg.SharedGlobal("Src")
	require.NoError(t, err)
	dst, err := reg.SharedGlobal("Dst")
	require.NoError(t, err)
	require.NoError(t, src.Set("k", []byte("v")))

	files := entryPath(t, root, "Src")
	require.Len(t, files, 1)
	b, err := os.ReadFile(files[0])
	require.NoError(t, err)
	target := filepath.Join(root, "global", "Dst", "entries", filepath.Base(files[0]))
	require.NoError(t, os.WriteFile(target, b, 0o600))

	_, err = dst.Get("k")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

// An interrupted write leaves a temp file behind and never touches the
// committed entry files.
func TestInterruptedWrite_KeepsOldValueAndOtherKeys(t *testing.T) {
	root := t.TempDir()
	s := openGlobal(t, root, "Foo")
	require.NoError(t, s.Set("k", []byte("old")))
	require.NoError(t, s.Set("other", []byte("untouched")))

	files := entryPath(t, root, "Foo")
	require.Len(t, files, 2)
	// What WriteFileAtomic leaves behind when the process dies before rename.
	partial := files[0] + ".tmp-crash"
	require.NoError(t, os.WriteFile(partial, []byte(`{"v":1,"kid":"`), 0o600))

	// Readers on the live handle ignore the partial file.
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "other"}, keys)

	// A restart cleans the leftover and sees every committed value.
	require.NoError(t, s.Close())
	reopened := openGlobal(t, root, "Foo")
	got, err := reopened.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "old", got.String())
	got, err = reopened.Get("other")
	require.NoError(t, err)
	assert.Equal(t, "untouched", got.String())

	_, err = os.Stat(partial)
	assert.True(t, os.IsNotExist(err))
}

func TestConcurrentAccess(t *testing.T) {
	s := openGlobal(t, t.TempDir(), "Foo")

	const writers = 8
	const rounds = 20
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				// Everyone hammers "shared"; each writer also owns a key.
				assert.NoError(t, s.Set("shared", []byte(fmt.Sprintf("w%d-r%d", w, r))))
				assert.NoError(t, s.Set(fmt.Sprintf("own-%d", w), []byte(fmt.Sprint(r))))
				got, err := s.Get("shared")
				assert.NoError(t, err)
				assert.True(t, strings.HasPrefix(got.String(), "w"))
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < writers; w++ {
		got, err := s.Get(fmt.Sprintf("own-%d", w))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprint(rounds-1), got.String())
	}
	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, writers+1, n)
}

func TestClosedStore(t *testing.T) {
	s := openGlobal(t, t.TempDir(), "Foo")
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.Get("k")
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, s.Set("k", nil), domain.ErrClosed)
	assert.ErrorIs(t, s.Remove("k"), domain.ErrClosed)
	_, err = s.Keys()
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, s.RemoveAll(), domain.ErrClosed)
}

func TestUnreadableEntriesDir_IsIOError(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := t.TempDir()
	s := openGlobal(t, root, "Foo")
	require.NoError(t, s.Set("k", []byte("v")))

	dir := filepath.Join(root, "global", "Foo", "entries")
	require.NoError(t, os.Chmod(dir, 0o000))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o700) })

	_, err := s.Get("k")
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.NotErrorIs(t, err, domain.ErrIntegrity)
	assert.ErrorIs(t, s.Set("k2", []byte("v")), domain.ErrIO)
}

type recordingObserver struct {
	mu     sync.Mutex
	ops    []string
	errs   int
	opened int
	closed int
}

func (o *recordingObserver) ObserveOp(_ domain.Scope, op string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops = append(o.ops, op)
	if err != nil {
		o.errs++
	}
}

func (o *recordingObserver) StoreOpened(domain.Scope) { o.mu.Lock(); o.opened++; o.mu.Unlock() }
func (o *recordingObserver) StoreClosed(domain.Scope) { o.mu.Lock(); o.closed++; o.mu.Unlock() }

func TestObserver_SeesEveryOperation(t *testing.T) {
	root := t.TempDir()
	obs := &recordingObserver{}
	reg, err := store.NewRegistry(store.Options{
		Root:     root,
		Keys:     keyring.NewFileSource(filepath.Join(root, "master.key")),
		Observer: obs,
	})
	require.NoError(t, err)

	s, err := reg.SharedGlobal("Foo")
	require.NoError(t, err)
	require.NoError(t, s.Set("k", []byte("v")))
	_, _ = s.Get("k")
	_, _ = s.Get("")
	_ = s.Remove("k")
	_, _ = s.Keys()
	require.NoError(t, reg.Close())

	assert.Equal(t, []string{"set", "get", "get", "remove", "keys"}, obs.ops)
	assert.Equal(t, 1, obs.errs)
	assert.Equal(t, 1, obs.opened)
	assert.Equal(t, 1, obs.closed)
}
