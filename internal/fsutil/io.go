package fsutil

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"sealkv/internal/domain"
)

// TempMarker is embedded in the names of in-flight temp files.
const TempMarker = ".tmp-"

// ReadFile reads the file at path; a missing file yields (nil, nil).
func ReadFile(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewIOError("read", path, err)
	}
	return b, nil
}

// WriteFileAtomic writes b via a temp file in the same directory, syncs it,
// renames it over path and syncs the directory.
func WriteFileAtomic(path string, b []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	f, err := os.CreateTemp(dir, base+TempMarker+"*")
	if err != nil {
		return domain.NewIOError("create temp", path, err)
	}
	tmp := f.Name()

	// Best-effort cleanup if anything fails before rename.
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp)
		}
	}()

	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return domain.NewIOError("write", tmp, err)
	}
	if err := f.Chmod(mode); err != nil {
		_ = f.Close()
		return domain.NewIOError("chmod", tmp, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return domain.NewIOError("sync", tmp, err)
	}
	if err := f.Close(); err != nil {
		return domain.NewIOError("close", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return domain.NewIOError("rename", path, err)
	}
	renamed = true
	return SyncDir(dir)
}

// SyncDir flushes directory metadata so a completed rename survives a crash.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return domain.NewIOError("open dir", dir, err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		return domain.NewIOError("sync dir", dir, err)
	}
	return nil
}

// Remove deletes path; a missing file is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return domain.NewIOError("remove", path, err)
}

// RemoveAll deletes the tree at path.
func RemoveAll(path string) error {
	return domain.NewIOError("remove tree", path, os.RemoveAll(path))
}

// MkdirAll creates dir with mode 0700 and any missing parents.
func MkdirAll(dir string) error {
	return domain.NewIOError("mkdir", dir, os.MkdirAll(dir, 0o700))
}

// Exists reports whether path exists.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, domain.NewIOError("stat", path, err)
}

// ListDir returns the entries of dir; a missing dir yields no entries.
func ListDir(dir string) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.NewIOError("list", dir, err)
	}
	return entries, nil
}

// IsTemp reports whether name belongs to an unfinished WriteFileAtomic.
func IsTemp(name string) bool { return strings.Contains(name, TempMarker) }

// RemoveTemps deletes leftover temp files in dir and reports how many it removed.
func RemoveTemps(dir string) (int, error) {
	entries, err := ListDir(dir)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !IsTemp(e.Name()) {
			continue
		}
		if err := Remove(filepath.Join(dir, e.Name())); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
