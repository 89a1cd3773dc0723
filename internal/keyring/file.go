package keyring

import (
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"sealkv/internal/crypto"
	"sealkv/internal/domain"
	"sealkv/internal/fsutil"
)

// keyBlob is the on-disk form of a random master key.
type keyBlob struct {
	V   int    `json:"v"`
	ID  string `json:"id"`
	Key []byte `json:"key"`
}

// FileSource keeps a random master key in a single file.
type FileSource struct {
	path string

	mu  sync.Mutex
	key []byte
	id  string
}

// NewFileSource returns a FileSource for path. Nothing is read until MasterKey.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// MasterKey loads the key, creating it on first use.
func (s *FileSource) MasterKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}

	var b keyBlob
	existed, err := fsutil.ReadJSON(s.path, &b)
	if err != nil {
		return nil, keyUnavailable(err, s.path)
	}
	if existed {
		if b.V > formatVersion {
			return nil, errors.Wrapf(domain.ErrKeyUnavailable, "unsupported master key version %d", b.V)
		}
		if len(b.Key) != crypto.KeyBytes {
			return nil, errors.Wrapf(domain.ErrKeyUnavailable, "master key in %s is %d bytes", s.path, len(b.Key))
		}
		s.key, s.id = b.Key, b.ID
		return s.key, nil
	}

	key, err := crypto.NewKey()
	if err != nil {
		return nil, keyUnavailable(err, s.path)
	}
	b = keyBlob{V: formatVersion, ID: uuid.NewString(), Key: key}
	if err := fsutil.MkdirAll(filepath.Dir(s.path)); err != nil {
		return nil, err
	}
	if err := fsutil.WriteJSON(s.path, b, 0o600); err != nil {
		return nil, err
	}
	s.key, s.id = key, b.ID
	return s.key, nil
}

// ID returns the identifier of the loaded key, or "" before MasterKey succeeds.
func (s *FileSource) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// keyUnavailable keeps I/O failures classified as I/O and marks everything
// else as missing key material.
func keyUnavailable(err error, path string) error {
	if errors.Is(err, domain.ErrIO) {
		return err
	}
	return errors.Wrapf(domain.ErrKeyUnavailable, "%s: %v", path, err)
}

var _ domain.MasterKeySource = (*FileSource)(nil)
