package keyring

import (
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"sealkv/internal/crypto"
	"sealkv/internal/domain"
	"sealkv/internal/fsutil"
)

var (
	verifierPlain = []byte("sealkv master key verifier")
	verifierAD    = []byte("sealkv/keyring/v1")
)

// passphraseBlob holds everything needed to rederive and check the key.
type passphraseBlob struct {
	V int `json:"v"`
	crypto.ScryptParams
	Salt     []byte `json:"salt"`
	Nonce    []byte `json:"nonce"`
	Verifier []byte `json:"verifier"`
}

// PassphraseSource derives the master key from a passphrase.
type PassphraseSource struct {
	path       string
	passphrase string
	params     crypto.ScryptParams

	mu  sync.Mutex
	key []byte
}

// NewPassphraseSource returns a PassphraseSource that persists its salt at path.
func NewPassphraseSource(path, passphrase string) *PassphraseSource {
	return &PassphraseSource{path: path, passphrase: passphrase, params: crypto.DefaultScryptParams()}
}

// WithParams overrides the scrypt cost used when the salt file is first created.
func (s *PassphraseSource) WithParams(p crypto.ScryptParams) *PassphraseSource {
	s.params = p
	return s
}

// MasterKey derives and verifies the key, initialising the salt file on first use.
func (s *PassphraseSource) MasterKey() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		return s.key, nil
	}
	if s.passphrase == "" {
		return nil, errors.Wrap(domain.ErrKeyUnavailable, "passphrase required")
	}

	var b passphraseBlob
	existed, err := fsutil.ReadJSON(s.path, &b)
	if err != nil {
		return nil, keyUnavailable(err, s.path)
	}
	if existed {
		key, err := s.unlock(b)
		if err != nil {
			return nil, err
		}
		s.key = key
		return s.key, nil
	}

	key, b, err := s.initialise()
	if err != nil {
		return nil, err
	}
	if err := fsutil.MkdirAll(filepath.Dir(s.path)); err != nil {
		return nil, err
	}
	if err := fsutil.WriteJSON(s.path, b, 0o600); err != nil {
		return nil, err
	}
	s.key = key
	return s.key, nil
}

func (s *PassphraseSource) unlock(b passphraseBlob) ([]byte, error) {
	if b.V > formatVersion {
		return nil, errors.Wrapf(domain.ErrKeyUnavailable, "unsupported keyring version %d", b.V)
	}
	key, err := crypto.DeriveKey(s.passphrase, b.Salt, b.ScryptParams)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrKeyUnavailable, "derive: %v", err)
	}
	if _, err := crypto.Open(key, b.Nonce, b.Verifier, verifierAD); err != nil {
		crypto.Wipe(key)
		return nil, errors.Wrap(domain.ErrKeyUnavailable, "wrong passphrase or corrupted keyring")
	}
	return key, nil
}

func (s *PassphraseSource) initialise() ([]byte, passphraseBlob, error) {
	salt, err := crypto.NewSalt()
	if err != nil {
		return nil, passphraseBlob{}, errors.Wrapf(domain.ErrKeyUnavailable, "salt: %v", err)
	}
	key, err := crypto.DeriveKey(s.passphrase, salt, s.params)
	if err != nil {
		return nil, passphraseBlob{}, errors.Wrapf(domain.ErrKeyUnavailable, "derive: %v", err)
	}
	nonce, verifier, err := crypto.Seal(key, verifierPlain, verifierAD)
	if err != nil {
		crypto.Wipe(key)
		return nil, passphraseBlob{}, errors.Wrapf(domain.ErrKeyUnavailable, "seal verifier: %v", err)
	}
	return key, passphraseBlob{
		V:            formatVersion,
		ScryptParams: s.params,
		Salt:         salt,
		Nonce:        nonce,
		Verifier:     verifier,
	}, nil
}

var _ domain.MasterKeySource = (*PassphraseSource)(nil)
