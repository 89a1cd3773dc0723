package keyring

import (
	"path/filepath"

	"github.com/pkg/errors"

	"sealkv/internal/domain"
)

// Mode selects a master key source.
type Mode string

const (
	ModeFile       Mode = "file"
	ModePassphrase Mode = "passphrase"
)

const (
	keyFile        = "master.key"
	passphraseFile = "master.json"

	formatVersion = 1
)

// New returns the source for mode rooted at dir.
func New(mode Mode, dir, passphrase string) (domain.MasterKeySource, error) {
	switch mode {
	case ModeFile, "":
		return NewFileSource(filepath.Join(dir, keyFile)), nil
	case ModePassphrase:
		return NewPassphraseSource(filepath.Join(dir, passphraseFile), passphrase), nil
	default:
		return nil, errors.Errorf("unknown keyring mode %q", mode)
	}
}
