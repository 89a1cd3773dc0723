package store

import (
	"encoding/json"

	"github.com/pkg/errors"

	"sealkv/internal/crypto"
	"sealkv/internal/domain"
)

const (
	// The current supported version of the encrypted blob format stored on disk.
	envelopeVersion = 1
)

// envelope is the on‑disk JSON structure of every sealed file.
type envelope struct {
	V     int          `json:"v"`
	KID   domain.KeyID `json:"kid"`
	Nonce []byte       `json:"nonce"`
	CT    []byte       `json:"ct"`
}

// seal encrypts plaintext under key and encodes the envelope.
func seal(key []byte, kid domain.KeyID, plaintext, ad []byte) ([]byte, error) {
	nonce, ct, err := crypto.Seal(key, plaintext, ad)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{V: envelopeVersion, KID: kid, Nonce: nonce, CT: ct})
}

// unseal decodes and decrypts an envelope. kid, when non-empty, must match the
// envelope's key id. Every failure wraps domain.ErrIntegrity.
func unseal(key []byte, kid domain.KeyID, blob, ad []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(blob, &env); err != nil {
		return nil, errors.Wrapf(domain.ErrIntegrity, "malformed envelope: %v", err)
	}
	if env.V < 1 || env.V > envelopeVersion {
		return nil, errors.Wrapf(domain.ErrIntegrity, "unsupported envelope version %d", env.V)
	}
	if kid != "" && env.KID != kid {
		return nil, errors.Wrapf(domain.ErrIntegrity, "sealed with key %s, store key is %s", env.KID, kid)
	}
	pt, err := crypto.Open(key, env.Nonce, env.CT, ad)
	if err != nil {
		return nil, errors.Wrap(domain.ErrIntegrity, err.Error())
	}
	return pt, nil
}

// entryAD binds an entry file to the exact place it was written.
func entryAD(ref domain.Ref, owner domain.UserID, file string) []byte {
	return joinAD("sealkv/entry/v1", ref.Scope.String(), owner.String(), ref.Name.String(), file)
}

// dataKeyAD binds a wrapped data key to its store.
func dataKeyAD(ref domain.Ref, owner domain.UserID, kid domain.KeyID) []byte {
	return joinAD("sealkv/datakey/v1", ref.Scope.String(), owner.String(), ref.Name.String(), kid.String())
}

func joinAD(parts ...string) []byte {
	n := 0
	for _, p := range parts {
		n += len(p) + 1
	}
	b := make([]byte, 0, n)
	for _, p := range parts {
		b = append(b, p...)
		b = append(b, 0)
	}
	return b
}
