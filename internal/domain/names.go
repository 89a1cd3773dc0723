package domain

import (
	"unicode/utf8"

	"github.com/pkg/errors"
)

const (
	// MaxStoreNameLength caps store names and user ids so they stay safe
	// directory names on every platform.
	MaxStoreNameLength = 96
	// MaxKeyLength caps entry keys in bytes.
	MaxKeyLength = 1024
)

// ValidateStoreName checks that name is 1..MaxStoreNameLength characters of
// [A-Za-z0-9_-].
func ValidateStoreName(name StoreName) error {
	if !validComponent(string(name)) {
		return errors.Wrapf(ErrInvalidName, "%q", string(name))
	}
	return nil
}

// ValidateUserID applies the store name rules to a user id.
func ValidateUserID(user UserID) error {
	if !validComponent(string(user)) {
		return errors.Wrapf(ErrInvalidName, "user %q", string(user))
	}
	return nil
}

// ValidateKey checks that key is non-empty valid UTF-8 of at most
// MaxKeyLength bytes.
func ValidateKey(key string) error {
	if key == "" {
		return errors.Wrap(ErrInvalidKey, "empty key")
	}
	if len(key) > MaxKeyLength {
		return errors.Wrapf(ErrInvalidKey, "key is %d bytes, limit %d", len(key), MaxKeyLength)
	}
	if !utf8.ValidString(key) {
		return errors.Wrapf(ErrInvalidKey, "key %q is not valid UTF-8", key)
	}
	return nil
}

func validComponent(s string) bool {
	if s == "" || len(s) > MaxStoreNameLength {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
