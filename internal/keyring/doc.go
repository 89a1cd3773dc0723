// Package keyring provides the install-wide master key that wraps every
// store's data key.
//
// Two sources exist:
//
//   - FileSource generates 32 random bytes on first use and keeps them in a
//     0600 file. This is the default and mirrors an app-install key.
//   - PassphraseSource derives the key from a passphrase with scrypt. Only the
//     salt, the cost parameters and a sealed verifier are written to disk, so a
//     wrong passphrase is detected before any store is touched.
//
// Both sources load lazily, cache the key, and report failures as
// domain.ErrKeyUnavailable.
package keyring
