// Package crypto exposes the minimal primitives used by sealkv.
//
// Contents
//
//   - Authenticated sealing with XChaCha20-Poly1305 and random nonces (Seal,
//     Open)
//   - Random 256-bit key generation (NewKey)
//   - scrypt key derivation for passphrase-protected master keys (DeriveKey)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// Open returns ErrOpen for every authentication failure so callers cannot
// leak which part of a sealed blob was wrong.
package crypto
