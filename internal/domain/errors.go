package domain

import "errors"

var (
	// ErrInvalidName is returned for empty or malformed store names and user ids.
	ErrInvalidName = errors.New("invalid store name")
	// ErrInvalidKey is returned for empty or oversized entry keys.
	ErrInvalidKey = errors.New("invalid key")
	// ErrValueTooLarge is returned when a value exceeds the store's size limit.
	ErrValueTooLarge = errors.New("value too large")
	// ErrIntegrity is returned when ciphertext fails authentication or does not
	// belong where it was found. It is never returned for an absent key.
	ErrIntegrity = errors.New("integrity check failed")
	// ErrIO classifies filesystem failures; see IOError.
	ErrIO = errors.New("i/o failure")
	// ErrKeyUnavailable is returned when a store's key material cannot be loaded.
	ErrKeyUnavailable = errors.New("encryption key unavailable")
	// ErrNoUser is returned for User-scoped access while nobody is signed in.
	ErrNoUser = errors.New("no user signed in")
	// ErrClosed is returned by a store handle after it was closed or removed.
	ErrClosed = errors.New("store closed")
)

// IOError records a failed filesystem operation.
//
// errors.Is(err, ErrIO) holds for every IOError, and the wrapped OS error stays
// reachable, so errors.Is(err, fs.ErrPermission) works too.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string { return e.Op + " " + e.Path + ": " + e.Err.Error() }

func (e *IOError) Unwrap() error { return e.Err }

// Is matches ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// NewIOError wraps err unless it is nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}
