package interfaces

// MasterKeySource yields the install-wide key that wraps every store's data key.
//
// The returned slice is owned by the source; callers must not modify or wipe it.
type MasterKeySource interface {
	MasterKey() ([]byte, error)
}
