package interfaces

import domaintypes "sealkv/internal/domain/types"

// KeyValueStore is an encrypted, persistent mapping from string keys to byte values.
type KeyValueStore interface {
	Ref() domaintypes.Ref

	// Get returns NotFound for an absent key; errors are reserved for I/O and
	// integrity failures.
	Get(key string) (domaintypes.Lookup, error)
	// Set overwrites any prior value for key.
	Set(key string, value []byte) error
	// Remove deletes key; removing an absent key is a no-op.
	Remove(key string) error

	Keys() ([]string, error)
	Count() (int, error)
	RemoveAll() error
}

// StoreRegistry hands out one live KeyValueStore per (scope, name).
type StoreRegistry interface {
	Open(scope domaintypes.Scope, name domaintypes.StoreName) (KeyValueStore, error)
	Shared(name domaintypes.StoreName) (KeyValueStore, error)
	SharedGlobal(name domaintypes.StoreName) (KeyValueStore, error)

	AllNames() ([]domaintypes.StoreName, error)
	AllGlobalNames() ([]domaintypes.StoreName, error)

	Remove(scope domaintypes.Scope, name domaintypes.StoreName) error
}
