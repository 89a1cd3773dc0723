package types

// StoreName is the name of a key-value store within its scope.
type StoreName string

// String returns the string form of the store name.
func (n StoreName) String() string { return string(n) }

// UserID identifies the signed-in user owning User-scoped stores.
type UserID string

// String returns the string form of the user id.
func (u UserID) String() string { return string(u) }

// KeyID identifies one generation of a store's data key.
type KeyID string

// String returns the string form of the key id.
func (id KeyID) String() string { return string(id) }

// Ref identifies a store by scope and name. User "foo" and Global "foo" are
// different refs.
type Ref struct {
	Scope Scope
	Name  StoreName
}

// String renders the ref as scope/name.
func (r Ref) String() string { return r.Scope.String() + "/" + r.Name.String() }
