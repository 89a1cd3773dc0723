package types

import "fmt"

// Scope says whether a store belongs to the signed-in user or to the device.
type Scope uint8

const (
	// ScopeUser stores are tied to the current user and deleted on logout.
	ScopeUser Scope = iota
	// ScopeGlobal stores are shared by every user of the install.
	ScopeGlobal
)

// String returns the string form of the scope.
func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeGlobal:
		return "global"
	default:
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
}

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool { return s == ScopeUser || s == ScopeGlobal }

// ParseScope converts "user" or "global" into a Scope.
func ParseScope(v string) (Scope, error) {
	switch v {
	case "user":
		return ScopeUser, nil
	case "global":
		return ScopeGlobal, nil
	}
	return 0, fmt.Errorf("unknown scope %q", v)
}
