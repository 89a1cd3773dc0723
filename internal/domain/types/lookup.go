package types

// Lookup is the outcome of reading a key: either Found with a value or NotFound.
//
// The zero Lookup is NotFound.
type Lookup struct {
	value []byte
	found bool
}

// Found wraps a present value.
func Found(value []byte) Lookup { return Lookup{value: value, found: true} }

// NotFound is the outcome for an absent key.
func NotFound() Lookup { return Lookup{} }

// Get returns the value and whether the key was present.
func (l Lookup) Get() ([]byte, bool) { return l.value, l.found }

// IsFound reports whether the key was present.
func (l Lookup) IsFound() bool { return l.found }

// String returns the value as a string, or "" when not found.
func (l Lookup) String() string { return string(l.value) }
