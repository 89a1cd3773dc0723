package types

import "time"

// Entry is one key/value pair of a store.
type Entry struct {
	Key   string `json:"k"`
	Value []byte `json:"v"`
}

// StoreMeta is persisted next to a store's entries.
type StoreMeta struct {
	Version    int       `json:"version"`
	Scope      string    `json:"scope"`
	Name       StoreName `json:"name"`
	KeyID      KeyID     `json:"key_id"`
	CreatedUTC time.Time `json:"created_utc"`
}
