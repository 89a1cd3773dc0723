package inspect

import (
	"strings"
	"sync"

	"github.com/pkg/errors"

	"sealkv/internal/domain"
)

// GlobalSuffix marks Global stores in labels.
const GlobalSuffix = " (global)"

// Pair is one key/value the inspector found.
type Pair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Inspector browses a registry by label.
type Inspector struct {
	reg domain.StoreRegistry

	mu      sync.Mutex
	history []Pair
}

// New returns an Inspector over reg.
func New(reg domain.StoreRegistry) *Inspector {
	return &Inspector{reg: reg}
}

// Label renders a store name for display.
func Label(scope domain.Scope, name domain.StoreName) string {
	if scope == domain.ScopeGlobal {
		return name.String() + GlobalSuffix
	}
	return name.String()
}

// Resolve maps a label back to the scope and name it was built from.
func Resolve(label string) (domain.Scope, domain.StoreName) {
	if name, ok := strings.CutSuffix(label, GlobalSuffix); ok {
		return domain.ScopeGlobal, domain.StoreName(name)
	}
	return domain.ScopeUser, domain.StoreName(label)
}

// Labels lists User stores followed by Global stores.
func (in *Inspector) Labels() ([]string, error) {
	users, err := in.reg.AllNames()
	if err != nil {
		return nil, errors.Wrap(err, "list user stores")
	}
	globals, err := in.reg.AllGlobalNames()
	if err != nil {
		return nil, errors.Wrap(err, "list global stores")
	}
	out := make([]string, 0, len(users)+len(globals))
	for _, n := range users {
		out = append(out, Label(domain.ScopeUser, n))
	}
	for _, n := range globals {
		out = append(out, Label(domain.ScopeGlobal, n))
	}
	return out, nil
}

// Store opens the store behind label.
func (in *Inspector) Store(label string) (domain.KeyValueStore, error) {
	scope, name := Resolve(label)
	return in.reg.Open(scope, name)
}

// Lookup reads key from the store behind label. A found pair is prepended to
// the history. With no stores at all the result is simply not found.
func (in *Inspector) Lookup(label, key string) (Pair, bool, error) {
	labels, err := in.Labels()
	if err != nil {
		return Pair{}, false, err
	}
	if len(labels) == 0 {
		return Pair{}, false, nil
	}

	s, err := in.Store(label)
	if err != nil {
		return Pair{}, false, err
	}
	got, err := s.Get(key)
	if err != nil {
		return Pair{}, false, errors.Wrapf(err, "get %q from %s", key, label)
	}
	v, ok := got.Get()
	if !ok {
		return Pair{}, false, nil
	}

	p := Pair{Key: key, Value: string(v)}
	in.mu.Lock()
	in.history = append([]Pair{p}, in.history...)
	in.mu.Unlock()
	return p, true, nil
}

// Dump returns every pair of the store behind label, ordered by key.
func (in *Inspector) Dump(label string) ([]Pair, error) {
	s, err := in.Store(label)
	if err != nil {
		return nil, err
	}
	keys, err := s.Keys()
	if err != nil {
		return nil, errors.Wrapf(err, "list keys of %s", label)
	}
	out := make([]Pair, 0, len(keys))
	for _, k := range keys {
		got, err := s.Get(k)
		if err != nil {
			return nil, errors.Wrapf(err, "get %q from %s", k, label)
		}
		if v, ok := got.Get(); ok { // skip keys removed meanwhile
			out = append(out, Pair{Key: k, Value: string(v)})
		}
	}
	return out, nil
}

// History returns found pairs, newest first.
func (in *Inspector) History() []Pair {
	in.mu.Lock()
	defer in.mu.Unlock()
	return append([]Pair(nil), in.history...)
}
