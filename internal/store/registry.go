package store

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"sealkv/internal/domain"
	"sealkv/internal/fsutil"
)

const (
	globalDir = "global"
	usersDir  = "users"
)

// Options configures a Registry.
type Options struct {
	Root          string                 // base directory, e.g. $HOME/.sealkv
	Keys          domain.MasterKeySource // wraps every store's data key
	User          domain.UserID          // signed-in user; may be empty
	MaxValueBytes int                    // 0 means DefaultMaxValueBytes
	Observer      domain.Observer        // optional
	Logger        *zerolog.Logger        // optional; defaults to a no-op logger
}

type liveKey struct {
	ref   domain.Ref
	owner domain.UserID
}

// Registry hands out one live FileKVStore per (scope, name) and tracks the
// signed-in user whose User-scoped stores it serves.
type Registry struct {
	root     string
	keys     domain.MasterKeySource
	maxValue int
	obs      domain.Observer
	log      zerolog.Logger

	// mu is held across open-or-create so concurrent first accesses agree on
	// one instance and one data key.
	mu   sync.Mutex
	user domain.UserID
	live map[liveKey]*FileKVStore
}

// NewRegistry returns a Registry rooted at opts.Root.
func NewRegistry(opts Options) (*Registry, error) {
	if opts.Root == "" {
		return nil, errors.New("registry root required")
	}
	if opts.Keys == nil {
		return nil, errors.Wrap(domain.ErrKeyUnavailable, "no master key source")
	}
	if opts.User != "" {
		if err := domain.ValidateUserID(opts.User); err != nil {
			return nil, err
		}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Registry{
		root:     opts.Root,
		keys:     opts.Keys,
		maxValue: opts.MaxValueBytes,
		obs:      opts.Observer,
		log:      logger,
		user:     opts.User,
		live:     make(map[liveKey]*FileKVStore),
	}, nil
}

// Shared returns the User-scoped store name of the signed-in user.
func (r *Registry) Shared(name domain.StoreName) (domain.KeyValueStore, error) {
	return r.Open(domain.ScopeUser, name)
}

// SharedGlobal returns the Global-scoped store name.
func (r *Registry) SharedGlobal(name domain.StoreName) (domain.KeyValueStore, error) {
	return r.Open(domain.ScopeGlobal, name)
}

// Open returns the live store for (scope, name), opening or creating it on
// first access.
func (r *Registry) Open(scope domain.Scope, name domain.StoreName) (domain.KeyValueStore, error) {
	s, err := r.OpenFile(scope, name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// OpenFile is Open returning the concrete store.
func (r *Registry) OpenFile(scope domain.Scope, name domain.StoreName) (*FileKVStore, error) {
	if !scope.Valid() {
		return nil, errors.Wrapf(domain.ErrInvalidName, "unknown scope %s", scope)
	}
	if err := domain.ValidateStoreName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, err := r.ownerLocked(scope)
	if err != nil {
		return nil, err
	}
	ref := domain.Ref{Scope: scope, Name: name}
	lk := liveKey{ref: ref, owner: owner}
	if s, ok := r.live[lk]; ok {
		if !s.isClosed() {
			return s, nil
		}
		// A caller closed its handle; serve a fresh one.
		delete(r.live, lk)
	}
	if err := r.caseConflictLocked(scope, owner, name); err != nil {
		return nil, err
	}

	s, err := openFileStore(storeConfig{
		ref:      ref,
		owner:    owner,
		dir:      r.storeDir(scope, owner, name),
		keys:     r.keys,
		maxValue: r.maxValue,
		obs:      r.obs,
		log:      r.log,
	})
	if err != nil {
		return nil, err
	}
	r.live[lk] = s
	return s, nil
}

// AllNames lists the signed-in user's User-scoped store names, sorted. With
// nobody signed in the list is empty.
func (r *Registry) AllNames() ([]domain.StoreName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.user == "" {
		return nil, nil
	}
	return r.namesLocked(domain.ScopeUser, r.user)
}

// AllGlobalNames lists Global-scoped store names, sorted.
func (r *Registry) AllGlobalNames() ([]domain.StoreName, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.namesLocked(domain.ScopeGlobal, "")
}

// Remove closes and deletes the store (scope, name). A missing store is a no-op.
func (r *Registry) Remove(scope domain.Scope, name domain.StoreName) error {
	if !scope.Valid() {
		return errors.Wrapf(domain.ErrInvalidName, "unknown scope %s", scope)
	}
	if err := domain.ValidateStoreName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	owner, err := r.ownerLocked(scope)
	if err != nil {
		return err
	}
	lk := liveKey{ref: domain.Ref{Scope: scope, Name: name}, owner: owner}
	if s, ok := r.live[lk]; ok {
		delete(r.live, lk)
		return s.destroy()
	}
	return fsutil.RemoveAll(r.storeDir(scope, owner, name))
}

// User returns the signed-in user, or "".
func (r *Registry) User() domain.UserID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.user
}

// SwitchUser closes the previous user's live stores, keeping them on disk,
// and serves user's stores from now on.
func (r *Registry) SwitchUser(user domain.UserID) error {
	if err := domain.ValidateUserID(user); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if user == r.user {
		return nil
	}
	r.closeUserLocked(r.user)
	r.log.Debug().Str("from", r.user.String()).Str("to", user.String()).Msg("switched user")
	r.user = user
	return nil
}

// Logout deletes every User-scoped store of the signed-in user and signs them
// out. Global stores are untouched.
func (r *Registry) Logout() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.user == "" {
		return nil
	}
	user := r.user
	r.closeUserLocked(user)
	if err := fsutil.RemoveAll(filepath.Join(r.root, usersDir, user.String())); err != nil {
		return err
	}
	r.user = ""
	r.log.Debug().Str("user", user.String()).Msg("logged out, user stores removed")
	return nil
}

// Close closes every live store.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for lk, s := range r.live {
		_ = s.Close()
		delete(r.live, lk)
	}
	return nil
}

func (r *Registry) closeUserLocked(user domain.UserID) {
	for lk, s := range r.live {
		if lk.ref.Scope == domain.ScopeUser && lk.owner == user {
			_ = s.Close()
			delete(r.live, lk)
		}
	}
}

func (r *Registry) ownerLocked(scope domain.Scope) (domain.UserID, error) {
	if scope == domain.ScopeGlobal {
		return "", nil
	}
	if r.user == "" {
		return "", domain.ErrNoUser
	}
	return r.user, nil
}

// caseConflictLocked rejects name when a store whose name differs only in
// case is live or on disk. Case-insensitive filesystems would map both to one
// directory.
func (r *Registry) caseConflictLocked(scope domain.Scope, owner domain.UserID, name domain.StoreName) error {
	for lk := range r.live {
		if lk.ref.Scope == scope && lk.owner == owner && lk.ref.Name != name && strings.EqualFold(lk.ref.Name.String(), name.String()) {
			return errors.Wrapf(domain.ErrInvalidName, "%q conflicts with store %q", name, lk.ref.Name)
		}
	}
	list, err := fsutil.ListDir(r.scopeDir(scope, owner))
	if err != nil {
		return err
	}
	for _, e := range list {
		if e.IsDir() && e.Name() != name.String() && strings.EqualFold(e.Name(), name.String()) {
			return errors.Wrapf(domain.ErrInvalidName, "%q conflicts with store %q", name, e.Name())
		}
	}
	return nil
}

func (r *Registry) scopeDir(scope domain.Scope, owner domain.UserID) string {
	if scope == domain.ScopeGlobal {
		return filepath.Join(r.root, globalDir)
	}
	return filepath.Join(r.root, usersDir, owner.String())
}

func (r *Registry) storeDir(scope domain.Scope, owner domain.UserID, name domain.StoreName) string {
	return filepath.Join(r.scopeDir(scope, owner), name.String())
}

// namesLocked unions stores found on disk with live ones. A directory counts
// as a store once its key file is committed.
func (r *Registry) namesLocked(scope domain.Scope, owner domain.UserID) ([]domain.StoreName, error) {
	dir := r.scopeDir(scope, owner)
	list, err := fsutil.ListDir(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[domain.StoreName]struct{}, len(list))
	for _, e := range list {
		if !e.IsDir() {
			continue
		}
		name := domain.StoreName(e.Name())
		if domain.ValidateStoreName(name) != nil {
			continue
		}
		ok, err := fsutil.Exists(filepath.Join(dir, e.Name(), keyFilename))
		if err != nil {
			return nil, err
		}
		if ok {
			seen[name] = struct{}{}
		}
	}
	for lk := range r.live {
		if lk.ref.Scope == scope && lk.owner == owner {
			seen[lk.ref.Name] = struct{}{}
		}
	}

	names := make([]domain.StoreName, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names, nil
}

// Compile-time assertion that Registry implements domain.StoreRegistry.
var _ domain.StoreRegistry = (*Registry)(nil)
