package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"sealkv/internal/crypto"
	"sealkv/internal/domain"
	"sealkv/internal/fsutil"
)

const (
	keyFilename  = "key.json"
	metaFilename = "meta.json"
	entriesDir   = "entries"
	entryExt     = ".entry"

	// storeFormatVersion is written to meta.json; newer stores are refused.
	storeFormatVersion = 1

	// DefaultMaxValueBytes applies when no limit is configured.
	DefaultMaxValueBytes = 16 << 20
)

// storeConfig carries everything needed to open one store directory.
type storeConfig struct {
	ref      domain.Ref
	owner    domain.UserID
	dir      string
	keys     domain.MasterKeySource
	maxValue int
	obs      domain.Observer
	log      zerolog.Logger
}

// FileKVStore is one encrypted key-value store backed by a directory.
type FileKVStore struct {
	ref      domain.Ref
	owner    domain.UserID
	dir      string
	entries  string
	maxValue int
	obs      domain.Observer
	log      zerolog.Logger

	// mu is held shared by entry operations and exclusively by RemoveAll and Close.
	mu     sync.RWMutex
	closed bool
	key    []byte
	keyID  domain.KeyID
	locks  keyLocks
}

// openFileStore opens the store in cfg.dir, creating the directory and key
// material if the store is new.
func openFileStore(cfg storeConfig) (*FileKVStore, error) {
	if cfg.maxValue <= 0 {
		cfg.maxValue = DefaultMaxValueBytes
	}
	s := &FileKVStore{
		ref:      cfg.ref,
		owner:    cfg.owner,
		dir:      cfg.dir,
		entries:  filepath.Join(cfg.dir, entriesDir),
		maxValue: cfg.maxValue,
		obs:      cfg.obs,
		log:      cfg.log.With().Str("store", cfg.ref.String()).Logger(),
	}

	master, err := cfg.keys.MasterKey()
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", cfg.ref)
	}
	if err := fsutil.MkdirAll(s.entries); err != nil {
		return nil, err
	}
	if err := s.loadOrCreateKey(master); err != nil {
		return nil, err
	}
	if err := s.checkMeta(); err != nil {
		crypto.Wipe(s.key)
		return nil, err
	}
	if n, err := fsutil.RemoveTemps(s.entries); err != nil {
		s.log.Warn().Err(err).Msg("could not clean temp files")
	} else if n > 0 {
		s.log.Debug().Int("removed", n).Msg("cleaned interrupted writes")
	}
	if _, err := fsutil.RemoveTemps(s.dir); err != nil {
		s.log.Warn().Err(err).Msg("could not clean temp files")
	}
	if s.obs != nil {
		s.obs.StoreOpened(s.ref.Scope)
	}
	return s, nil
}

// loadOrCreateKey unwraps key.json, or creates it for a store without entries.
func (s *FileKVStore) loadOrCreateKey(master []byte) error {
	path := filepath.Join(s.dir, keyFilename)

	blob, err := fsutil.ReadFile(path)
	if err != nil {
		return err
	}
	if blob != nil {
		var env envelope
		if err := json.Unmarshal(blob, &env); err != nil {
			return errors.Wrapf(domain.ErrKeyUnavailable, "%s: malformed key file", s.ref)
		}
		key, err := unseal(master, "", blob, dataKeyAD(s.ref, s.owner, env.KID))
		if err != nil || len(key) != crypto.KeyBytes {
			return errors.Wrapf(domain.ErrKeyUnavailable, "%s: cannot unwrap data key", s.ref)
		}
		s.key, s.keyID = key, env.KID
		s.log.Debug().Str("key_id", s.keyID.String()).Msg("opened store")
		return nil
	}

	names, err := s.entryFiles()
	if err != nil {
		return err
	}
	if len(names) > 0 {
		return errors.Wrapf(domain.ErrKeyUnavailable, "%s: key file missing for %d existing entries", s.ref, len(names))
	}

	key, err := crypto.NewKey()
	if err != nil {
		return errors.Wrapf(domain.ErrKeyUnavailable, "%s: generate data key: %v", s.ref, err)
	}
	kid := domain.KeyID(uuid.NewString())
	wrapped, err := seal(master, kid, key, dataKeyAD(s.ref, s.owner, kid))
	if err != nil {
		crypto.Wipe(key)
		return errors.Wrapf(domain.ErrKeyUnavailable, "%s: wrap data key: %v", s.ref, err)
	}
	if err := fsutil.WriteFileAtomic(path, wrapped, 0o600); err != nil {
		crypto.Wipe(key)
		return err
	}
	s.key, s.keyID = key, kid
	s.log.Debug().Str("key_id", s.keyID.String()).Msg("created store")
	return nil
}

// checkMeta refuses stores written by a newer format and rewrites a missing
// or stale meta.json.
func (s *FileKVStore) checkMeta() error {
	path := filepath.Join(s.dir, metaFilename)
	var meta domain.StoreMeta
	existed, err := fsutil.ReadJSON(path, &meta)
	if err != nil && !errors.Is(err, domain.ErrIO) {
		existed = false
	} else if err != nil {
		return err
	}
	if existed && meta.Version > storeFormatVersion {
		return errors.Errorf("%s: unsupported store format %d", s.ref, meta.Version)
	}
	if existed && meta.KeyID == s.keyID {
		return nil
	}
	created := meta.CreatedUTC
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return fsutil.WriteJSON(path, domain.StoreMeta{
		Version:    storeFormatVersion,
		Scope:      s.ref.Scope.String(),
		Name:       s.ref.Name,
		KeyID:      s.keyID,
		CreatedUTC: created,
	}, 0o600)
}

// Ref returns the store's scope and name.
func (s *FileKVStore) Ref() domain.Ref { return s.ref }

// Name returns the store's name.
func (s *FileKVStore) Name() domain.StoreName { return s.ref.Name }

// Scope returns the store's scope.
func (s *FileKVStore) Scope() domain.Scope { return s.ref.Scope }

// KeyID returns the id of the data key the store seals entries with.
func (s *FileKVStore) KeyID() domain.KeyID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keyID
}

// Get decrypts and returns the value for key, or NotFound.
func (s *FileKVStore) Get(key string) (lookup domain.Lookup, err error) {
	defer s.observe("get", time.Now(), &err)

	if err = domain.ValidateKey(key); err != nil {
		return domain.NotFound(), err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return domain.NotFound(), s.closedErr()
	}

	unlock := s.locks.rlock(key)
	defer unlock()

	file := entryFileName(key)
	blob, err := fsutil.ReadFile(filepath.Join(s.entries, file))
	if err != nil {
		return domain.NotFound(), err
	}
	if blob == nil {
		return domain.NotFound(), nil
	}
	entry, err := s.openEntry(file, blob)
	if err != nil {
		return domain.NotFound(), err
	}
	if entry.Key != key {
		err = s.integrityFailure(file, errors.Wrap(domain.ErrIntegrity, "entry holds a different key"))
		return domain.NotFound(), err
	}
	return domain.Found(entry.Value), nil
}

// Set encrypts and persists value under key, replacing any prior value.
func (s *FileKVStore) Set(key string, value []byte) (err error) {
	defer s.observe("set", time.Now(), &err)

	if err = domain.ValidateKey(key); err != nil {
		return err
	}
	if len(value) > s.maxValue {
		return errors.Wrapf(domain.ErrValueTooLarge, "%d bytes, limit %d", len(value), s.maxValue)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return s.closedErr()
	}

	unlock := s.locks.lock(key)
	defer unlock()

	file := entryFileName(key)
	raw, err := json.Marshal(domain.Entry{Key: key, Value: value})
	if err != nil {
		return errors.Wrap(err, "encode entry")
	}
	blob, err := seal(s.key, s.keyID, raw, entryAD(s.ref, s.owner, file))
	crypto.Wipe(raw)
	if err != nil {
		return errors.Wrap(err, "seal entry")
	}
	return fsutil.WriteFileAtomic(filepath.Join(s.entries, file), blob, 0o600)
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *FileKVStore) Remove(key string) (err error) {
	defer s.observe("remove", time.Now(), &err)

	if err = domain.ValidateKey(key); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return s.closedErr()
	}

	unlock := s.locks.lock(key)
	defer unlock()

	path := filepath.Join(s.entries, entryFileName(key))
	existed, err := fsutil.Exists(path)
	if err != nil || !existed {
		return err
	}
	if err := fsutil.Remove(path); err != nil {
		return err
	}
	return fsutil.SyncDir(s.entries)
}

// Keys returns every key in the store, sorted.
func (s *FileKVStore) Keys() (keys []string, err error) {
	defer s.observe("keys", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, s.closedErr()
	}

	files, err := s.entryFiles()
	if err != nil {
		return nil, err
	}
	keys = make([]string, 0, len(files))
	for _, file := range files {
		blob, err := fsutil.ReadFile(filepath.Join(s.entries, file))
		if err != nil {
			return nil, err
		}
		if blob == nil { // removed since listing
			continue
		}
		entry, err := s.openEntry(file, blob)
		if err != nil {
			return nil, err
		}
		if entryFileName(entry.Key) != file {
			return nil, s.integrityFailure(file, errors.Wrap(domain.ErrIntegrity, "entry file name does not match its key"))
		}
		keys = append(keys, entry.Key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Count returns the number of entries without decrypting them.
func (s *FileKVStore) Count() (n int, err error) {
	defer s.observe("count", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, s.closedErr()
	}
	files, err := s.entryFiles()
	return len(files), err
}

// RemoveAll deletes every entry but keeps the store and its key.
func (s *FileKVStore) RemoveAll() (err error) {
	defer s.observe("remove_all", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.closedErr()
	}
	files, err := s.entryFiles()
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := fsutil.Remove(filepath.Join(s.entries, file)); err != nil {
			return err
		}
	}
	s.log.Debug().Int("removed", len(files)).Msg("removed all entries")
	return fsutil.SyncDir(s.entries)
}

// Close wipes the in-memory data key. Further calls on the handle fail with
// domain.ErrClosed. Close is idempotent.
func (s *FileKVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	crypto.Wipe(s.key)
	s.key = nil
	if s.obs != nil {
		s.obs.StoreClosed(s.ref.Scope)
	}
	return nil
}

func (s *FileKVStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// destroy closes the store and deletes its directory.
func (s *FileKVStore) destroy() error {
	_ = s.Close()
	if err := fsutil.RemoveAll(s.dir); err != nil {
		return err
	}
	s.log.Debug().Msg("removed store")
	return nil
}

// entryFiles lists committed entry files, skipping temp files.
func (s *FileKVStore) entryFiles() ([]string, error) {
	list, err := fsutil.ListDir(s.entries)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(list))
	for _, e := range list {
		name := e.Name()
		if e.IsDir() || fsutil.IsTemp(name) || !strings.HasSuffix(name, entryExt) {
			continue
		}
		out = append(out, name)
	}
	return out, nil
}

func (s *FileKVStore) openEntry(file string, blob []byte) (domain.Entry, error) {
	raw, err := unseal(s.key, s.keyID, blob, entryAD(s.ref, s.owner, file))
	if err != nil {
		return domain.Entry{}, s.integrityFailure(file, err)
	}
	defer crypto.Wipe(raw)
	var entry domain.Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return domain.Entry{}, s.integrityFailure(file, errors.Wrapf(domain.ErrIntegrity, "decode entry: %v", err))
	}
	return entry, nil
}

func (s *FileKVStore) integrityFailure(file string, err error) error {
	s.log.Warn().Str("file", file).Err(err).Msg("entry failed integrity check")
	return errors.Wrapf(err, "%s/%s", s.ref, file)
}

func (s *FileKVStore) closedErr() error {
	return errors.Wrapf(domain.ErrClosed, "%s", s.ref)
}

func (s *FileKVStore) observe(op string, start time.Time, err *error) {
	if s.obs != nil {
		s.obs.ObserveOp(s.ref.Scope, op, *err, time.Since(start))
	}
}

// entryFileName maps a key to its file; keys never appear in file names.
func entryFileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:]) + entryExt
}

// Compile-time assertion that FileKVStore implements domain.KeyValueStore.
var _ domain.KeyValueStore = (*FileKVStore)(nil)
