package store

import "sync"

// keyLocks hands out one RWMutex per key, dropping it once nobody holds it.
type keyLocks struct {
	mu sync.Mutex
	m  map[string]*keyLock
}

type keyLock struct {
	sync.RWMutex
	refs int
}

func (l *keyLocks) acquire(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.m == nil {
		l.m = make(map[string]*keyLock)
	}
	kl, ok := l.m[key]
	if !ok {
		kl = &keyLock{}
		l.m[key] = kl
	}
	kl.refs++
	return kl
}

func (l *keyLocks) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.m, key)
	}
}

// lock takes key exclusively and returns the matching unlock.
func (l *keyLocks) lock(key string) func() {
	kl := l.acquire(key)
	kl.Lock()
	return func() {
		kl.Unlock()
		l.release(key, kl)
	}
}

// rlock takes key shared and returns the matching unlock.
func (l *keyLocks) rlock(key string) func() {
	kl := l.acquire(key)
	kl.RLock()
	return func() {
		kl.RUnlock()
		l.release(key, kl)
	}
}

// held returns how many keys currently have a lock entry.
func (l *keyLocks) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
