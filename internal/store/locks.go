package store

import "sync"

// keyedLocks hands out one mutex per live key so mutations of the same key
// are linearized while unrelated keys proceed independently. Entries are
// reference counted and dropped once the last holder releases them, keeping
// the map bounded by the number of in-flight operations.
type keyedLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{entries: make(map[string]*lockEntry)}
}

func (l *keyedLocks) lock(key string) {
	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &lockEntry{}
		l.entries[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
}

func (l *keyedLocks) unlock(key string) {
	l.mu.Lock()
	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
	l.mu.Unlock()

	e.mu.Unlock()
}
