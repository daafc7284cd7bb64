package services

import "sync"

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// KeyLock provides a mutex per string key so unrelated accounts, rewards and
// issuance days never serialize against each other. Entries are dropped once
// the last holder releases.
type KeyLock struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

// NewKeyLock creates an empty key lock registry
func NewKeyLock() *KeyLock {
	return &KeyLock{entries: make(map[string]*lockEntry)}
}

// Lock acquires the mutex for key, blocking while another caller holds it.
func (k *KeyLock) Lock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &lockEntry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key.
func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()
	e := k.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
