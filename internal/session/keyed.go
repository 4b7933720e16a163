package session

import "sync"

// KeyedMutex serialises work per user id. Entries are reference counted and
// dropped once nobody holds or waits for them.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// Lock blocks until the caller owns userID and returns the matching unlock.
func (k *KeyedMutex) Lock(userID int64) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[int64]*keyedEntry)
	}
	e, ok := k.locks[userID]
	if !ok {
		e = &keyedEntry{}
		k.locks[userID] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, userID)
		}
		k.mu.Unlock()
	}
}

// Len reports how many user ids are currently locked or awaited.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
