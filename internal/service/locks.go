package service

import (
	"bytes"
	"slices"
	"sync"

	"github.com/google/uuid"
)

// tripLocks hands out one mutex per trip id so that the read-check-write on a
// trip's seat counter is serialized inside this process. Entries are reference
// counted and dropped once nobody holds or waits for them.
//
// The Postgres row locks taken in the same order cover the multi-instance case;
// this layer keeps contending requests off the database.
type tripLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*tripLock
}

type tripLock struct {
	mu   sync.Mutex
	refs int
}

func newTripLocks() *tripLocks {
	return &tripLocks{locks: make(map[uuid.UUID]*tripLock)}
}

// Lock acquires the locks for ids in ascending id order, ignoring duplicates,
// and returns the function that releases them. Two callers locking the same
// pair of trips therefore always queue instead of deadlocking.
func (l *tripLocks) Lock(ids ...uuid.UUID) (unlock func()) {
	keys := slices.Clone(ids)
	slices.SortFunc(keys, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	keys = slices.Compact(keys)

	held := make([]*tripLock, len(keys))
	for i, id := range keys {
		l.mu.Lock()
		tl, ok := l.locks[id]
		if !ok {
			tl = &tripLock{}
			l.locks[id] = tl
		}
		tl.refs++
		l.mu.Unlock()

		tl.mu.Lock()
		held[i] = tl
	}

	return func() {
		for i := len(keys) - 1; i >= 0; i-- {
			tl := held[i]
			tl.mu.Unlock()

			l.mu.Lock()
			tl.refs--
			if tl.refs == 0 {
				delete(l.locks, keys[i])
			}
			l.mu.Unlock()
		}
	}
}

// size reports how many trip entries are live. Used by tests.
func (l *tripLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
