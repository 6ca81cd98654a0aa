package engine

import (
	"fmt"
	"sync"

	"github.com/mycinema/screening-engine/internal/model"
)

// keyedLocks serializes critical sections by string key.  The engine
// uses three key families: "hall:<id>" guards the overlap-check-then-
// insert step of the scheduler, "scr:<id>" fences screening and hall
// mutations against in-flight purchases, and "occ:<screening>:<date>"
// guards the availability-check-then-append step of the booking
// engine.  Operations under different keys proceed in parallel; there
// is no global lock.
//
// Keys are always taken in hall, screening, occurrence order, so
// holders cannot form a cycle.
//
// Entries are reference counted and removed once the last holder
// releases, so the table stays proportional to in-flight operations
// rather than to the number of occurrences ever touched.
type keyedLocks struct {
	mu   sync.Mutex
	held map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.RWMutex
	refs int
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{held: make(map[string]*lockEntry)}
}

// acquire blocks until the key's lock is held exclusively and returns
// the release function.  Lock scope must stay limited to a single
// validate-then-commit step.
func (k *keyedLocks) acquire(key string) func() {
	e := k.retain(key)
	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.put(key, e)
	}
}

// acquireShared takes the key's lock in shared mode.  Shared holders
// run concurrently with each other but exclude exclusive holders; the
// purchase path holds its screening key shared so purchases on
// different occurrences of one screening stay parallel while a
// screening mutation waits them out.
func (k *keyedLocks) acquireShared(key string) func() {
	e := k.retain(key)
	e.mu.RLock()
	return func() {
		e.mu.RUnlock()
		k.put(key, e)
	}
}

func (k *keyedLocks) retain(key string) *lockEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.held[key]
	if !ok {
		e = &lockEntry{}
		k.held[key] = e
	}
	e.refs++
	return e
}

func (k *keyedLocks) put(key string, e *lockEntry) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(k.held, key)
	}
}

func hallKey(hallID uint64) string {
	return fmt.Sprintf("hall:%d", hallID)
}

func screeningKey(screeningID uint64) string {
	return fmt.Sprintf("scr:%d", screeningID)
}

func occurrenceKey(screeningID uint64, date model.Date) string {
	return fmt.Sprintf("occ:%d:%s", screeningID, date)
}
