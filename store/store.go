// Package store holds the process-local map of known counterparties and
// provides the per-counterparty asynchronous exclusive lock described in
// spec §4.4: every operation against a given counterparty — local or
// peer-initiated — runs under that counterparty's own guard, so two
// operations against different counterparties proceed fully in parallel
// while two operations against the same one serialize, including across
// the blocking ledger/peer calls a state transition makes while holding
// the guard (spec §5).
package store

import (
	"context"
	"sync"

	"github.com/althea-net/guac/chantypes"
	"github.com/althea-net/guac/counterparty"
)

// entry pairs a Counterparty with the mutex that serializes access to it.
// The mutex is held across an entire transition, including any blocking
// ledger or peer calls the transition makes, which is what makes it an
// "asynchronous exclusive lock" rather than a plain data-race guard.
type entry struct {
	mu sync.Mutex
	cp *counterparty.Counterparty
}

// Store is the keyed map of counterparties, safe for concurrent use. Its
// own mutex only ever guards the map itself (insertion of a new entry);
// it is never held across a counterparty operation.
type Store struct {
	mu      sync.Mutex
	entries map[chantypes.Address]*entry
}

// New returns an empty Store.
func New() *Store {
	return &Store{entries: make(map[chantypes.Address]*entry)}
}

// Guard is a held lock on one counterparty, returned by Store.Acquire.
// Callers must call Release exactly once, typically via defer, and must
// not retain the Guard or its Counterparty past that call.
type Guard struct {
	e  *entry
	cp *counterparty.Counterparty
}

// Counterparty returns the locked Counterparty value.
func (g *Guard) Counterparty() *counterparty.Counterparty { return g.cp }

// Release unlocks the counterparty, allowing the next queued operation
// against it to proceed.
func (g *Guard) Release() { g.e.mu.Unlock() }

// GetOrCreate returns the Store's entry for peerAddress, creating a fresh
// StateNew Counterparty via newFn if none exists yet. The map lookup/insert
// itself is quick and uncontended; newFn is only invoked while the Store's
// own (map-only) lock is held, so two concurrent first-contacts with the
// same peer never race to create two different Counterparty values for it.
func (s *Store) GetOrCreate(peerAddress chantypes.Address, newFn func() *counterparty.Counterparty) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[peerAddress]
	if !ok {
		e = &entry{cp: newFn()}
		s.entries[peerAddress] = e
	}
	return e
}

// Acquire blocks until it holds the exclusive lock on peerAddress's
// counterparty, creating one via newFn on first contact, and returns a
// Guard the caller must Release. ctx is honored only up to the point the
// lock would otherwise block forever; once acquired, the caller is
// expected to release promptly.
func (s *Store) Acquire(ctx context.Context, peerAddress chantypes.Address, newFn func() *counterparty.Counterparty) (*Guard, error) {
	e := s.GetOrCreate(peerAddress, newFn)

	locked := make(chan struct{})
	go func() {
		e.mu.Lock()
		close(locked)
	}()

	select {
	case <-locked:
		return &Guard{e: e, cp: e.cp}, nil
	case <-ctx.Done():
		// The goroutine above still acquires the lock eventually and will
		// leak it locked forever unless we release it once it does; spawn
		// a releaser so a canceled Acquire never wedges the counterparty.
		go func() {
			<-locked
			e.mu.Unlock()
		}()
		return nil, ctx.Err()
	}
}

// Snapshot returns the addresses of every counterparty currently known to
// the store, for diagnostics.
func (s *Store) Snapshot() []chantypes.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	addrs := make([]chantypes.Address, 0, len(s.entries))
	for a := range s.entries {
		addrs = append(addrs, a)
	}
	return addrs
}
