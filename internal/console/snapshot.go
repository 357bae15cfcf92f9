// Package console holds helpers shared by the per-resource console pages.
package console

import (
	"strings"
	"sync"
)

// Snapshot retains the last successfully fetched copy of a remote
// collection. When a refetch fails the page renders the stale copy with an
// error banner instead of blanking the table.
type Snapshot[T any] struct {
	mu   sync.RWMutex
	data []T
	ok   bool
}

// Put replaces the snapshot wholesale.
func (s *Snapshot[T]) Put(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = items
	s.ok = true
}

// Get returns the snapshot and whether one exists.
func (s *Snapshot[T]) Get() ([]T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data, s.ok
}

// MatchesQuery reports whether any field contains q, case-insensitively.
// An empty query matches everything.
func MatchesQuery(q string, fields ...string) bool {
	if q == "" {
		return true
	}
	q = strings.ToLower(q)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
