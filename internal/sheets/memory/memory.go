// Package memory is an in-process SnapshotMirror for tests and dry runs.
package memory

import (
	"context"
	"sync"

	"cctracker/internal/core"
	"cctracker/internal/sheets"
)

var _ sheets.SnapshotMirror = (*Store)(nil)

type Store struct {
	mu      sync.Mutex
	cards   []sheets.Row
	entries []sheets.Row
	mirrors int
	err     error
}

func New() *Store {
	return &Store{}
}

// Mirror records the rows that would be written. It returns the error set
// with FailWith without recording anything.
func (s *Store) Mirror(ctx context.Context, snap core.Snapshot, today string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.cards = sheets.CardRows(snap, today)
	s.entries = sheets.EntryRows(snap)
	s.mirrors++
	return nil
}

// FailWith makes subsequent mirrors fail with err; nil restores success.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Rows returns the last mirrored card and entry rows.
func (s *Store) Rows() (cards, entries []sheets.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Row(nil), s.cards...), append([]sheets.Row(nil), s.entries...)
}

// Mirrors returns how many mirrors succeeded.
func (s *Store) Mirrors() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mirrors
}
