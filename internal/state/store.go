// Package state owns the application snapshot. Every mutation goes through
// Store.Update, which merges a typed patch, repairs references, persists the
// full snapshot and then notifies listeners.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"cctracker/internal/core"
	"cctracker/internal/log"
	"cctracker/internal/storage"
)

// Patch is a partial snapshot; nil fields are left unchanged.
type Patch struct {
	Theme          *core.Theme
	View           *core.View
	Cards          *[]core.Card
	Entries        *[]core.Entry
	SelectedCardID *string
	Draft          *core.Draft
	EditingEntryID *string
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p == Patch{}
}

func (p Patch) applyTo(s core.Snapshot) core.Snapshot {
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.View != nil {
		s.View = *p.View
	}
	if p.Cards != nil {
		s.Cards = append([]core.Card{}, (*p.Cards)...)
	}
	if p.Entries != nil {
		s.Entries = make([]core.Entry, len(*p.Entries))
		for i, e := range *p.Entries {
			s.Entries[i] = e.Clone()
		}
	}
	if p.SelectedCardID != nil {
		s.SelectedCardID = *p.SelectedCardID
	}
	if p.Draft != nil {
		s.Draft = *p.Draft
	}
	if p.EditingEntryID != nil {
		s.EditingEntryID = *p.EditingEntryID
	}
	return s
}

// Change describes one applied update. Err is non-nil when the snapshot could
// not be persisted; the change is in effect regardless.
type Change struct {
	Key      string
	Snapshot core.Snapshot
	Revision uint64
	Err      error
}

// Persisted reports whether the change reached the blob store.
func (c Change) Persisted() bool { return c.Err == nil }

// Listener is called after every applied update, in revision order. It must
// not call Update or Apply on the same store.
type Listener func(ctx context.Context, c Change)

// UpdateFunc computes a patch from the current snapshot. Returning an error
// aborts the update without any change.
type UpdateFunc func(current core.Snapshot) (Patch, error)

type Option func(*Store)

// WithKey sets the blob key the snapshot is stored under.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentState) }
}

// WithClock replaces time.Now; "today" is the clock's local calendar date.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid generator used for new cards and entries.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// Store is safe for concurrent use. Update holds a lock across
// read-modify-write-persist.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	blobs    storage.BlobStore
	key      string
	snap     core.Snapshot
	revision uint64
	warning  string

	listeners []Listener

	logger *log.Logger
	now    func() time.Time
	newID  func() string
}

// Open loads the snapshot stored under the configured key. Absent or
// unusable data yields the seed snapshot; a read failure is logged and kept
// as the store's warning.
func Open(ctx context.Context, blobs storage.BlobStore, opts ...Option) (*Store, error) {
	if blobs == nil {
		return nil, errors.New("state: nil blob store")
	}
	s := &Store{
		blobs:  blobs,
		key:    storage.DefaultKey,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentState),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap = s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) core.Snapshot {
	today := s.Today()

	data, err := s.blobs.Get(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.InfoContext(ctx, "No stored snapshot, using seed data", log.FieldKey, s.key)
		return s.seed(today)
	case err != nil:
		perr := &core.PersistenceError{Op: "load", Key: s.key, Err: err}
		s.warning = perr.Error()
		s.logger.ErrorContext(ctx, "Failed to load snapshot, using seed data", log.FieldError, perr)
		return s.seed(today)
	}

	snap, fixes, err := Decode(data, today)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored snapshot unusable, using seed data",
			log.FieldKey, s.key, log.FieldError, err)
		return s.seed(today)
	}
	for _, fix := range fixes {
		s.logger.WarnContext(ctx, "Repaired stored snapshot", log.FieldRepair, fix)
	}
	s.logger.InfoContext(ctx, "Snapshot loaded",
		log.FieldKey, s.key, log.FieldCards, len(snap.Cards), log.FieldEntries, len(snap.Entries))
	return snap
}

func (s *Store) seed(today string) core.Snapshot {
	return core.SeedSnapshot(s.newID(), s.newID(), today)
}

// Key returns the blob key the snapshot is stored under.
func (s *Store) Key() string { return s.key }

// Today returns the current local calendar date.
func (s *Store) Today() string { return core.DateOf(s.now()) }

// Now returns the store clock's current time.
func (s *Store) Now() time.Time { return s.now() }

// NewID returns a fresh identifier for a card or entry.
func (s *Store) NewID() string { return s.newID() }

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() core.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Revision counts applied updates since Open.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// LastWarning returns the most recent persistence problem, or "" once a
// later write succeeded.
func (s *Store) LastWarning() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.warning
}

// OnChange registers a listener for applied updates.
func (s *Store) OnChange(l Listener) {
	s.notifyMu.Lock()
	s.listeners = append(s.listeners, l)
	s.notifyMu.Unlock()
}

// Apply merges p into the current snapshot.
func (s *Store) Apply(ctx context.Context, p Patch) (core.Snapshot, error) {
	return s.Update(ctx, func(core.Snapshot) (Patch, error) { return p, nil })
}

// Update runs fn against the current snapshot and applies the patch it
// returns. A zero patch is a no-op: nothing is persisted or announced.
//
// When persisting fails the new snapshot is still returned and stays in
// effect, together with a *core.PersistenceError.
func (s *Store) Update(ctx context.Context, fn UpdateFunc) (core.Snapshot, error) {
	s.mu.Lock()

	patch, err := fn(s.snap.Clone())
	if err != nil || patch.IsZero() {
		current := s.snap.Clone()
		s.mu.Unlock()
		return current, err
	}

	today := s.Today()
	next := patch.applyTo(s.snap.Clone())
	for _, fix := range next.Repair(today) {
		s.logger.WarnContext(ctx, "Repaired snapshot", log.FieldRepair, fix)
	}
	s.snap = next
	s.revision++
	change := Change{Key: s.key, Snapshot: next.Clone(), Revision: s.revision}

	if perr := s.persist(ctx, next); perr != nil {
		change.Err = perr
		s.warning = perr.Error()
		s.logger.ErrorContext(ctx, "Failed to persist snapshot, continuing in memory",
			log.FieldRevision, s.revision, log.FieldError, perr)
	} else {
		s.warning = ""
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	s.notify(ctx, change)
	s.notifyMu.Unlock()

	result := change.Snapshot.Clone()
	if change.Err != nil {
		return result, change.Err
	}
	return result, nil
}

func (s *Store) persist(ctx context.Context, snap core.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return &core.PersistenceError{Op: "save", Key: s.key, Err: err}
	}
	if err := s.blobs.Set(ctx, s.key, data); err != nil {
		return &core.PersistenceError{Op: "save", Key: s.key, Err: err}
	}
	return nil
}

func (s *Store) notify(ctx context.Context, c Change) {
	for _, l := range s.listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.ErrorContext(ctx, "Change listener panicked",
						log.FieldRevision, c.Revision, log.FieldError, fmt.Sprint(r))
				}
			}()
			l(ctx, c)
		}()
	}
}

// Draft returns the draft being composed.
func (s *Store) Draft() core.Draft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Draft
}

// UpdateDraft merges u into the draft.
func (s *Store) UpdateDraft(ctx context.Context, u core.DraftUpdate) (core.Draft, error) {
	snap, err := s.Update(ctx, func(cur core.Snapshot) (Patch, error) {
		d := cur.Draft.Apply(u)
		if d == cur.Draft {
			return Patch{}, nil
		}
		return Patch{Draft: &d}, nil
	})
	return snap.Draft, err
}
