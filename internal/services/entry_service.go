package services

import (
	"context"
	"errors"
	"fmt"

	"cctracker/internal/core"
	"cctracker/internal/log"
	"cctracker/internal/state"
)

// ConfirmFunc asks the user to accept a negative (credit) balance.
type ConfirmFunc func(balance float64) bool

// AlwaysConfirm accepts every negative balance.
func AlwaysConfirm(float64) bool { return true }

// SuggestField names a draft date that can be copied from the latest entry.
type SuggestField string

const (
	SuggestDueDate      SuggestField = "dueDate"
	SuggestStatementEnd SuggestField = "statementEnd"
)

// ErrUnknownSuggestField is returned by Suggest for unsupported fields.
var ErrUnknownSuggestField = errors.New("unknown suggestion field")

// EntryService runs the entry draft state machine: a draft is either new or
// bound to an entry being edited, and returns to new on save or cancel.
type EntryService struct {
	store  *state.Store
	logger *log.Logger
}

func NewEntryService(store *state.Store, logger *log.Logger) *EntryService {
	return &EntryService{
		store:  store,
		logger: logger.WithComponent(log.ComponentEntries),
	}
}

// History returns the entries of cardID ("" for all cards), newest first.
func (s *EntryService) History(cardID string) []core.Entry {
	return core.EntriesForCard(cardID, s.store.Snapshot().Entries)
}

func (s *EntryService) Draft() core.Draft {
	return s.store.Draft()
}

func (s *EntryService) UpdateDraft(ctx context.Context, u core.DraftUpdate) (core.Draft, error) {
	return s.store.UpdateDraft(ctx, u)
}

// Editing returns the id of the entry being edited, or "".
func (s *EntryService) Editing() string {
	return s.store.Snapshot().EditingEntryID
}

// StartEdit loads the entry into the draft and selects its card. Unknown
// ids are ignored.
func (s *EntryService) StartEdit(ctx context.Context, id string) (found bool, err error) {
	_, err = s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		i := cur.FindEntry(id)
		if i < 0 {
			return state.Patch{}, nil
		}
		found = true
		e := cur.Entries[i]
		draft := core.DraftFromEntry(e)
		return state.Patch{
			Draft:          &draft,
			EditingEntryID: &e.ID,
			SelectedCardID: &e.CardID,
		}, nil
	})
	if !found {
		s.logger.DebugContext(ctx, "Edit ignored, unknown entry", log.FieldEntryID, id)
	}
	return found, err
}

// CancelEdit discards the draft and leaves edit mode. Entries are untouched.
func (s *EntryService) CancelEdit(ctx context.Context) error {
	_, err := s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		fresh := core.NewDraft(s.store.Today())
		if cur.EditingEntryID == "" && cur.Draft == fresh {
			return state.Patch{}, nil
		}
		none := ""
		return state.Patch{Draft: &fresh, EditingEntryID: &none}, nil
	})
	return err
}

// Save validates the draft and commits it: in edit mode the edited entry is
// replaced in place and moved to the selected card, otherwise a new entry is
// appended. The draft is reset afterwards.
//
// A negative balance needs confirm to return true; a nil confirm yields
// core.ErrConfirmationRequired. Every rejection is a *core.ValidationError
// and leaves the state unchanged. created reports whether a new entry was
// appended rather than an edited one replaced.
func (s *EntryService) Save(ctx context.Context, confirm ConfirmFunc) (saved core.Entry, created bool, err error) {
	_, err = s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		if cur.SelectedCardID == "" || cur.FindCard(cur.SelectedCardID) < 0 {
			return state.Patch{}, core.Invalid("cardId", core.ErrNoCardSelected)
		}

		id := cur.EditingEntryID
		editing := id != "" && cur.FindEntry(id) >= 0
		if !editing {
			id = s.store.NewID()
		}

		e, err := cur.Draft.Entry(id, cur.SelectedCardID)
		if err != nil {
			return state.Patch{}, err
		}
		if e.CurrentBalance < 0 {
			if confirm == nil {
				return state.Patch{}, core.Invalid("currentBalance", core.ErrConfirmationRequired)
			}
			if !confirm(e.CurrentBalance) {
				return state.Patch{}, core.Invalid("currentBalance", core.ErrNegativeBalanceDeclined)
			}
		}

		entries := cur.Entries
		if editing {
			entries[cur.FindEntry(id)] = e
		} else {
			entries = append(entries, e)
		}
		fresh := core.NewDraft(s.store.Today())
		none := ""
		saved, created = e, !editing
		return state.Patch{Entries: &entries, Draft: &fresh, EditingEntryID: &none}, nil
	})
	if err != nil && !core.IsPersistence(err) {
		return core.Entry{}, false, err
	}
	s.logger.InfoContext(ctx, "Entry saved",
		log.FieldEntryID, saved.ID, log.FieldCardID, saved.CardID, "date", saved.Date, "created", created)
	return saved, created, err
}

// Delete removes one entry. Deleting the entry being edited cancels the
// edit. Unknown ids are ignored.
func (s *EntryService) Delete(ctx context.Context, id string) (found bool, err error) {
	_, err = s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		i := cur.FindEntry(id)
		if i < 0 {
			return state.Patch{}, nil
		}
		found = true
		entries := append(cur.Entries[:i:i], cur.Entries[i+1:]...)
		p := state.Patch{Entries: &entries}
		if cur.EditingEntryID == id {
			fresh := core.NewDraft(s.store.Today())
			none := ""
			p.Draft = &fresh
			p.EditingEntryID = &none
		}
		return p, nil
	})
	if found {
		s.logger.InfoContext(ctx, "Entry deleted", log.FieldEntryID, id)
	} else {
		s.logger.DebugContext(ctx, "Entry delete ignored, unknown id", log.FieldEntryID, id)
	}
	return found, err
}

// Suggest copies the due date or statement end of the selected card's latest
// entry into the draft. It does nothing when there is no such value.
func (s *EntryService) Suggest(ctx context.Context, field SuggestField) (core.Draft, error) {
	if field != SuggestDueDate && field != SuggestStatementEnd {
		return s.store.Draft(), core.Invalid("field", fmt.Errorf("%w: %q", ErrUnknownSuggestField, field))
	}
	snap, err := s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		latest, ok := core.LatestEntryFor(cur.SelectedCardID, cur.Entries)
		if cur.SelectedCardID == "" || !ok {
			return state.Patch{}, nil
		}
		var u core.DraftUpdate
		switch field {
		case SuggestDueDate:
			u.DueDate = latest.DueDate
		case SuggestStatementEnd:
			u.StatementEnd = latest.StatementEnd
		}
		if u == (core.DraftUpdate{}) {
			return state.Patch{}, nil
		}
		d := cur.Draft.Apply(u)
		if d == cur.Draft {
			return state.Patch{}, nil
		}
		return state.Patch{Draft: &d}, nil
	})
	return snap.Draft, err
}
