package dataio

import (
	"fmt"
	"strings"

	"cctracker/internal/core"
)

// Mode selects how an imported document is combined with current state.
type Mode string

const (
	// ModeReplace discards current cards and entries for the imported ones.
	ModeReplace Mode = "replace"
	// ModeMerge appends imported cards and entries whose ids are new.
	ModeMerge Mode = "merge"
)

// ParseMode maps user input to a Mode; blank means replace.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeReplace:
		return ModeReplace, nil
	case ModeMerge:
		return ModeMerge, nil
	}
	return "", core.Invalid("mode", fmt.Errorf("%w: %q", core.ErrInvalidImportMode, s))
}

// Reconcile returns the state that results from importing doc into current.
//
// Replace adopts the document's cards and entries in order, selects the first
// imported card (or none), takes the document theme when it has a valid one,
// keeps the draft and leaves edit mode.
//
// Merge keeps everything current and appends the cards and entries whose id
// has not been seen yet, earlier occurrences winning, including duplicates
// inside the document.
func Reconcile(current core.Snapshot, doc Document, mode Mode) core.Snapshot {
	next := current.Clone()
	switch mode {
	case ModeMerge:
		seenCards := make(map[string]struct{}, len(next.Cards)+len(doc.Cards))
		for _, c := range next.Cards {
			seenCards[c.ID] = struct{}{}
		}
		for _, c := range doc.Cards {
			if _, dup := seenCards[c.ID]; dup {
				continue
			}
			seenCards[c.ID] = struct{}{}
			next.Cards = append(next.Cards, c)
		}

		seenEntries := make(map[string]struct{}, len(next.Entries)+len(doc.Entries))
		for _, e := range next.Entries {
			seenEntries[e.ID] = struct{}{}
		}
		for _, e := range doc.Entries {
			if _, dup := seenEntries[e.ID]; dup {
				continue
			}
			seenEntries[e.ID] = struct{}{}
			next.Entries = append(next.Entries, e.Clone())
		}
	default:
		next.Cards = append([]core.Card{}, doc.Cards...)
		next.Entries = make([]core.Entry, len(doc.Entries))
		for i, e := range doc.Entries {
			next.Entries[i] = e.Clone()
		}
		next.SelectedCardID = ""
		if len(next.Cards) > 0 {
			next.SelectedCardID = next.Cards[0].ID
		}
		if doc.Theme.IsValid() {
			next.Theme = doc.Theme
		}
		next.EditingEntryID = ""
	}
	return next
}
