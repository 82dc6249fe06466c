package services

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cctracker/internal/core"
	"cctracker/internal/dataio"
	"cctracker/internal/log"
	"cctracker/internal/state"
)

// ImportResult reports what an import did. Applied is false when the import
// was cancelled.
type ImportResult struct {
	Applied      bool        `json:"applied"`
	Mode         dataio.Mode `json:"mode"`
	CardsAdded   int         `json:"cardsAdded"`
	EntriesAdded int         `json:"entriesAdded"`
}

// TransferService exports and imports backup documents.
type TransferService struct {
	store  *state.Store
	logger *log.Logger
}

func NewTransferService(store *state.Store, logger *log.Logger) *TransferService {
	return &TransferService{
		store:  store,
		logger: logger.WithComponent(log.ComponentTransfer),
	}
}

// Export returns a backup document of the current state.
func (s *TransferService) Export(ctx context.Context) dataio.Document {
	doc := dataio.Export(s.store.Snapshot(), s.store.Now())
	s.logger.InfoContext(ctx, "State exported",
		log.FieldCards, len(doc.Cards), log.FieldEntries, len(doc.Entries))
	return doc
}

// Import reads a document from r and applies it with mode. A nil reader or
// an empty body is a cancelled import: nothing happens and no error is
// returned. An invalid document is rejected as a whole.
func (s *TransferService) Import(ctx context.Context, r io.Reader, mode dataio.Mode) (ImportResult, error) {
	res := ImportResult{Mode: mode}
	if r == nil {
		return res, nil
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return res, fmt.Errorf("read import: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		s.logger.DebugContext(ctx, "Import cancelled, empty document")
		return res, nil
	}

	doc, err := dataio.Decode(bytes.NewReader(body))
	if err != nil {
		if core.IsValidation(err) {
			s.logger.WarnContext(ctx, "Import rejected", log.FieldMode, string(mode), log.FieldError, err)
		} else {
			s.logger.ErrorContext(ctx, "Import failed", log.FieldMode, string(mode), log.FieldError, err)
		}
		return res, err
	}

	_, err = s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		next := dataio.Reconcile(cur, doc, mode)
		res.Applied = true
		res.CardsAdded = countNew(len(cur.Cards), len(next.Cards), mode, len(doc.Cards))
		res.EntriesAdded = countNew(len(cur.Entries), len(next.Entries), mode, len(doc.Entries))
		return state.Patch{
			Theme:          &next.Theme,
			Cards:          &next.Cards,
			Entries:        &next.Entries,
			SelectedCardID: &next.SelectedCardID,
			Draft:          &next.Draft,
			EditingEntryID: &next.EditingEntryID,
		}, nil
	})
	if err != nil && !core.IsPersistence(err) {
		return ImportResult{Mode: mode}, err
	}
	s.logger.InfoContext(ctx, "State imported", log.FieldMode, string(mode),
		"cards_added", res.CardsAdded, "entries_added", res.EntriesAdded)
	return res, err
}

func countNew(before, after int, mode dataio.Mode, imported int) int {
	if mode == dataio.ModeMerge {
		return after - before
	}
	return imported
}
