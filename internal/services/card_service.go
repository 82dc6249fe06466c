package services

import (
	"context"

	"cctracker/internal/core"
	"cctracker/internal/log"
	"cctracker/internal/state"
)

// CardUpdate carries the card fields to change; nil fields are kept.
type CardUpdate struct {
	Name       *string      `json:"name,omitempty"`
	Issuer     *core.Issuer `json:"issuer,omitempty"`
	Limit      *float64     `json:"limit,omitempty"`
	APR        *float64     `json:"apr,omitempty"`
	Color      *string      `json:"color,omitempty"`
	UtilTarget *float64     `json:"utilTarget,omitempty"`
}

func (u CardUpdate) applyTo(c core.Card) core.Card {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Issuer != nil {
		c.Issuer = *u.Issuer
	}
	if u.Limit != nil {
		c.Limit = *u.Limit
	}
	if u.APR != nil {
		c.APR = *u.APR
	}
	if u.Color != nil {
		c.Color = *u.Color
	}
	if u.UtilTarget != nil {
		c.UtilTarget = *u.UtilTarget
	}
	return c
}

// CardService creates, edits and removes card definitions.
type CardService struct {
	store  *state.Store
	logger *log.Logger
}

func NewCardService(store *state.Store, logger *log.Logger) *CardService {
	return &CardService{
		store:  store,
		logger: logger.WithComponent(log.ComponentCards),
	}
}

func (s *CardService) List() []core.Card {
	return s.store.Snapshot().Cards
}

func (s *CardService) Get(id string) (core.Card, bool) {
	snap := s.store.Snapshot()
	if i := snap.FindCard(id); i >= 0 {
		return snap.Cards[i], true
	}
	return core.Card{}, false
}

// Create appends a card with default values. It becomes the selected card
// when no card is selected.
func (s *CardService) Create(ctx context.Context) (core.Card, error) {
	card := core.NewCard(s.store.NewID())
	_, err := s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		cards := append(cur.Cards, card)
		p := state.Patch{Cards: &cards}
		if cur.SelectedCardID == "" {
			p.SelectedCardID = &card.ID
		}
		return p, nil
	})
	if err != nil && !core.IsPersistence(err) {
		return core.Card{}, err
	}
	s.logger.InfoContext(ctx, "Card created", log.FieldCardID, card.ID)
	return card, err
}

// Update merges u into the card with the given id. The merged card must
// validate. An unknown id is a no-op and returns found=false.
func (s *CardService) Update(ctx context.Context, id string, u CardUpdate) (card core.Card, found bool, err error) {
	_, err = s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		i := cur.FindCard(id)
		if i < 0 {
			return state.Patch{}, nil
		}
		found = true
		card = u.applyTo(cur.Cards[i])
		if err := card.Validate(); err != nil {
			return state.Patch{}, err
		}
		if card == cur.Cards[i] {
			return state.Patch{}, nil
		}
		cur.Cards[i] = card
		return state.Patch{Cards: &cur.Cards}, nil
	})
	if !found {
		s.logger.DebugContext(ctx, "Card update ignored, unknown id", log.FieldCardID, id)
	}
	return card, found, err
}

// Delete removes the card and every entry recorded for it. A selected card
// hands the selection to the first remaining card; an edit of one of its
// entries is cancelled by the store's reference repair.
func (s *CardService) Delete(ctx context.Context, id string) (found bool, err error) {
	removed := 0
	_, err = s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		if cur.FindCard(id) < 0 {
			return state.Patch{}, nil
		}
		found = true

		cards := make([]core.Card, 0, len(cur.Cards))
		for _, c := range cur.Cards {
			if c.ID != id {
				cards = append(cards, c)
			}
		}
		entries := make([]core.Entry, 0, len(cur.Entries))
		for _, e := range cur.Entries {
			if e.CardID == id {
				removed++
				continue
			}
			entries = append(entries, e)
		}

		p := state.Patch{Cards: &cards, Entries: &entries}
		if cur.SelectedCardID == id {
			next := ""
			if len(cards) > 0 {
				next = cards[0].ID
			}
			p.SelectedCardID = &next
		}
		return p, nil
	})
	if !found {
		s.logger.DebugContext(ctx, "Card delete ignored, unknown id", log.FieldCardID, id)
		return false, err
	}
	s.logger.InfoContext(ctx, "Card deleted", log.FieldCardID, id, "entries_removed", removed)
	return true, err
}

// Select makes id the selected card; "" clears the selection. Unknown ids
// are ignored.
func (s *CardService) Select(ctx context.Context, id string) (found bool, err error) {
	_, err = s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		if id != "" && cur.FindCard(id) < 0 {
			return state.Patch{}, nil
		}
		found = true
		if cur.SelectedCardID == id {
			return state.Patch{}, nil
		}
		return state.Patch{SelectedCardID: &id}, nil
	})
	return found, err
}

// Metrics returns the derived figures for one card.
func (s *CardService) Metrics(id string) (core.CardMetrics, bool) {
	snap := s.store.Snapshot()
	i := snap.FindCard(id)
	if i < 0 {
		return core.CardMetrics{}, false
	}
	var latest *core.Entry
	if e, ok := core.LatestEntryFor(id, snap.Entries); ok {
		latest = &e
	}
	return core.MetricsFor(snap.Cards[i], latest, s.store.Today()), true
}
