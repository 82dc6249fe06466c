package http

import (
	"context"
	"fmt"
	"net/http"

	"cctracker/internal/core"
	"cctracker/internal/state"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.store.Snapshot(), s.store.LastWarning())
}

type metaResponse struct {
	Issuers           []core.Issuer `json:"issuers"`
	Colors            []string      `json:"colors"`
	MaxCardNameLength int           `json:"maxCardNameLength"`
	MaxNotesLength    int           `json:"maxNotesLength"`
	DaysForDueSoon    int           `json:"daysForDueSoon"`
}

// handleMeta lists the choices and limits a client needs to build its forms.
func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, metaResponse{
		Issuers:           core.Issuers(),
		Colors:            core.PresetColors(),
		MaxCardNameLength: core.MaxCardNameLength,
		MaxNotesLength:    core.MaxNotesLength,
		DaysForDueSoon:    core.DaysForDueSoon,
	}, "")
}

type themeRequest struct {
	Theme  core.Theme `json:"theme"`
	Toggle bool       `json:"toggle"`
}

// handleTheme sets the theme, or flips it when toggle is true.
func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap, err := s.store.Update(r.Context(), func(cur core.Snapshot) (state.Patch, error) {
		next := req.Theme
		if req.Toggle {
			next = cur.Theme.Toggle()
		}
		if !next.IsValid() {
			return state.Patch{}, core.Invalid("theme", fmt.Errorf("%w: %q", core.ErrInvalidTheme, next))
		}
		if next == cur.Theme {
			return state.Patch{}, nil
		}
		return state.Patch{Theme: &next}, nil
	})
	s.respond(w, r, http.StatusOK, map[string]core.Theme{"theme": snap.Theme}, err)
}

type viewRequest struct {
	View core.View `json:"view"`
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if !req.View.IsValid() {
		s.writeError(w, r, core.Invalid("view", fmt.Errorf("%w: %q", core.ErrInvalidView, req.View)))
		return
	}
	snap, err := s.setView(r.Context(), req.View)
	s.respond(w, r, http.StatusOK, map[string]core.View{"view": snap.View}, err)
}

func (s *Server) setView(ctx context.Context, v core.View) (core.Snapshot, error) {
	return s.store.Update(ctx, func(cur core.Snapshot) (state.Patch, error) {
		if cur.View == v {
			return state.Patch{}, nil
		}
		return state.Patch{View: &v}, nil
	})
}

type selectionRequest struct {
	CardID string `json:"cardId"`
}

// handleSelection selects a card; an empty id clears the selection.
func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	found, err := s.cards.Select(r.Context(), req.CardID)
	if err == nil && !found {
		writeNotFound(w, "card")
		return
	}
	s.respond(w, r, http.StatusOK, map[string]string{"selectedCardId": req.CardID}, err)
}
