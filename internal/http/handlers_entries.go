package http

import (
	"net/http"

	"cctracker/internal/core"
	"cctracker/internal/services"
)

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, draftView{Draft: s.entries.Draft(), EditingEntryID: s.entries.Editing()}, "")
}

// draftView is the draft together with the entry it edits, if any.
type draftView struct {
	Draft          core.Draft `json:"draft"`
	EditingEntryID string     `json:"editingEntryId"`
}

func (s *Server) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	var u core.DraftUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	sanitizePtr(u.Notes)

	d, err := s.entries.UpdateDraft(r.Context(), u)
	s.respond(w, r, http.StatusOK, draftView{Draft: d, EditingEntryID: s.entries.Editing()}, err)
}

type suggestRequest struct {
	Field services.SuggestField `json:"field"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	d, err := s.entries.Suggest(r.Context(), req.Field)
	s.respond(w, r, http.StatusOK, draftView{Draft: d, EditingEntryID: s.entries.Editing()}, err)
}

// handleListEntries returns entries newest first, optionally for one card.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.entries.History(r.URL.Query().Get("cardId")), "")
}

type saveRequest struct {
	ConfirmNegative bool `json:"confirmNegative"`
}

// handleSaveEntry commits the draft. A negative balance is refused with 409
// until the client repeats the request with confirmNegative set.
func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var confirm services.ConfirmFunc
	if req.ConfirmNegative {
		confirm = services.AlwaysConfirm
	}

	e, created, err := s.entries.Save(r.Context(), confirm)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.respond(w, r, status, e, err)
}

func (s *Server) handleStartEdit(w http.ResponseWriter, r *http.Request) {
	found, err := s.entries.StartEdit(r.Context(), r.PathValue("id"))
	if err == nil && !found {
		writeNotFound(w, "entry")
		return
	}
	s.respond(w, r, http.StatusOK, draftView{Draft: s.entries.Draft(), EditingEntryID: s.entries.Editing()}, err)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, r *http.Request) {
	err := s.entries.CancelEdit(r.Context())
	s.respond(w, r, http.StatusOK, draftView{Draft: s.entries.Draft()}, err)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	found, err := s.entries.Delete(r.Context(), id)
	if err == nil && !found {
		writeNotFound(w, "entry")
		return
	}
	s.respond(w, r, http.StatusOK, map[string]string{"deleted": id}, err)
}
