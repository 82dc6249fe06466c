package http

import (
	"net/http"

	"cctracker/internal/services"
)

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, s.cards.List(), "")
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	card, err := s.cards.Create(r.Context())
	s.respond(w, r, http.StatusCreated, card, err)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	var u services.CardUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	sanitizePtr(u.Name)
	sanitizePtr(u.Color)

	card, found, err := s.cards.Update(r.Context(), r.PathValue("id"), u)
	if !found {
		writeNotFound(w, "card")
		return
	}
	s.respond(w, r, http.StatusOK, card, err)
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	found, err := s.cards.Delete(r.Context(), id)
	if err == nil && !found {
		writeNotFound(w, "card")
		return
	}
	s.respond(w, r, http.StatusOK, map[string]string{"deleted": id}, err)
}

func (s *Server) handleCardMetrics(w http.ResponseWriter, r *http.Request) {
	m, ok := s.cards.Metrics(r.PathValue("id"))
	if !ok {
		writeNotFound(w, "card")
		return
	}
	writeData(w, http.StatusOK, m, "")
}
