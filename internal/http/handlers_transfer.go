package http

import (
	"net/http"

	"cctracker/internal/cache"
	"cctracker/internal/dataio"
	"cctracker/internal/log"
)

// handleDashboard serves the summary, due calendar and per-card metrics,
// memoized per store revision and day.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	today := s.store.Today()
	d, hit := s.dashboard.Get(s.store.Revision(), today, func() cache.Dashboard {
		return cache.BuildDashboard(s.store.Snapshot(), today)
	})
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeData(w, http.StatusOK, d, "")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc := s.transfer.Export(r.Context())
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+dataio.DefaultFilename+`"`)
	if err := dataio.Encode(w, doc); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Export write failed", log.FieldError, err)
	}
}

// handleImport applies a backup document from the body. An empty body is a
// cancelled import and changes nothing.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	mode, err := dataio.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body := http.MaxBytesReader(w, r.Body, maxImportBytes)
	res, err := s.transfer.Import(r.Context(), body, mode)
	s.respond(w, r, http.StatusOK, res, err)
}
