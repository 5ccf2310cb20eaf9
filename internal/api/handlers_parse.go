package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/jobparse/internal/assemble"
)

// handleParse parses a posting synchronously and returns the Document.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	req, err := assemble.DecodeRequest(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, cached := s.orchestrator.ParseText(r.Context(), req.Text, req.SourceIdentifier)
	if cached {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	writeJSON(w, http.StatusOK, doc)
}
