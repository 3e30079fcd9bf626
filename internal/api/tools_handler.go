// File path: internal/api/tools_handler.go
package api

import (
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/Reciplan_phase1/internal/catalog"
	"github.com/nicodishanthj/Reciplan_phase1/internal/common"
)

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	tools, err := s.store.ListTools(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools,
		"count": len(tools),
	})
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	toolID := chi.URLParam(r, "toolID")
	tool, err := s.store.GetTool(r.Context(), toolID)
	if err != nil {
		if errors.Is(err, catalog.ErrToolNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tools, err := s.store.ListTools(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	providerName := ""
	if s.provider != nil {
		providerName = s.provider.Name()
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:            "ok",
		SearcherAvailable: s.searcher.Available(),
		CatalogTools:      len(tools),
		Provider:          providerName,
	})
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	entries := append([]common.LogEntry(nil), common.LogEntries()...)
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
