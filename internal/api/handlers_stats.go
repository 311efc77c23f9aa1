package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"documents":       s.orchestrator.Processor().Stats().Snapshot(),
		"queue_depth":     s.orchestrator.QueueDepth(),
		"cached_outlines": s.outlines.ItemCount(),
	})
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"personas": s.orchestrator.Processor().Personas().Names(),
	})
}
