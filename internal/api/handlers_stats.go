package api

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleDecoderStats(w http.ResponseWriter, r *http.Request) {
	snap := s.stats.Snapshot()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"decoder":     snap,
		"token_cache": s.dec.CacheStats(),
		"queue_depth": s.orchestrator.QueueDepth(),
	})
}
