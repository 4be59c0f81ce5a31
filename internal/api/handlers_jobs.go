package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/KomaiX512/insightdeck/internal/pipeline"
)

type batchItem struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload"`
}

type batchRequest struct {
	UserID string      `json:"user_id"`
	Items  []batchItem `json:"items"`
}

func (s *Server) handleBatchDecode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.Items) == 0 {
		jsonError(w, "items is required", http.StatusBadRequest)
		return
	}

	items := make([]pipeline.PayloadItem, 0, len(req.Items))
	for i, it := range req.Items {
		if len(it.Payload) == 0 {
			jsonError(w, "item payload is required", http.StatusBadRequest)
			return
		}
		name := it.Name
		if name == "" {
			name = fmt.Sprintf("item-%d", i+1)
		}
		items = append(items, pipeline.PayloadItem{Name: name, Raw: it.Payload})
	}

	job := pipeline.NewJob(req.UserID)
	job.SetItems(items)

	if err := s.orchestrator.Submit(job); err != nil {
		s.log.Warn("batch submit rejected", "job_id", job.ID, "error", err)
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	s.log.Info("batch decode accepted", "job_id", job.ID, "items", len(items))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"job_id":     job.ID,
		"status":     job.Status,
		"item_count": len(items),
	})
}

func (s *Server) handleBatchStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	resp := map[string]any{
		"job_id":   snap.ID,
		"status":   snap.Status,
		"phase":    snap.Phase,
		"progress": snap.Progress,
	}
	if snap.UserID != "" {
		resp["user_id"] = snap.UserID
	}
	if snap.Status == pipeline.StatusCompleted || snap.Status == pipeline.StatusPartial {
		resp["results"] = job.Results()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
