package vetting

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"scamscan-engine/classify"
)

// Handler exposes an Engine over HTTP.
type Handler struct {
	engine *Engine
}

func NewHandler(e *Engine) *Handler {
	return &Handler{engine: e}
}

// Check serves GET /api/check?type=&value=
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()

	value := r.URL.Query().Get("value")
	if value == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'value' parameter"})
		return
	}

	kind, err := classify.ParseKind(r.URL.Query().Get("type"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	log.Printf("[Check] %s request value=%q type=%q", reqID, value, kind)

	res, err := h.engine.Check(r.Context(), kind, value)
	if errors.Is(err, ErrInvalidInput) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing 'value' parameter"})
		return
	}
	if err != nil {
		log.Printf("[Check] %s failed: %v", reqID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal error"})
		return
	}

	writeJSON(w, http.StatusOK, res)
	log.Printf("[Check] %s completed for %s: %s", reqID, res.Input, res.Verdict)
}

// Ping serves GET /api/ping
func (h *Handler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
