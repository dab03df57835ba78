package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/progress"
	"github.com/sirupsen/logrus"
)

// ProgressHandler exposes this device's local watch progress
type ProgressHandler struct {
	store  *progress.Store
	logger *logrus.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(store *progress.Store, logger *logrus.Logger) *ProgressHandler {
	return &ProgressHandler{store: store, logger: logger}
}

type saveProgressRequest struct {
	Key         string  `json:"key"`
	CurrentTime float64 `json:"currentTime"`
	Duration    float64 `json:"duration"`
}

type clearProgressRequest struct {
	Key string `json:"key"`
}

// ServeHTTP reads or records progress for this device
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"progress": h.store.All(),
		})
	case http.MethodPost:
		h.handleSave(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (h *ProgressHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var req saveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "Video key is required")
		return
	}
	if req.Duration <= 0 {
		writeError(w, http.StatusBadRequest, "Duration must be positive")
		return
	}

	if err := h.store.Save(req.Key, req.CurrentTime, req.Duration); err != nil {
		h.logger.WithError(err).Error("Failed to save progress")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to save progress", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"percent": h.store.Percent(req.Key),
		"watched": h.store.IsWatched(req.Key),
	})
}

// ContinueWatching serves the in-progress set plus recently watched keys
func (h *ProgressHandler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	videos := h.store.InProgress()
	if videos == nil {
		videos = []models.InProgressVideo{}
	}
	recent := h.store.RecentlyWatched()
	if recent == nil {
		recent = []string{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos":          videos,
		"recentlyWatched": recent,
	})
}

// Clear removes the progress record for one video
func (h *ProgressHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req clearProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "Video key is required")
		return
	}

	if err := h.store.Clear(req.Key); err != nil {
		h.logger.WithError(err).Error("Failed to clear progress")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to clear progress", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
