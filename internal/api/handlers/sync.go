package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/mlenoir/vidvault/internal/services/syncer"
	"github.com/sirupsen/logrus"
)

// SyncHandler is the server side of the progress sync protocol. One JSON
// blob per sync code lives in the object store; every POST read-modify-
// writes the whole blob through the per-key last-write-wins merge.
//
// Two devices pushing around the same moment can each read a stale blob
// and the later write clobbers keys the earlier one added. That race is
// accepted: the next sync from either device converges the state again.
type SyncHandler struct {
	store  storage.Factory
	logger *logrus.Logger
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(store storage.Factory, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{store: store, logger: logger}
}

type syncGetResponse struct {
	Code        string             `json:"code"`
	Progress    models.ProgressMap `json:"progress"`
	LastUpdated int64              `json:"lastUpdated,omitempty"`
	IsNew       bool               `json:"isNew,omitempty"`
}

type syncPostRequest struct {
	Code     string             `json:"code"`
	Progress models.ProgressMap `json:"progress"`
}

type syncPostResponse struct {
	Success     bool   `json:"success"`
	Code        string `json:"code"`
	LastUpdated int64  `json:"lastUpdated"`
}

// ServeHTTP routes the sync endpoint by verb
func (h *SyncHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r)
	case http.MethodPost:
		h.handlePost(w, r)
	default:
		methodNotAllowed(w)
	}
}

// handleGet returns the blob for a code, or mints a fresh unused code
// when none is supplied
func (h *SyncHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")

	if code == "" {
		writeJSON(w, http.StatusOK, syncGetResponse{
			Code:     syncer.GenerateCode(),
			Progress: models.ProgressMap{},
			IsNew:    true,
		})
		return
	}

	code = syncer.NormalizeCode(code)
	if !syncer.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "Invalid sync code")
		return
	}

	client, ok := resolveStore(w, h.store, "", h.logger)
	if !ok {
		return
	}

	blob, err := client.LoadBlob(r.Context(), code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Sync code not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load sync blob")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to load sync data", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, syncGetResponse{
		Code:        code,
		Progress:    blob.WatchProgress,
		LastUpdated: blob.LastUpdated,
	})
}

// handlePost merges the pushed progress into the stored blob
func (h *SyncHandler) handlePost(w http.ResponseWriter, r *http.Request) {
	var req syncPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "Sync code is required")
		return
	}
	code := syncer.NormalizeCode(req.Code)
	if !syncer.ValidCode(code) {
		writeError(w, http.StatusBadRequest, "Invalid sync code")
		return
	}
	if req.Progress == nil {
		writeError(w, http.StatusBadRequest, "Progress data is required")
		return
	}

	client, ok := resolveStore(w, h.store, "", h.logger)
	if !ok {
		return
	}

	existing := models.ProgressMap{}
	blob, err := client.LoadBlob(r.Context(), code)
	switch {
	case err == nil:
		existing = blob.WatchProgress
	case errors.Is(err, storage.ErrNotFound):
		// First push for this code
	default:
		h.logger.WithError(err).Error("Failed to load sync blob")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to load sync data", err.Error())
		return
	}

	now := time.Now().UnixMilli()
	merged := &models.RemoteProgressBlob{
		WatchProgress: syncer.Merge(existing, req.Progress),
		LastUpdated:   now,
	}
	if err := client.SaveBlob(r.Context(), code, merged); err != nil {
		h.logger.WithError(err).Error("Failed to save sync blob")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to save sync data", err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"code":    code,
		"records": len(merged.WatchProgress),
	}).Debug("Merged progress push")

	writeJSON(w, http.StatusOK, syncPostResponse{
		Success:     true,
		Code:        code,
		LastUpdated: now,
	})
}
