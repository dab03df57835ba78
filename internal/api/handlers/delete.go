package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/sirupsen/logrus"
)

// DeleteHandler removes one object from the active provider
type DeleteHandler struct {
	store  storage.Factory
	logger *logrus.Logger
}

// NewDeleteHandler creates a new delete handler
func NewDeleteHandler(store storage.Factory, logger *logrus.Logger) *DeleteHandler {
	return &DeleteHandler{store: store, logger: logger}
}

type deleteRequest struct {
	Key      string `json:"key"`
	Provider string `json:"provider"`
}

type deleteResponse struct {
	Success  bool            `json:"success"`
	Key      string          `json:"key"`
	Provider models.Provider `json:"provider"`
}

// ServeHTTP handles the delete endpoint
func (h *DeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "Video key is required")
		return
	}

	client, ok := resolveStore(w, h.store, req.Provider, h.logger)
	if !ok {
		return
	}

	if err := client.Delete(r.Context(), req.Key); err != nil {
		h.logger.WithError(err).Error("Failed to delete video")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to delete video", err.Error())
		return
	}

	h.logger.WithFields(logrus.Fields{
		"key":      req.Key,
		"provider": client.Provider(),
	}).Info("Deleted video")

	writeJSON(w, http.StatusOK, deleteResponse{
		Success:  true,
		Key:      req.Key,
		Provider: client.Provider(),
	})
}
