package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/sirupsen/logrus"
)

// StreamHandler issues presigned GET URLs for playback. The same endpoint
// serves subtitle files, which stream over the identical capability.
type StreamHandler struct {
	store  storage.Factory
	logger *logrus.Logger
}

// NewStreamHandler creates a new stream URL handler
func NewStreamHandler(store storage.Factory, logger *logrus.Logger) *StreamHandler {
	return &StreamHandler{store: store, logger: logger}
}

type streamRequest struct {
	Key      string `json:"key"`
	Provider string `json:"provider"`
}

type streamResponse struct {
	StreamURL string          `json:"streamUrl"`
	Provider  models.Provider `json:"provider"`
}

// ServeHTTP handles the stream URL endpoint
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req streamRequest
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

	streamURL, err := client.SignedGetURL(r.Context(), req.Key)
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate stream URL")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to generate stream URL", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, streamResponse{
		StreamURL: streamURL,
		Provider:  client.Provider(),
	})
}
