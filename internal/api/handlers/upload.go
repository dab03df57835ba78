package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/mlenoir/vidvault/internal/utils"
	"github.com/sirupsen/logrus"
)

// UploadHandler issues presigned PUT URLs. Uploaded keys are prefixed
// with an epoch-millis timestamp so the original filename survives in a
// recoverable form and repeated uploads never collide.
type UploadHandler struct {
	store  storage.Factory
	logger *logrus.Logger
}

// NewUploadHandler creates a new upload URL handler
func NewUploadHandler(store storage.Factory, logger *logrus.Logger) *UploadHandler {
	return &UploadHandler{store: store, logger: logger}
}

type uploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Provider    string `json:"provider"`
}

type uploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	Key       string `json:"key"`
}

// ServeHTTP handles the upload URL endpoint
func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req uploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Filename == "" {
		writeError(w, http.StatusBadRequest, "Filename is required")
		return
	}

	client, ok := resolveStore(w, h.store, req.Provider, h.logger)
	if !ok {
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}

	key := fmt.Sprintf("videos/%d-%s", time.Now().UnixMilli(), utils.SanitizeFilename(req.Filename))

	uploadURL, err := client.SignedPutURL(r.Context(), key, contentType, map[string]string{
		"original-filename": req.Filename,
		"upload-date":       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to generate upload URL")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to generate upload URL", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		UploadURL: uploadURL,
		Key:       key,
	})
}
