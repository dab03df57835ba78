package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/sirupsen/logrus"
)

// errorResponse is the stable failure shape for every JSON endpoint
type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeErrorDetails(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// resolveStore maps provider resolution failures onto the error taxonomy:
// an unknown identifier is the caller's fault, missing credentials are a
// server-side unconfigured condition
func resolveStore(w http.ResponseWriter, f storage.Factory, preferred string, logger *logrus.Logger) (storage.ObjectStore, bool) {
	client, err := f.ForProvider(preferred)
	if err == nil {
		return client, true
	}
	if errors.Is(err, storage.ErrUnknownProvider) {
		writeError(w, http.StatusBadRequest, "Unknown storage provider")
		return nil, false
	}
	logger.Error("No storage provider configured")
	writeError(w, http.StatusInternalServerError, "No storage provider configured")
	return nil, false
}
