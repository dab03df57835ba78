package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mlenoir/vidvault/internal/services/syncer"
	"github.com/sirupsen/logrus"
)

// PairHandler manages this device's side of the sync pairing: reading or
// minting the active code, and adopting a code from another device
type PairHandler struct {
	engine *syncer.Engine
	logger *logrus.Logger
}

// NewPairHandler creates a new pairing handler
func NewPairHandler(engine *syncer.Engine, logger *logrus.Logger) *PairHandler {
	return &PairHandler{engine: engine, logger: logger}
}

type pairRequest struct {
	Code string `json:"code"`
}

// ServeHTTP returns the active sync code on GET, adopts a new one on POST
func (h *PairHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		code, err := h.engine.EnsureCode(r.Context())
		if err != nil {
			h.logger.WithError(err).Error("Failed to initialize sync code")
			writeErrorDetails(w, http.StatusInternalServerError, "Failed to initialize sync code", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"code": code})

	case http.MethodPost:
		var req pairRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		err := h.engine.AdoptCode(r.Context(), req.Code)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"code":    syncer.NormalizeCode(req.Code),
			})
		case errors.Is(err, syncer.ErrInvalidCode):
			writeError(w, http.StatusBadRequest, "Invalid sync code")
		case errors.Is(err, syncer.ErrCodeNotFound):
			writeError(w, http.StatusNotFound, "Sync code not found")
		default:
			h.logger.WithError(err).Error("Failed to adopt sync code")
			writeErrorDetails(w, http.StatusInternalServerError, "Failed to adopt sync code", err.Error())
		}

	default:
		methodNotAllowed(w)
	}
}
