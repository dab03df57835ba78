package handlers

import (
	"net/http"

	"github.com/mlenoir/vidvault/internal/models"
	"github.com/mlenoir/vidvault/internal/services/catalog"
	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/sirupsen/logrus"
)

// Videos under this prefix make up the library
const videosPrefix = "videos/"

// VideosHandler serves the catalog listing
type VideosHandler struct {
	store  storage.Factory
	logger *logrus.Logger
}

// NewVideosHandler creates a new catalog listing handler
func NewVideosHandler(store storage.Factory, logger *logrus.Logger) *VideosHandler {
	return &VideosHandler{store: store, logger: logger}
}

type videosResponse struct {
	Videos             []models.VideoEntry `json:"videos"`
	Count              int                 `json:"count"`
	Provider           models.Provider     `json:"provider"`
	AvailableProviders map[string]bool     `json:"availableProviders"`
}

type groupedVideosResponse struct {
	Grouped            map[string]map[int][]models.VideoEntry `json:"grouped"`
	Ungrouped          []models.VideoEntry                    `json:"ungrouped"`
	Count              int                                    `json:"count"`
	Provider           models.Provider                        `json:"provider"`
	AvailableProviders map[string]bool                        `json:"availableProviders"`
}

type nextEpisodeResponse struct {
	Next     *models.VideoEntry `json:"next"`
	Provider models.Provider    `json:"provider"`
}

// ServeHTTP lists the videos folder and rebuilds the catalog from it.
// With grouped=1 the catalog is arranged series -> season -> episodes.
func (h *VideosHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	cat, ok := h.buildCatalog(w, r)
	if !ok {
		return
	}

	if isTruthy(r.URL.Query().Get("grouped")) {
		g := catalog.GroupBySeries(cat.Videos)
		writeJSON(w, http.StatusOK, groupedVideosResponse{
			Grouped:            g.Grouped,
			Ungrouped:          g.Ungrouped,
			Count:              len(cat.Videos),
			Provider:           cat.Provider,
			AvailableProviders: h.store.Available(),
		})
		return
	}

	writeJSON(w, http.StatusOK, videosResponse{
		Videos:             cat.Videos,
		Count:              len(cat.Videos),
		Provider:           cat.Provider,
		AvailableProviders: h.store.Available(),
	})
}

// NextEpisode resolves the episode following the given video within its
// series. Next is null when the video is the series' last episode or
// carries no episode metadata.
func (h *VideosHandler) NextEpisode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeError(w, http.StatusBadRequest, "Video key is required")
		return
	}

	cat, ok := h.buildCatalog(w, r)
	if !ok {
		return
	}

	var current *models.VideoEntry
	for i := range cat.Videos {
		if cat.Videos[i].Key == key {
			current = &cat.Videos[i]
			break
		}
	}
	if current == nil {
		writeError(w, http.StatusNotFound, "Video not found")
		return
	}

	writeJSON(w, http.StatusOK, nextEpisodeResponse{
		Next:     catalog.FindNextEpisode(*current, cat.Videos),
		Provider: cat.Provider,
	})
}

// buildCatalog lists the videos folder and reconciles it into a catalog,
// writing the error response itself on failure
func (h *VideosHandler) buildCatalog(w http.ResponseWriter, r *http.Request) (models.Catalog, bool) {
	client, ok := resolveStore(w, h.store, r.URL.Query().Get("provider"), h.logger)
	if !ok {
		return models.Catalog{}, false
	}

	objects, err := client.List(r.Context(), videosPrefix)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list videos")
		writeErrorDetails(w, http.StatusInternalServerError, "Failed to list videos", err.Error())
		return models.Catalog{}, false
	}

	return catalog.Build(objects, client.Provider()), true
}

func isTruthy(v string) bool {
	return v == "1" || v == "true"
}
