package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mlenoir/vidvault/internal/api/handlers"
	"github.com/mlenoir/vidvault/internal/api/middleware"
	"github.com/mlenoir/vidvault/internal/config"
	"github.com/mlenoir/vidvault/internal/services/progress"
	"github.com/mlenoir/vidvault/internal/services/storage"
	"github.com/mlenoir/vidvault/internal/services/syncer"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	logger *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	store storage.Factory,
	progressStore *progress.Store,
	engine *syncer.Engine,
	logger *logrus.Logger,
) *Server {
	s := &Server{logger: logger}

	mux := http.NewServeMux()
	s.setupRoutes(mux, store, progressStore, engine)

	handler := middleware.Logging(middleware.Metrics(middleware.CORS(mux)), logger)

	s.server = &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(
	mux *http.ServeMux,
	store storage.Factory,
	progressStore *progress.Store,
	engine *syncer.Engine,
) {
	// Health check and metrics
	healthHandler := handlers.NewHealthHandler(s.logger)
	mux.HandleFunc("/health", healthHandler.ServeHTTP)
	mux.Handle("/metrics", promhttp.Handler())

	// Catalog and object-store capabilities
	videosHandler := handlers.NewVideosHandler(store, s.logger)
	mux.HandleFunc("/api/videos", videosHandler.ServeHTTP)
	mux.HandleFunc("/api/videos/next", videosHandler.NextEpisode)

	streamHandler := handlers.NewStreamHandler(store, s.logger)
	mux.HandleFunc("/api/stream-url", streamHandler.ServeHTTP)

	uploadHandler := handlers.NewUploadHandler(store, s.logger)
	mux.HandleFunc("/api/upload-url", uploadHandler.ServeHTTP)

	deleteHandler := handlers.NewDeleteHandler(store, s.logger)
	mux.HandleFunc("/api/delete", deleteHandler.ServeHTTP)

	// Progress sync, server side
	syncHandler := handlers.NewSyncHandler(store, s.logger)
	mux.HandleFunc("/api/sync", syncHandler.ServeHTTP)

	// Device-local progress and pairing
	progressHandler := handlers.NewProgressHandler(progressStore, s.logger)
	mux.HandleFunc("/api/progress", progressHandler.ServeHTTP)
	mux.HandleFunc("/api/progress/continue", progressHandler.ContinueWatching)
	mux.HandleFunc("/api/progress/clear", progressHandler.Clear)

	pairHandler := handlers.NewPairHandler(engine, s.logger)
	mux.HandleFunc("/api/sync/pair", pairHandler.ServeHTTP)
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.logger.WithField("port", s.server.Addr).Info("Starting HTTP server")

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}
