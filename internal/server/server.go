// Package server exposes the ranking dashboard's HTTP API.
package server

import (
	"context"
	"net/http"
	"time"

	"igviral/pkg/config"
	"igviral/pkg/explore"
	"igviral/pkg/hiker"
	"igviral/pkg/logger"
	"igviral/pkg/mediacache"
	"igviral/pkg/settings"
)

// Server wires the upstream clients, pagination contexts, and media cache
// behind the dashboard API.
type Server struct {
	cfg      *config.Config
	hiker    *hiker.Client
	explore  *explore.Client
	media    *mediacache.Cache
	blobs    *mediacache.BlobStore
	settings settings.Store
	contexts *contextRegistry
	prefetch *mediacache.Prefetcher
	logger   logger.Logger

	httpServer *http.Server
}

// SetPrefetcher enables concurrent cache warm-up for result pages
func (s *Server) SetPrefetcher(p *mediacache.Prefetcher) {
	s.prefetch = p
}

// New creates a server over the given collaborators
func New(
	cfg *config.Config,
	hikerClient *hiker.Client,
	exploreClient *explore.Client,
	media *mediacache.Cache,
	blobs *mediacache.BlobStore,
	settingsStore settings.Store,
	log logger.Logger,
) *Server {
	if log == nil {
		log = logger.GetLogger()
	}

	s := &Server{
		cfg:      cfg,
		hiker:    hikerClient,
		explore:  exploreClient,
		media:    media,
		blobs:    blobs,
		settings: settingsStore,
		logger:   log,
	}
	s.contexts = newContextRegistry(s.fetchFuncFor, log)

	s.httpServer = &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      withRequestID(withLogging(log, s.routes())),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search/keyword", s.handleKeywordSearch)
	mux.HandleFunc("GET /api/search/account", s.handleAccountSearch)
	mux.HandleFunc("GET /api/profile", s.handleProfile)
	mux.HandleFunc("GET /api/explore", s.handleExplore)
	mux.HandleFunc("GET /api/explore/topic", s.handleExploreTopic)
	mux.HandleFunc("GET /api/locations", s.handleLocations)
	mux.HandleFunc("GET /media/{ref}", s.handleMedia)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// Start begins listening for HTTP requests. Blocks until shutdown or error.
func (s *Server) Start() error {
	s.logger.InfoWithFields("starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
