// Package server implements the HTTP server, middleware, and request handlers for the application.
package server

import (
	"net/http"
	"time"

	"github.com/spotter-dev/spotter/internal/config"
	"github.com/spotter-dev/spotter/internal/geoip"
	"github.com/spotter-dev/spotter/internal/metrics"
	"github.com/spotter-dev/spotter/internal/query"
	"github.com/spotter-dev/spotter/internal/storage"
)

// New creates a new Server instance with the provided storage, GeoIP provider, and configuration.
func New(store *storage.Repository, geo *geoip.Provider, querier *query.Service, cfg *config.Config) *Server {
	return &Server{
		storage:        store,
		geoip:          geo,
		querier:        querier,
		authToken:      cfg.Server.AuthToken,
		maxBody:        cfg.Server.MaxBodySize,
		trustProxy:     cfg.Server.TrustProxy,
		hardLimitCount: cfg.Limits.HardLimitCount,
		hardLimitWin:   cfg.Limits.HardLimitWin,
		softLimitDur:   cfg.Limits.SoftLimitDur,
		shutdown:       make(chan struct{}),
	}
}

// Start launches the seenCache garbage collector.
func (s *Server) Start() {
	go s.gcSeenCache()
}

// Stop halts the background cache cleanup.
func (s *Server) Stop() {
	close(s.shutdown)
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("POST /api/servers", s.RateLimitMiddleware(http.HandlerFunc(s.handleAddServer)))
	mux.Handle("GET /api/servers", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleListServers)))
	mux.Handle("DELETE /api/servers", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleDeleteServer)))
	mux.Handle("GET /api/query", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleQuery)))
	mux.Handle("GET /api/history", AdminAuthMiddleware(s.authToken, http.HandlerFunc(s.handleHistory)))
	mux.Handle("GET /api/version", http.HandlerFunc(handleVersion))
	mux.Handle("GET /metrics", metrics.Handler())

	return s.LoggingMiddleware(mux)
}

// gcSeenCache periodically cleans up expired entries from the soft rate-limit cache.
func (s *Server) gcSeenCache() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdown:
			return
		case <-ticker.C:
			now := time.Now()
			s.seenCache.Range(func(key, value interface{}) bool {
				if t, ok := value.(time.Time); ok {
					if now.Sub(t) > s.softLimitDur {
						s.seenCache.Delete(key)
					}
				} else {
					s.seenCache.Delete(key)
				}
				return true
			})
		}
	}
}
