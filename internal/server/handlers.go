package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"

	"github.com/spotter-dev/spotter/internal/models"
	"github.com/spotter-dev/spotter/internal/vars"
	"github.com/spotter-dev/spotter/pkg/a2s"
)

// respondJSON writes v as a JSON body with the given status code.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// parseEndpoint extracts and validates the host and port query parameters.
func parseEndpoint(r *http.Request) (string, int, error) {
	host := r.URL.Query().Get("host")
	portStr := r.URL.Query().Get("port")

	if host == "" || portStr == "" {
		return "", 0, errors.New("missing host or port")
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portStr)
	}

	return host, port, nil
}

// handleAddServer registers a server on the watchlist. Re-registering a watch
// seen within the soft limit window is acknowledged without a database write.
func (s *Server) handleAddServer(w http.ResponseWriter, r *http.Request) {
	ip := GetRealIP(r, s.trustProxy)

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	var req models.WatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Debug().Err(err).Str("ip", ip).Msg("Invalid JSON")
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if req.Host == "" {
		http.Error(w, "Missing host", http.StatusBadRequest)
		return
	}
	if req.Port <= 0 || req.Port > 65535 {
		log.Debug().
			Str("ip", ip).
			Str("host", req.Host).
			Int("port", req.Port).
			Msg("Invalid port")

		http.Error(w, "Invalid port", http.StatusBadRequest)
		return
	}

	// Soft limit
	softKey := xxhash.Sum64String(fmt.Sprintf("%s:%d", req.Host, req.Port))
	if val, ok := s.seenCache.Load(softKey); ok {
		if lastSeen, ok := val.(time.Time); ok {
			if time.Since(lastSeen) < s.softLimitDur {
				log.Trace().
					Str("host", req.Host).
					Int("port", req.Port).
					Msg("Dropped by soft limit hit")

				respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Already watched"})
				return
			}
		}
	}
	s.seenCache.Store(softKey, time.Now())

	var country string
	if s.geoip != nil {
		country = s.geoip.GetCountryCode(req.Host)
	}

	now := time.Now()
	srv := models.Server{
		Host:        req.Host,
		Port:        req.Port,
		CountryCode: country,
		FirstSeen:   now,
		LastSeen:    now,
	}

	if err := s.storage.UpsertServer(srv); err != nil {
		log.Error().Err(err).Msg("Failed to save server to DB")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("host", req.Host).
		Int("port", req.Port).
		Str("ip", ip).
		Msg("Server added to watchlist")

	respondJSON(w, http.StatusCreated, map[string]string{"status": "ok", "message": "Server watched"})
}

// handleListServers returns every watched server joined with its latest snapshot.
// This endpoint is protected by AdminAuthMiddleware.
func (s *Server) handleListServers(w http.ResponseWriter, _ *http.Request) {
	servers, err := s.storage.GetServers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	statuses := make([]models.ServerStatus, 0, len(servers))
	for _, srv := range servers {
		latest, err := s.storage.LatestSnapshot(srv.Host, srv.Port)
		if err != nil {
			log.Error().Err(err).
				Str("host", srv.Host).
				Int("port", srv.Port).
				Msg("Failed to fetch latest snapshot")
		}
		statuses = append(statuses, models.ServerStatus{Server: srv, Latest: latest})
	}

	respondJSON(w, http.StatusOK, statuses)
}

// handleDeleteServer removes a watched server and its history.
// Query params: ?host=1.2.3.4&port=27015
func (s *Server) handleDeleteServer(w http.ResponseWriter, r *http.Request) {
	host, port, err := parseEndpoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.storage.DeleteServer(host, port); err != nil {
		log.Error().Err(err).
			Str("host", host).
			Int("port", port).
			Msg("Failed to delete server")

		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("host", host).
		Int("port", port).
		Msg("Server removed from watchlist")

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Server deleted"})
}

// handleQuery performs a live A2S_INFO query against an arbitrary endpoint.
// It acts as a proxy to retrieve real-time server status.
// Query params: ?host=1.2.3.4&port=27015
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	host, port, err := parseEndpoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	info, err := s.querier.Info(host, port)
	if err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, a2s.ErrTimeout):
			status = http.StatusGatewayTimeout
		case errors.Is(err, a2s.ErrResolution):
			status = http.StatusBadRequest
		}

		respondJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	respondJSON(w, http.StatusOK, info)
}

// handleHistory returns recorded snapshots for one watched server, newest first.
// Query params: ?host=1.2.3.4&port=27015&limit=100
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	host, port, err := parseEndpoint(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	snapshots, err := s.storage.GetHistory(host, port, limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch history")
		http.Error(w, "Database Error", http.StatusInternalServerError)
		return
	}

	if snapshots == nil {
		snapshots = []models.Snapshot{}
	}

	respondJSON(w, http.StatusOK, snapshots)
}

// handleVersion returns the build information.
func handleVersion(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, vars.Info())
}
