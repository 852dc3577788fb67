// Package query provides functionality to query game servers using the Source Engine Query (A2S) protocol.
package query

import (
	"time"

	"github.com/spotter-dev/spotter/internal/config"
	"github.com/spotter-dev/spotter/internal/models"
	"github.com/spotter-dev/spotter/pkg/a2s"
)

// Service issues A2S queries with the configured timeout and buffer size.
// Each call opens its own client, so a Service is safe for concurrent use.
type Service struct {
	options config.Query
}

// New creates a query service from the application configuration.
func New(options config.Query) *Service {
	return &Service{options: options}
}

// Info connects to a game server via UDP and requests A2S_INFO.
// It returns server details (such as name, map, players) or an error if the server is unreachable.
func (s *Service) Info(host string, port int) (*a2s.Info, error) {
	client, err := a2s.New(host, port)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	client.Timeout = s.options.Timeout
	client.BufferSize = s.options.BufferSize

	return client.GetInfo()
}

// Snapshot queries a server and folds the outcome into a snapshot record.
// Query failures produce an offline snapshot rather than an error.
func (s *Service) Snapshot(host string, port int) models.Snapshot {
	snap := models.Snapshot{
		Host:     host,
		Port:     port,
		PolledAt: time.Now(),
	}

	info, err := s.Info(host, port)
	if err != nil {
		return snap
	}

	snap.Online = true
	snap.ServerName = info.Name
	snap.MapName = info.Map
	snap.GameName = info.Game
	snap.GameVersion = info.Version
	snap.ServerOS = info.Environment.String()
	snap.Players = info.Players
	snap.MaxPlayers = info.MaxPlayers
	snap.Bots = info.Bots
	snap.PingMs = info.Ping.Milliseconds()

	return snap
}
