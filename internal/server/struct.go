package server

import (
	"sync"
	"time"

	"github.com/spotter-dev/spotter/internal/geoip"
	"github.com/spotter-dev/spotter/internal/query"
	"github.com/spotter-dev/spotter/internal/storage"
)

// Server holds the dependencies, configuration, and runtime state required
// to handle HTTP requests.
type Server struct {
	// storage provides access to the persistent database layer.
	storage *storage.Repository

	// geoip resolves IP addresses to country codes.
	// It can be nil if the GeoIP database is not initialized.
	geoip *geoip.Provider

	// querier issues live A2S queries for the proxy endpoint.
	querier *query.Service

	// seenCache tracks recently registered watches (keyed by xxhash of
	// host:port) to skip redundant database writes. Supports the soft
	// rate limit logic.
	seenCache sync.Map

	// authToken is the secret token required by administrative API endpoints.
	authToken string

	// shutdown stops the seenCache garbage collector.
	shutdown chan struct{}

	// maxBody caps the size (in bytes) of incoming request bodies.
	maxBody int64

	// hardLimitCount is the maximum number of requests allowed per IP address
	// within the hardLimitWin duration.
	hardLimitCount int

	// hardLimitWin is the time window duration for the hard rate limiter.
	hardLimitWin time.Duration

	// softLimitDur is the duration for which re-registering a watch is a no-op.
	softLimitDur time.Duration

	// trustProxy indicates whether headers like X-Forwarded-For are trusted
	// when determining the client's real IP address.
	trustProxy bool
}
