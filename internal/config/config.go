// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/spotter-dev/spotter/internal/logger"
	"github.com/spotter-dev/spotter/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	Server  Server        `group:"Server Options" env-namespace:"SPOTTER"`
	Storage Storage       `group:"Storage Options" namespace:"db" env-namespace:"SPOTTER_DB"`
	GeoIP   GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"SPOTTER_GEOIP"`
	Limits  Limits        `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"SPOTTER_RATE_LIMIT"`
	Query   Query         `group:"Query Options" namespace:"query" env-namespace:"SPOTTER_QUERY"`
	Poller  Poller        `group:"Poller Options" namespace:"poll" env-namespace:"SPOTTER_POLL"`
	Logger  logger.Config `group:"Logger Options" namespace:"log" env-namespace:"SPOTTER_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds web server configuration.
type Server struct {
	Address     string `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	AuthToken   string `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Admin authentication token"`
	MaxBodySize int64  `long:"max-body-size" env:"MAX_BODY_SIZE" description:"Max body size for incoming requests" default:"512"`
	TrustProxy  bool   `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// Storage holds database configuration and one-shot maintenance flags.
type Storage struct {
	Path          string        `short:"d" long:"path" env:"PATH" description:"Path to SQLite database" default:"spotter.db"`
	PruneOffline  bool          `long:"prune-offline" description:"Delete watched servers that never answered a query, then exit"`
	PruneOlder    time.Duration `long:"prune-snapshots" description:"Delete snapshots older than the given duration (e.g. 720h), then exit"`
	CheckAll      bool          `long:"check-all" description:"Query every watched server now, record snapshots, then exit"`
	GenerateCount int           `long:"gen-fake-data" hidden:"true"`
}

// GeoIP holds MaxMind GeoIP configuration.
type GeoIP struct {
	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file" default:"spotter.mmdb"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// Query holds Source Query protocol client configuration.
type Query struct {
	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query timeout" default:"3s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
}

// Poller holds background polling configuration.
type Poller struct {
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"How often watched servers are re-queried" default:"1m"`
	Workers  int           `long:"workers" env:"WORKERS" description:"Concurrent query workers" default:"10"`
	Rate     float64       `long:"rate" env:"RATE" description:"Outgoing queries per second across all workers" default:"20"`
}

// Limits holds API rate limiting configuration.
type Limits struct {
	HardLimitCount int           `long:"hard-count" env:"HARD_COUNT" description:"Hard IP limit: requests count" default:"8"`
	HardLimitWin   time.Duration `long:"hard-window" env:"HARD_WINDOW" description:"Hard IP limit: window duration" default:"1m"`
	SoftLimitDur   time.Duration `long:"soft" env:"SOFT" description:"Ignore re-registering a watch seen within duration" default:"5m"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	if cfg.Server.AuthToken == "" {
		fmt.Fprintln(os.Stderr,
			"Required flag `-t, --auth-token' or environment variable `SPOTTER_AUTH_TOKEN` was not specified!")
		os.Exit(1)
	}

	if cfg.Poller.Workers <= 0 {
		cfg.Poller.Workers = 1
	}

	return &cfg
}
