// Package poller re-queries watched servers on an interval with a bounded
// worker pool and records the results as snapshots.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/spotter-dev/spotter/internal/config"
	"github.com/spotter-dev/spotter/internal/metrics"
	"github.com/spotter-dev/spotter/internal/models"
	"github.com/spotter-dev/spotter/internal/storage"
)

// Querier produces a poll snapshot for one endpoint.
type Querier interface {
	Snapshot(host string, port int) models.Snapshot
}

// Poller owns the background polling loop: a dispatcher that enqueues the
// watchlist every interval and N workers that query under a shared rate limit.
type Poller struct {
	store   *storage.Repository
	querier Querier
	limiter *rate.Limiter

	jobs     chan models.Server
	shutdown chan struct{}
	done     chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	interval time.Duration
	workers  int
	wg       sync.WaitGroup
}

// New creates a poller. Start must be called to begin polling.
func New(store *storage.Repository, querier Querier, cfg config.Poller) *Poller {
	ctx, cancel := context.WithCancel(context.Background())

	return &Poller{
		store:    store,
		querier:  querier,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Workers),
		jobs:     make(chan models.Server, 1000),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		ctx:      ctx,
		cancel:   cancel,
		interval: cfg.Interval,
		workers:  cfg.Workers,
	}
}

// Start launches the worker pool and the dispatch loop. The watchlist is
// polled once immediately, then every interval.
func (p *Poller) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	go p.dispatch()

	log.Info().
		Int("workers", p.workers).
		Dur("interval", p.interval).
		Msg("Poller started")
}

// Stop halts dispatching, drains the queue and waits for the workers.
func (p *Poller) Stop() {
	close(p.shutdown)
	<-p.done

	p.cancel()
	close(p.jobs)
	p.wg.Wait()

	log.Info().Msg("Poller stopped")
}

func (p *Poller) dispatch() {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.enqueueAll()

	for {
		select {
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.enqueueAll()
		}
	}
}

// enqueueAll loads the watchlist and queues every server for one poll round.
// Servers that do not fit the queue are skipped until the next round.
func (p *Poller) enqueueAll() {
	servers, err := p.store.GetServers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load watchlist for polling")
		return
	}

	metrics.WatchedServers.Set(float64(len(servers)))

	for _, srv := range servers {
		select {
		case p.jobs <- srv:
		default:
			log.Warn().
				Str("host", srv.Host).
				Int("port", srv.Port).
				Msg("Poll queue full, server skipped this round")
		}
	}
}

func (p *Poller) worker() {
	defer p.wg.Done()

	for srv := range p.jobs {
		if err := p.limiter.Wait(p.ctx); err != nil {
			// Shutting down, drain the rest of the queue unqueried.
			continue
		}
		p.poll(srv)
	}
}

func (p *Poller) poll(srv models.Server) {
	snap := p.querier.Snapshot(srv.Host, srv.Port)

	if snap.Online {
		metrics.PollsTotal.WithLabelValues("online").Inc()
		metrics.QueryDuration.Observe(float64(snap.PingMs) / 1000)
	} else {
		metrics.PollsTotal.WithLabelValues("offline").Inc()
	}

	if err := p.store.InsertSnapshot(snap); err != nil {
		log.Error().Err(err).
			Str("host", srv.Host).
			Int("port", srv.Port).
			Msg("Failed to record snapshot")
		return
	}

	log.Trace().
		Str("host", srv.Host).
		Int("port", srv.Port).
		Bool("online", snap.Online).
		Msg("Server polled")
}
