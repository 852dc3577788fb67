// Package maintenance provides one-shot tasks for cleaning and refreshing the database.
package maintenance

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/spotter-dev/spotter/internal/config"
	"github.com/spotter-dev/spotter/internal/models"
	"github.com/spotter-dev/spotter/internal/poller"
	"github.com/spotter-dev/spotter/internal/storage"
)

// Run checks if any maintenance flags are set and executes the corresponding tasks.
// Returns true if a maintenance task was executed (indicating the program should exit).
func Run(cfg *config.Config, store *storage.Repository, querier poller.Querier) bool {
	if cfg.Storage.PruneOffline {
		log.Info().Msg("Pruning servers that never answered...")

		count, err := store.DeleteNeverSeen()
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune servers")
		} else {
			log.Info().Int64("deleted", count).Msg("Prune finished")
		}

		return true
	}

	if cfg.Storage.PruneOlder > 0 {
		cutoff := time.Now().Add(-cfg.Storage.PruneOlder)
		log.Info().Time("cutoff", cutoff).Msg("Pruning old snapshots...")

		count, err := store.PruneSnapshots(cutoff)
		if err != nil {
			log.Error().Err(err).Msg("Failed to prune snapshots")
		} else {
			log.Info().Int64("deleted", count).Msg("Snapshot prune finished")
		}

		return true
	}

	if !cfg.Storage.CheckAll {
		return false
	}

	servers, err := store.GetServers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch servers")
		return true
	}

	if len(servers) == 0 {
		log.Info().Msg("No servers found for maintenance")
		return true
	}

	log.Info().Int("count", len(servers)).Msg("Re-checking all watched servers...")
	runWorkerPool(servers, store, querier, cfg.Poller.Workers)
	log.Info().Msg("Maintenance task completed")

	return true
}

func runWorkerPool(servers []models.Server, store *storage.Repository, querier poller.Querier, workers int) {
	jobs := make(chan models.Server, len(servers))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for srv := range jobs {
				checkServer(srv, store, querier)
			}
		}()
	}

	for _, srv := range servers {
		jobs <- srv
	}
	close(jobs)

	wg.Wait()
}

func checkServer(srv models.Server, store *storage.Repository, querier poller.Querier) {
	logCtx := log.With().
		Str("host", srv.Host).
		Int("port", srv.Port).
		Logger()

	snap := querier.Snapshot(srv.Host, srv.Port)

	if err := store.InsertSnapshot(snap); err != nil {
		logCtx.Error().Err(err).Msg("Failed to record snapshot")
		return
	}

	if snap.Online {
		logCtx.Trace().Msg("Server is up")
	} else {
		logCtx.Debug().Msg("Server unreachable")
	}
}
