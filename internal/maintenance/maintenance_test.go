package maintenance

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotter-dev/spotter/internal/config"
	"github.com/spotter-dev/spotter/internal/models"
	"github.com/spotter-dev/spotter/internal/storage"
)

// staticQuerier answers every check with the same snapshot.
type staticQuerier struct {
	online bool
}

func (q *staticQuerier) Snapshot(host string, port int) models.Snapshot {
	return models.Snapshot{
		Host:       host,
		Port:       port,
		Online:     q.online,
		ServerName: "Checked Server",
		PolledAt:   time.Now(),
	}
}

func newTestStore(t *testing.T) *storage.Repository {
	t.Helper()

	store, err := storage.New(filepath.Join(t.TempDir(), "spotter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func addServer(t *testing.T, store *storage.Repository, host string, port int) {
	t.Helper()

	now := time.Now()
	require.NoError(t, store.UpsertServer(models.Server{
		Host: host, Port: port, FirstSeen: now, LastSeen: now,
	}))
}

func TestRunWithoutFlags(t *testing.T) {
	store := newTestStore(t)
	cfg := &config.Config{}

	assert.False(t, Run(cfg, store, &staticQuerier{}))
}

func TestRunPruneOffline(t *testing.T) {
	store := newTestStore(t)
	addServer(t, store, "192.0.2.10", 27015)
	addServer(t, store, "192.0.2.20", 27015)

	require.NoError(t, store.InsertSnapshot(models.Snapshot{
		Host: "192.0.2.10", Port: 27015, Online: true, PolledAt: time.Now(),
	}))

	cfg := &config.Config{}
	cfg.Storage.PruneOffline = true

	require.True(t, Run(cfg, store, &staticQuerier{}))

	servers, err := store.GetServers()
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, "192.0.2.10", servers[0].Host)
}

func TestRunPruneOldSnapshots(t *testing.T) {
	store := newTestStore(t)
	addServer(t, store, "192.0.2.10", 27015)

	require.NoError(t, store.InsertSnapshot(models.Snapshot{
		Host: "192.0.2.10", Port: 27015, Online: true, PolledAt: time.Now().Add(-48 * time.Hour),
	}))
	require.NoError(t, store.InsertSnapshot(models.Snapshot{
		Host: "192.0.2.10", Port: 27015, Online: true, PolledAt: time.Now(),
	}))

	cfg := &config.Config{}
	cfg.Storage.PruneOlder = 24 * time.Hour

	require.True(t, Run(cfg, store, &staticQuerier{}))

	history, err := store.GetHistory("192.0.2.10", 27015, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestRunCheckAll(t *testing.T) {
	store := newTestStore(t)
	addServer(t, store, "192.0.2.10", 27015)
	addServer(t, store, "192.0.2.20", 27015)

	cfg := &config.Config{}
	cfg.Storage.CheckAll = true
	cfg.Poller.Workers = 2

	require.True(t, Run(cfg, store, &staticQuerier{online: true}))

	for _, host := range []string{"192.0.2.10", "192.0.2.20"} {
		latest, err := store.LatestSnapshot(host, 27015)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.True(t, latest.Online)
		assert.Equal(t, "Checked Server", latest.ServerName)
	}
}
