package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotter-dev/spotter/internal/models"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	repo, err := New(filepath.Join(t.TempDir(), "spotter.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	return repo
}

func watchedServer(host string, port int) models.Server {
	now := time.Now().UTC().Truncate(time.Second)
	return models.Server{
		Host:        host,
		Port:        port,
		CountryCode: "DE",
		FirstSeen:   now,
		LastSeen:    now,
	}
}

func onlineSnapshot(host string, port int, at time.Time) models.Snapshot {
	return models.Snapshot{
		Host:        host,
		Port:        port,
		Online:      true,
		ServerName:  "Test Server",
		MapName:     "de_dust2",
		GameName:    "Counter-Strike",
		GameVersion: "1.38",
		ServerOS:    "Linux",
		Players:     12,
		MaxPlayers:  24,
		Bots:        2,
		PingMs:      23,
		PolledAt:    at,
	}
}

func TestUpsertAndGetServer(t *testing.T) {
	repo := newTestRepo(t)
	srv := watchedServer("192.0.2.10", 27015)

	require.NoError(t, repo.UpsertServer(srv))

	got, err := repo.GetServer(srv.Host, srv.Port)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, srv.Host, got.Host)
	assert.Equal(t, srv.Port, got.Port)
	assert.Equal(t, "DE", got.CountryCode)

	// Re-registering must not blank out the country code.
	srv.CountryCode = ""
	srv.LastSeen = srv.LastSeen.Add(time.Hour)
	require.NoError(t, repo.UpsertServer(srv))

	got, err = repo.GetServer(srv.Host, srv.Port)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "DE", got.CountryCode)
}

func TestGetServerNotFound(t *testing.T) {
	repo := newTestRepo(t)

	got, err := repo.GetServer("192.0.2.99", 27015)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotsAndHistory(t *testing.T) {
	repo := newTestRepo(t)
	srv := watchedServer("192.0.2.10", 27015)
	require.NoError(t, repo.UpsertServer(srv))

	base := time.Now().UTC().Truncate(time.Second).Add(-time.Hour)
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.InsertSnapshot(onlineSnapshot(srv.Host, srv.Port, base.Add(time.Duration(i)*time.Minute))))
	}

	latest, err := repo.LatestSnapshot(srv.Host, srv.Port)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Test Server", latest.ServerName)
	assert.Equal(t, byte(12), latest.Players)
	assert.True(t, latest.Online)

	history, err := repo.GetHistory(srv.Host, srv.Port, 3)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.True(t, history[0].PolledAt.After(history[2].PolledAt), "history must be newest first")
}

func TestLatestSnapshotEmpty(t *testing.T) {
	repo := newTestRepo(t)
	srv := watchedServer("192.0.2.10", 27015)
	require.NoError(t, repo.UpsertServer(srv))

	latest, err := repo.LatestSnapshot(srv.Host, srv.Port)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestDeleteServerCascades(t *testing.T) {
	repo := newTestRepo(t)
	srv := watchedServer("192.0.2.10", 27015)
	require.NoError(t, repo.UpsertServer(srv))
	require.NoError(t, repo.InsertSnapshot(onlineSnapshot(srv.Host, srv.Port, time.Now())))

	require.NoError(t, repo.DeleteServer(srv.Host, srv.Port))

	got, err := repo.GetServer(srv.Host, srv.Port)
	require.NoError(t, err)
	assert.Nil(t, got)

	history, err := repo.GetHistory(srv.Host, srv.Port, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestDeleteNeverSeen(t *testing.T) {
	repo := newTestRepo(t)

	alive := watchedServer("192.0.2.10", 27015)
	dead := watchedServer("192.0.2.20", 27015)
	require.NoError(t, repo.UpsertServer(alive))
	require.NoError(t, repo.UpsertServer(dead))

	require.NoError(t, repo.InsertSnapshot(onlineSnapshot(alive.Host, alive.Port, time.Now())))

	offline := models.Snapshot{Host: dead.Host, Port: dead.Port, PolledAt: time.Now()}
	require.NoError(t, repo.InsertSnapshot(offline))

	count, err := repo.DeleteNeverSeen()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	servers, err := repo.GetServers()
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, alive.Host, servers[0].Host)
}

func TestPruneSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	srv := watchedServer("192.0.2.10", 27015)
	require.NoError(t, repo.UpsertServer(srv))

	old := time.Now().UTC().Add(-48 * time.Hour)
	recent := time.Now().UTC()
	require.NoError(t, repo.InsertSnapshot(onlineSnapshot(srv.Host, srv.Port, old)))
	require.NoError(t, repo.InsertSnapshot(onlineSnapshot(srv.Host, srv.Port, recent)))

	count, err := repo.PruneSnapshots(time.Now().UTC().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	history, err := repo.GetHistory(srv.Host, srv.Port, 10)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
