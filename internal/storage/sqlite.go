// Package storage handles database connections, schema migrations, and data operations using SQLite.
package storage

import (
	"database/sql"
	"time"

	"github.com/spotter-dev/spotter/internal/models"
	_ "modernc.org/sqlite" // Driver sqlite
)

// Repository manages the SQLite database connection.
type Repository struct {
	db *sql.DB
}

// New initializes a new SQLite connection, sets connection pool parameters, and runs migrations.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(1 * time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close closes the underlying database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// UpsertServer inserts a watched server or refreshes its last_seen timestamp.
// The country code is only overwritten by a non-empty value.
func (r *Repository) UpsertServer(s models.Server) error {
	query := `
	INSERT INTO servers (host, port, country_code, first_seen, last_seen)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(host, port) DO UPDATE SET
		last_seen = excluded.last_seen,
		country_code = CASE WHEN excluded.country_code != '' THEN excluded.country_code ELSE servers.country_code END;
	`

	_, err := r.db.Exec(query, s.Host, s.Port, s.CountryCode, s.FirstSeen, s.LastSeen)
	return err
}

// GetServers retrieves all watched servers sorted by the last seen timestamp in descending order.
func (r *Repository) GetServers() ([]models.Server, error) {
	rows, err := r.db.Query(`
		SELECT host, port, country_code, first_seen, last_seen
		FROM servers
		ORDER BY last_seen DESC
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var servers []models.Server
	for rows.Next() {
		var s models.Server
		if err := rows.Scan(&s.Host, &s.Port, &s.CountryCode, &s.FirstSeen, &s.LastSeen); err != nil {
			continue
		}
		servers = append(servers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return servers, nil
}

// GetServer retrieves a specific watched server by host and port.
// Returns nil without error when the server is not on the watchlist.
func (r *Repository) GetServer(host string, port int) (*models.Server, error) {
	row := r.db.QueryRow(`
		SELECT host, port, country_code, first_seen, last_seen
		FROM servers
		WHERE host = ? AND port = ?
	`, host, port)

	var s models.Server
	err := row.Scan(&s.Host, &s.Port, &s.CountryCode, &s.FirstSeen, &s.LastSeen)
	if err == sql.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// DeleteServer removes a watched server and, via cascade, its snapshots.
func (r *Repository) DeleteServer(host string, port int) error {
	_, err := r.db.Exec(`DELETE FROM servers WHERE host = ? AND port = ?`, host, port)
	return err
}

// InsertSnapshot records one poll result and refreshes the parent server's last_seen.
func (r *Repository) InsertSnapshot(s models.Snapshot) error {
	query := `
	INSERT INTO snapshots (
		host, port, online, server_name, map_name, game_name, game_version,
		server_os, players, max_players, bots, ping_ms, polled_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`

	if _, err := r.db.Exec(query,
		s.Host, s.Port, s.Online, s.ServerName, s.MapName, s.GameName, s.GameVersion,
		s.ServerOS, s.Players, s.MaxPlayers, s.Bots, s.PingMs, s.PolledAt,
	); err != nil {
		return err
	}

	if s.Online {
		_, err := r.db.Exec(`UPDATE servers SET last_seen = ? WHERE host = ? AND port = ?`,
			s.PolledAt, s.Host, s.Port)
		return err
	}

	return nil
}

// LatestSnapshot returns the most recent snapshot for a server, or nil when none exist.
func (r *Repository) LatestSnapshot(host string, port int) (*models.Snapshot, error) {
	row := r.db.QueryRow(`
		SELECT host, port, online, server_name, map_name, game_name, game_version,
		       server_os, players, max_players, bots, ping_ms, polled_at
		FROM snapshots
		WHERE host = ? AND port = ?
		ORDER BY polled_at DESC, id DESC
		LIMIT 1
	`, host, port)

	var s models.Snapshot
	err := row.Scan(
		&s.Host, &s.Port, &s.Online, &s.ServerName, &s.MapName, &s.GameName, &s.GameVersion,
		&s.ServerOS, &s.Players, &s.MaxPlayers, &s.Bots, &s.PingMs, &s.PolledAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &s, nil
}

// GetHistory returns up to limit snapshots for a server, newest first.
func (r *Repository) GetHistory(host string, port, limit int) ([]models.Snapshot, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.Query(`
		SELECT host, port, online, server_name, map_name, game_name, game_version,
		       server_os, players, max_players, bots, ping_ms, polled_at
		FROM snapshots
		WHERE host = ? AND port = ?
		ORDER BY polled_at DESC, id DESC
		LIMIT ?
	`, host, port, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var snapshots []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		if err := rows.Scan(
			&s.Host, &s.Port, &s.Online, &s.ServerName, &s.MapName, &s.GameName, &s.GameVersion,
			&s.ServerOS, &s.Players, &s.MaxPlayers, &s.Bots, &s.PingMs, &s.PolledAt,
		); err != nil {
			continue
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshots, nil
}

// DeleteNeverSeen removes watched servers without a single successful snapshot.
func (r *Repository) DeleteNeverSeen() (int64, error) {
	res, err := r.db.Exec(`
		DELETE FROM servers
		WHERE NOT EXISTS (
			SELECT 1 FROM snapshots
			WHERE snapshots.host = servers.host
			  AND snapshots.port = servers.port
			  AND snapshots.online = 1
		)
	`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PruneSnapshots deletes snapshots older than the cutoff and returns the removed count.
func (r *Repository) PruneSnapshots(cutoff time.Time) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM snapshots WHERE polled_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
