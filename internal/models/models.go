// Package models defines the data structures used for API requests and database persistence.
package models

import "time"

// WatchRequest represents the payload for registering a server on the watchlist.
type WatchRequest struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Server represents a watched game server stored in the database.
type Server struct {
	FirstSeen   time.Time `json:"first_seen"`
	LastSeen    time.Time `json:"last_seen"`
	Host        string    `json:"host"`
	CountryCode string    `json:"country_code"`
	Port        int       `json:"port"`
}

// Snapshot represents one poll result for a watched server. Online is false
// when the query failed; the A2S fields are then empty.
type Snapshot struct {
	PolledAt    time.Time `json:"polled_at"`
	Host        string    `json:"host"`
	ServerName  string    `json:"server_name"`
	MapName     string    `json:"map_name"`
	GameName    string    `json:"game_name"`
	GameVersion string    `json:"game_version"`
	ServerOS    string    `json:"server_os"`
	PingMs      int64     `json:"ping_ms"`
	Port        int       `json:"port"`
	Players     byte      `json:"players"`
	MaxPlayers  byte      `json:"max_players"`
	Bots        byte      `json:"bots"`
	Online      bool      `json:"online"`
}

// ServerStatus joins a watched server with its most recent snapshot for API listings.
type ServerStatus struct {
	Server
	Latest *Snapshot `json:"latest,omitempty"`
}
