// Package fake provides utilities for generating random watchlist data for testing and development purposes.
package fake

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spotter-dev/spotter/internal/models"
	"github.com/spotter-dev/spotter/internal/storage"
)

// GenerateData populates the storage with a specified number of randomized
// watched servers, each with a short snapshot history.
func GenerateData(store *storage.Repository, count int) {
	maps := []string{"de_dust2", "de_mirage", "cp_dustbowl", "gm_construct", "koth_harvest", "ttt_minecraft"}
	games := []string{"Counter-Strike", "Team Fortress 2", "Garry's Mod"}
	osTypes := []string{"Windows", "Linux"}
	versions := []string{"1.38.7.4", "1.39.0.1", "2024.10.25"}

	countriesHigh := []string{"US", "DE", "RU", "CN", "BR", "FR", "GB", "PL", "CZ", "KZ", "UA"}
	countriesMid := []string{"CA", "AU", "IT", "ES", "NL", "SE", "JP", "KR", "TR", "BE", "RO"}
	countriesLow := []string{"ZA", "AR", "MX", "IN", "ID", "VN", "CH", "NO", "FI", "DK", "PT"}

	for i := 0; i < count; i++ {
		host := fmt.Sprintf("%d.%d.%d.%d", rand.Intn(220)+1, rand.Intn(255), rand.Intn(255), rand.Intn(255))
		port := 27015 + rand.Intn(100)

		var country string
		roll := rand.Float32()
		switch {
		case roll < 0.70:
			country = countriesHigh[rand.Intn(len(countriesHigh))]
		case roll < 0.90:
			country = countriesMid[rand.Intn(len(countriesMid))]
		default:
			country = countriesLow[rand.Intn(len(countriesLow))]
		}

		daysAgo := rand.Intn(30)
		firstSeen := time.Now().Add(-time.Duration(daysAgo) * 24 * time.Hour).
			Add(-time.Duration(rand.Intn(1440)) * time.Minute)

		srv := models.Server{
			Host:        host,
			Port:        port,
			CountryCode: country,
			FirstSeen:   firstSeen,
			LastSeen:    firstSeen,
		}

		if err := store.UpsertServer(srv); err != nil {
			log.Warn().Err(err).Msg("Failed to generate fake server")
			continue
		}

		name := fmt.Sprintf("Community Server #%d [24/7]", rand.Intn(1000))
		maxPlayers := byte(16 + rand.Intn(48))

		// A handful of snapshots between first_seen and now, ~15% of them offline.
		snaps := 3 + rand.Intn(8)
		for j := 0; j < snaps; j++ {
			polledAt := firstSeen.Add(time.Duration(rand.Int63n(int64(time.Since(firstSeen)))))

			snap := models.Snapshot{
				Host:     host,
				Port:     port,
				PolledAt: polledAt,
			}

			if rand.Float32() >= 0.15 {
				snap.Online = true
				snap.ServerName = name
				snap.MapName = maps[rand.Intn(len(maps))]
				snap.GameName = games[rand.Intn(len(games))]
				snap.GameVersion = versions[rand.Intn(len(versions))]
				snap.ServerOS = osTypes[rand.Intn(len(osTypes))]
				snap.MaxPlayers = maxPlayers
				snap.Players = byte(rand.Intn(int(maxPlayers) + 1))
				snap.PingMs = int64(5 + rand.Intn(150))
			}

			if err := store.InsertSnapshot(snap); err != nil {
				log.Warn().Err(err).Msg("Failed to generate fake snapshot")
			}
		}
	}
}
