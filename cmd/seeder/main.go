package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
)

// seedDestination is the JSON shape of a dataset entry.
type seedDestination struct {
	City       string   `json:"city"`
	Country    string   `json:"country"`
	Clues      []string `json:"clues"`
	FunFacts   []string `json:"fun_facts"`
	Trivia     []string `json:"trivia"`
	Difficulty string   `json:"difficulty"`
	ImageURL   string   `json:"image_url,omitempty"`
}

func main() {
	var (
		file = flag.String("file", "db/seed/destinations.json", "Path to the destinations dataset")
	)
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("failed to read dataset")
	}

	var seeds []seedDestination
	if err := json.Unmarshal(data, &seeds); err != nil {
		log.Fatal().Err(err).Msg("failed to parse dataset")
	}

	pgHost := getEnv("PG_HOST", "localhost")
	pgPort := getEnv("PG_PORT", "5432")
	pgUser := getEnv("PG_USER", "")
	pgPassword := getEnv("PG_PASSWORD", "")
	pgDatabase := getEnv("PG_DATABASE", "")
	pgSSLMode := getEnv("PG_SSL_MODE", "disable")

	if pgUser == "" || pgPassword == "" || pgDatabase == "" {
		log.Fatal().Msg("PG_USER, PG_PASSWORD and PG_DATABASE environment variables are required")
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pgHost, pgPort, pgUser, pgPassword, pgDatabase, pgSSLMode)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	repo := repository.NewDestinationRepository(pool)

	seeded := 0
	skipped := 0
	for _, seed := range seeds {
		if _, err := game.ParseDifficulty(seed.Difficulty); err != nil {
			log.Warn().Str("city", seed.City).Str("difficulty", seed.Difficulty).Msg("skipping entry with unknown difficulty")
			skipped++
			continue
		}
		if len(seed.Clues) == 0 {
			log.Warn().Str("city", seed.City).Msg("skipping entry without clues")
			skipped++
			continue
		}

		row := repository.DestinationRow{
			City:       seed.City,
			Country:    seed.Country,
			Clues:      seed.Clues,
			FunFacts:   seed.FunFacts,
			Trivia:     seed.Trivia,
			Difficulty: seed.Difficulty,
		}
		if seed.ImageURL != "" {
			row.ImageURL = &seed.ImageURL
		}

		if err := repo.Upsert(ctx, row); err != nil {
			log.Fatal().Err(err).Str("city", seed.City).Msg("failed to upsert destination")
		}
		seeded++
	}

	log.Info().Int("seeded", seeded).Int("skipped", skipped).Msg("dataset import complete")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
