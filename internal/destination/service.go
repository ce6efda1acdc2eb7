package destination

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
)

// ErrCatalogFetch marks a failed remote pool load. Recoverable: the player
// retries by changing difficulty or reloading.
var ErrCatalogFetch = errors.New("destination catalog fetch failed")

// Lister is the repository surface the catalog needs.
type Lister interface {
	ListByDifficulty(ctx context.Context, tiers []string) ([]repository.DestinationRow, error)
}

// PoolCache caches difficulty-filtered destination pools.
type PoolCache interface {
	Get(ctx context.Context, tiers []game.Difficulty) ([]game.Destination, error)
	Set(ctx context.Context, tiers []game.Difficulty, pool []game.Destination) error
}

// Service is the destination catalog consumed by game engines.
type Service struct {
	repo   Lister
	cache  PoolCache
	logger zerolog.Logger
}

// NewService creates a catalog service. cache may be nil.
func NewService(repo Lister, cache PoolCache, logger zerolog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

var _ game.Catalog = (*Service)(nil)

// List returns all destinations whose difficulty is in the requested set.
func (s *Service) List(ctx context.Context, tiers []game.Difficulty) ([]game.Destination, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, tiers); err == nil && cached != nil {
			return cached, nil
		}
	}

	requested := make([]string, 0, len(tiers))
	allowed := make(map[game.Difficulty]bool, len(tiers))
	for _, t := range tiers {
		requested = append(requested, string(t))
		allowed[t] = true
	}

	rows, err := s.repo.ListByDifficulty(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogFetch, err)
	}

	pool := make([]game.Destination, 0, len(rows))
	for _, row := range rows {
		if len(row.Clues) == 0 {
			s.logger.Warn().Str("destination_id", row.ID.String()).
				Msg("skipping destination without clues")
			continue
		}
		dest := toDomain(row)
		if !allowed[dest.Difficulty] {
			continue
		}
		pool = append(pool, dest)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, tiers, pool); err != nil {
			s.logger.Warn().Err(err).Msg("destination pool cache write failed")
		}
	}
	return pool, nil
}

func toDomain(row repository.DestinationRow) game.Destination {
	dest := game.Destination{
		ID:         row.ID.String(),
		City:       row.City,
		Country:    row.Country,
		Clues:      row.Clues,
		FunFacts:   row.FunFacts,
		Trivia:     row.Trivia,
		Difficulty: game.Difficulty(row.Difficulty),
	}
	if row.ImageURL != nil {
		dest.ImageURL = *row.ImageURL
	}
	return dest
}
