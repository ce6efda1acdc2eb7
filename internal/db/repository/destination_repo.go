package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// DestinationRow mirrors the destinations table.
type DestinationRow struct {
	ID         uuid.UUID
	City       string
	Country    string
	Clues      []string
	FunFacts   []string
	Trivia     []string
	Difficulty string
	ImageURL   *string
}

// DestinationRepository exposes read access to the destinations catalog.
type DestinationRepository struct {
	db DBTX
}

// NewDestinationRepository constructs a destination repository.
func NewDestinationRepository(db DBTX) *DestinationRepository {
	return &DestinationRepository{db: db}
}

// Upsert inserts a destination or refreshes its content when the (city,
// country) pair already exists. Used by the dataset seeder.
func (r *DestinationRepository) Upsert(ctx context.Context, row DestinationRow) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO destinations (city, country, clues, fun_facts, trivia, difficulty, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (city, country) DO UPDATE
		SET clues = EXCLUDED.clues,
		    fun_facts = EXCLUDED.fun_facts,
		    trivia = EXCLUDED.trivia,
		    difficulty = EXCLUDED.difficulty,
		    image_url = EXCLUDED.image_url`,
		row.City, row.Country, row.Clues, row.FunFacts, row.Trivia, row.Difficulty, row.ImageURL)
	if err != nil {
		return fmt.Errorf("upsert destination: %w", err)
	}
	return nil
}

// ListByDifficulty returns every destination whose tier is in the given set.
func (r *DestinationRepository) ListByDifficulty(ctx context.Context, tiers []string) ([]DestinationRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT destination_id, city, country, clues, fun_facts, trivia, difficulty, image_url
		FROM destinations
		WHERE difficulty = ANY($1)
		ORDER BY city`, tiers)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	var out []DestinationRow
	for rows.Next() {
		var row DestinationRow
		if err := rows.Scan(&row.ID, &row.City, &row.Country, &row.Clues,
			&row.FunFacts, &row.Trivia, &row.Difficulty, &row.ImageURL); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate destinations: %w", err)
	}
	return out, nil
}
