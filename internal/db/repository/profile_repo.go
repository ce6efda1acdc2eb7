package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProfileRow mirrors the profiles table used for username challenges.
type ProfileRow struct {
	ID        uuid.UUID
	Username  string
	HighScore int
	CreatedAt time.Time
}

// ProfileRepository exposes typed DB operations for player profiles.
type ProfileRepository struct {
	db DBTX
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUsername fetches a profile by name. Absence is (nil, nil), not an error.
func (r *ProfileRepository) FindByUsername(ctx context.Context, username string) (*ProfileRow, error) {
	var row ProfileRow
	err := r.db.QueryRow(ctx, `
		SELECT profile_id, username, high_score, created_at
		FROM profiles
		WHERE username = $1`, username).
		Scan(&row.ID, &row.Username, &row.HighScore, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &row, nil
}

// Create inserts a fresh profile with a zero high score.
func (r *ProfileRepository) Create(ctx context.Context, username string) (*ProfileRow, error) {
	var row ProfileRow
	err := r.db.QueryRow(ctx, `
		INSERT INTO profiles (username, high_score)
		VALUES ($1, 0)
		RETURNING profile_id, username, high_score, created_at`, username).
		Scan(&row.ID, &row.Username, &row.HighScore, &row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return &row, nil
}

// UpdateHighScoreIfHigher raises the stored high score, never lowers it.
// Returns true when the row changed.
func (r *ProfileRepository) UpdateHighScoreIfHigher(ctx context.Context, username string, score int) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE profiles
		SET high_score = $2
		WHERE username = $1 AND high_score < $2`, username, score)
	if err != nil {
		return false, fmt.Errorf("update high score: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// TopHighScores returns the best profiles ordered by score.
func (r *ProfileRepository) TopHighScores(ctx context.Context, limit int) ([]ProfileRow, error) {
	rows, err := r.db.Query(ctx, `
		SELECT profile_id, username, high_score, created_at
		FROM profiles
		ORDER BY high_score DESC, username
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list top scores: %w", err)
	}
	defer rows.Close()

	var out []ProfileRow
	for rows.Next() {
		var row ProfileRow
		if err := rows.Scan(&row.ID, &row.Username, &row.HighScore, &row.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}
	return out, nil
}
