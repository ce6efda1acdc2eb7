package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SessionSettings is the jsonb settings blob on a game session.
type SessionSettings struct {
	Difficulty []string `json:"difficulty"`
	Rounds     int      `json:"rounds"`
}

// SessionRow mirrors the game_sessions table.
type SessionRow struct {
	ID           uuid.UUID
	CreatedBy    uuid.UUID
	IsActive     bool
	CurrentRound int
	Players      []uuid.UUID
	Settings     SessionSettings
	CreatedAt    time.Time
}

// SessionRepository exposes typed DB operations for multiplayer sessions.
type SessionRepository struct {
	db DBTX
}

// NewSessionRepository constructs a session repository.
func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts a new session and returns its generated id.
func (r *SessionRepository) Create(ctx context.Context, createdBy uuid.UUID, settings SessionSettings) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, `
		INSERT INTO game_sessions (created_by, is_active, current_round, players, settings)
		VALUES ($1, TRUE, 0, ARRAY[$1], $2)
		RETURNING session_id`, createdBy, settings).
		Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// Get fetches a session by id. Absence is (nil, nil), not an error.
func (r *SessionRepository) Get(ctx context.Context, id uuid.UUID) (*SessionRow, error) {
	var row SessionRow
	err := r.db.QueryRow(ctx, `
		SELECT session_id, created_by, is_active, current_round, players, settings, created_at
		FROM game_sessions
		WHERE session_id = $1`, id).
		Scan(&row.ID, &row.CreatedBy, &row.IsActive, &row.CurrentRound,
			&row.Players, &row.Settings, &row.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &row, nil
}

// AddPlayer appends a participant unless already present (idempotent).
func (r *SessionRepository) AddPlayer(ctx context.Context, id, playerID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE game_sessions
		SET players = array_append(players, $2)
		WHERE session_id = $1 AND NOT ($2 = ANY(players))`, id, playerID)
	if err != nil {
		return fmt.Errorf("add session player: %w", err)
	}
	return nil
}

// Deactivate flips the active flag, ending the session for future joiners.
func (r *SessionRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE game_sessions SET is_active = FALSE WHERE session_id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate session: %w", err)
	}
	return nil
}
