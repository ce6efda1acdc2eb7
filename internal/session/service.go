// Package session orchestrates multiplayer game sessions persisted in the
// remote store: create, join, and the participant bookkeeping between them.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
)

var (
	// ErrAuthRequired rejects session operations without an identity.
	ErrAuthRequired = errors.New("authentication required")
	// ErrCreateFailed marks a store failure during session creation.
	ErrCreateFailed = errors.New("session creation failed")
	// ErrNotFound marks a join against an unknown session id.
	ErrNotFound = errors.New("session not found")
	// ErrInactive marks a join against a session that has ended.
	ErrInactive = errors.New("session has ended")
	// ErrNotOwner rejects an end request from anyone but the creator.
	ErrNotOwner = errors.New("only the session creator can end it")
)

// Settings are the shared game parameters of a session.
type Settings struct {
	Difficulty []game.Difficulty `json:"difficulty"`
	Rounds     int               `json:"rounds"`
}

// Session is the local view of a persisted multiplayer session.
type Session struct {
	ID           uuid.UUID   `json:"id"`
	CreatedBy    uuid.UUID   `json:"created_by"`
	Active       bool        `json:"active"`
	CurrentRound int         `json:"current_round"`
	Players      []uuid.UUID `json:"players"`
	Settings     Settings    `json:"settings"`
}

// Repo is the repository surface the session service needs.
type Repo interface {
	Create(ctx context.Context, createdBy uuid.UUID, settings repository.SessionSettings) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*repository.SessionRow, error)
	AddPlayer(ctx context.Context, id, playerID uuid.UUID) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// Events receives session notifications for fan-out to connected players.
type Events interface {
	ParticipantJoined(sessionID, playerID uuid.UUID)
}

// Service coordinates session records for the game engines.
type Service struct {
	repo          Repo
	events        Events
	defaultRounds int
	logger        zerolog.Logger
}

// NewService creates a session service. events may be nil.
func NewService(repo Repo, events Events, defaultRounds int, logger zerolog.Logger) *Service {
	if defaultRounds <= 0 {
		defaultRounds = 10
	}
	return &Service{repo: repo, events: events, defaultRounds: defaultRounds, logger: logger}
}

// Create inserts a new active session owned by the creator, seeded with the
// creator as first participant and the given difficulty settings.
func (s *Service) Create(ctx context.Context, creator uuid.UUID, tiers []game.Difficulty) (*Session, error) {
	if creator == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if len(tiers) == 0 {
		tiers = game.AllDifficulties()
	}

	id, err := s.repo.Create(ctx, creator, repository.SessionSettings{
		Difficulty: tierStrings(tiers),
		Rounds:     s.defaultRounds,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	s.logger.Info().Str("session_id", id.String()).Str("creator", creator.String()).
		Msg("session created")
	return &Session{
		ID:        id,
		CreatedBy: creator,
		Active:    true,
		Players:   []uuid.UUID{creator},
		Settings:  Settings{Difficulty: tiers, Rounds: s.defaultRounds},
	}, nil
}

// Join adds a player to an existing active session. The add is idempotent and
// failed joins leave no local trace: the caller only adopts the returned
// session on success.
func (s *Service) Join(ctx context.Context, id, playerID uuid.UUID) (*Session, error) {
	if playerID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("fetch session: %w", err)
	}
	if row == nil {
		return nil, ErrNotFound
	}
	if !row.IsActive {
		return nil, ErrInactive
	}

	if !containsPlayer(row.Players, playerID) {
		if err := s.repo.AddPlayer(ctx, id, playerID); err != nil {
			return nil, fmt.Errorf("join session: %w", err)
		}
		row.Players = append(row.Players, playerID)
	}

	if s.events != nil {
		s.events.ParticipantJoined(id, playerID)
	}

	return toDomain(row), nil
}

// End deactivates a session so further joins fail. Only the creator may end
// it. Ending an already inactive session is a no-op.
func (s *Service) End(ctx context.Context, id, playerID uuid.UUID) error {
	if playerID == uuid.Nil {
		return ErrAuthRequired
	}

	row, err := s.repo.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("fetch session: %w", err)
	}
	if row == nil {
		return ErrNotFound
	}
	if row.CreatedBy != playerID {
		return ErrNotOwner
	}
	if !row.IsActive {
		return nil
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	s.logger.Info().Str("session_id", id.String()).Msg("session ended")
	return nil
}

// JoinURL builds the shareable join link for a session.
func JoinURL(baseURL string, id uuid.UUID) string {
	return fmt.Sprintf("%s/join/%s", baseURL, id)
}

func toDomain(row *repository.SessionRow) *Session {
	tiers := make([]game.Difficulty, 0, len(row.Settings.Difficulty))
	for _, raw := range row.Settings.Difficulty {
		if tier, err := game.ParseDifficulty(raw); err == nil {
			tiers = append(tiers, tier)
		}
	}
	return &Session{
		ID:           row.ID,
		CreatedBy:    row.CreatedBy,
		Active:       row.IsActive,
		CurrentRound: row.CurrentRound,
		Players:      row.Players,
		Settings:     Settings{Difficulty: tiers, Rounds: row.Settings.Rounds},
	}
}

func tierStrings(tiers []game.Difficulty) []string {
	out := make([]string, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, string(t))
	}
	return out
}

func containsPlayer(players []uuid.UUID, playerID uuid.UUID) bool {
	for _, p := range players {
		if p == playerID {
			return true
		}
	}
	return false
}
