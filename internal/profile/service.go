package profile

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/kv"
)

// ErrInvalidUsername rejects handles outside the allowed format.
var ErrInvalidUsername = errors.New("username must be 3-20 characters: letters, digits, '_' or '-'")

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

const usernameKeyPrefix = "username:"

// Profile is a player's public identity for score challenges.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	HighScore int       `json:"high_score"`
}

// Repo is the repository surface the profile service needs.
type Repo interface {
	FindByUsername(ctx context.Context, username string) (*repository.ProfileRow, error)
	Create(ctx context.Context, username string) (*repository.ProfileRow, error)
	UpdateHighScoreIfHigher(ctx context.Context, username string, score int) (bool, error)
	TopHighScores(ctx context.Context, limit int) ([]repository.ProfileRow, error)
}

// Service manages profiles, the saved-username store and high scores.
type Service struct {
	repo   Repo
	store  kv.Store
	board  *Leaderboard
	logger zerolog.Logger
}

// NewService creates a profile service. store and board may be nil.
func NewService(repo Repo, store kv.Store, board *Leaderboard, logger zerolog.Logger) *Service {
	return &Service{repo: repo, store: store, board: board, logger: logger}
}

// ValidateUsername checks the handle format.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

// SetUsername claims a handle for a player: existing profiles are reused
// (returning user), new ones start at score zero. The handle is saved to the
// key-value store and, when the player already has points on the board, the
// high score is pushed immediately.
func (s *Service) SetUsername(ctx context.Context, playerID uuid.UUID, username string, currentScore int) (*Profile, bool, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, false, err
	}

	row, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, false, fmt.Errorf("lookup profile: %w", err)
	}
	returning := row != nil
	if row == nil {
		row, err = s.repo.Create(ctx, username)
		if err != nil {
			return nil, false, fmt.Errorf("create profile: %w", err)
		}
	}

	if s.store != nil {
		if err := s.store.Set(ctx, usernameKeyPrefix+playerID.String(), username); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("username persistence failed")
		}
	}

	if currentScore > 0 {
		if err := s.PushHighScore(ctx, username, currentScore); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("initial high score push failed")
		}
	}

	return &Profile{ID: row.ID, Username: row.Username, HighScore: row.HighScore}, returning, nil
}

// StoredUsername returns the handle previously saved for a player.
func (s *Service) StoredUsername(ctx context.Context, playerID uuid.UUID) (string, bool) {
	if s.store == nil {
		return "", false
	}
	username, ok, err := s.store.Get(ctx, usernameKeyPrefix+playerID.String())
	if err != nil {
		s.logger.Warn().Err(err).Msg("username load failed")
		return "", false
	}
	return username, ok
}

// PushHighScore raises the stored high score when exceeded. Best effort:
// callers log failures instead of surfacing them to gameplay.
func (s *Service) PushHighScore(ctx context.Context, username string, score int) error {
	updated, err := s.repo.UpdateHighScoreIfHigher(ctx, username, score)
	if err != nil {
		return fmt.Errorf("push high score: %w", err)
	}
	if updated && s.board != nil {
		if err := s.board.Record(ctx, username, score); err != nil {
			s.logger.Warn().Err(err).Str("username", username).Msg("leaderboard mirror failed")
		}
	}
	return nil
}

// Top returns the best high scores, preferring the Redis board and falling
// back to the profiles table.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if s.board != nil {
		entries, err := s.board.Top(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("leaderboard read failed, falling back to db")
		}
	}

	rows, err := s.repo.TopHighScores(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top high scores: %w", err)
	}
	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, Entry{Username: row.Username, Score: row.HighScore})
	}
	return entries, nil
}
