package profile

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/kv"
)

type stubRepo struct {
	profiles map[string]*repository.ProfileRow
	findErr  error
	writeErr error
}

func newStubRepo() *stubRepo {
	return &stubRepo{profiles: map[string]*repository.ProfileRow{}}
}

func (s *stubRepo) FindByUsername(_ context.Context, username string) (*repository.ProfileRow, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if row, ok := s.profiles[username]; ok {
		copied := *row
		return &copied, nil
	}
	return nil, nil
}

func (s *stubRepo) Create(_ context.Context, username string) (*repository.ProfileRow, error) {
	row := &repository.ProfileRow{ID: uuid.New(), Username: username, CreatedAt: time.Now()}
	s.profiles[username] = row
	copied := *row
	return &copied, nil
}

func (s *stubRepo) UpdateHighScoreIfHigher(_ context.Context, username string, score int) (bool, error) {
	if s.writeErr != nil {
		return false, s.writeErr
	}
	row, ok := s.profiles[username]
	if !ok || row.HighScore >= score {
		return false, nil
	}
	row.HighScore = score
	return true, nil
}

func (s *stubRepo) TopHighScores(_ context.Context, limit int) ([]repository.ProfileRow, error) {
	var out []repository.ProfileRow
	for _, row := range s.profiles {
		out = append(out, *row)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(repo Repo) (*Service, kv.Store) {
	store := kv.NewMemoryStore()
	return NewService(repo, store, nil, zerolog.New(io.Discard)), store
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		ok       bool
	}{
		{"abc", true},
		{"wanderer_42", true},
		{"Ab-Cd_99", true},
		{"ab", false},
		{"this_username_is_way_too_long", false},
		{"has space", false},
		{"emoji🌍", false},
		{"", false},
	}

	for _, tc := range tests {
		err := ValidateUsername(tc.username)
		if tc.ok {
			assert.NoError(t, err, tc.username)
		} else {
			assert.ErrorIs(t, err, ErrInvalidUsername, tc.username)
		}
	}
}

func TestSetUsernameCreatesNewProfile(t *testing.T) {
	repo := newStubRepo()
	svc, store := newTestService(repo)
	playerID := uuid.New()

	prof, returning, err := svc.SetUsername(context.Background(), playerID, "newbie", 0)
	require.NoError(t, err)

	assert.False(t, returning)
	assert.Equal(t, "newbie", prof.Username)
	assert.Equal(t, 0, prof.HighScore)

	saved, ok, _ := store.Get(context.Background(), "username:"+playerID.String())
	assert.True(t, ok)
	assert.Equal(t, "newbie", saved)
}

func TestSetUsernameReusesExistingProfile(t *testing.T) {
	repo := newStubRepo()
	repo.profiles["veteran"] = &repository.ProfileRow{ID: uuid.New(), Username: "veteran", HighScore: 90}
	svc, _ := newTestService(repo)

	prof, returning, err := svc.SetUsername(context.Background(), uuid.New(), "veteran", 0)
	require.NoError(t, err)

	assert.True(t, returning)
	assert.Equal(t, 90, prof.HighScore)
	assert.Len(t, repo.profiles, 1, "no duplicate record for a returning user")
}

func TestSetUsernamePushesInProgressScore(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(repo)

	_, _, err := svc.SetUsername(context.Background(), uuid.New(), "scorer", 40)
	require.NoError(t, err)

	assert.Equal(t, 40, repo.profiles["scorer"].HighScore)
}

func TestPushHighScoreOnlyRaises(t *testing.T) {
	repo := newStubRepo()
	repo.profiles["player"] = &repository.ProfileRow{ID: uuid.New(), Username: "player", HighScore: 100}
	svc, _ := newTestService(repo)

	require.NoError(t, svc.PushHighScore(context.Background(), "player", 60))
	assert.Equal(t, 100, repo.profiles["player"].HighScore, "lower score must not overwrite")

	require.NoError(t, svc.PushHighScore(context.Background(), "player", 150))
	assert.Equal(t, 150, repo.profiles["player"].HighScore)
}

func TestPushHighScoreWrapsWriteError(t *testing.T) {
	repo := newStubRepo()
	repo.writeErr = errors.New("db down")
	svc, _ := newTestService(repo)

	err := svc.PushHighScore(context.Background(), "player", 10)
	assert.Error(t, err)
}

func TestStoredUsernameRoundTrip(t *testing.T) {
	repo := newStubRepo()
	svc, _ := newTestService(repo)
	playerID := uuid.New()

	_, ok := svc.StoredUsername(context.Background(), playerID)
	assert.False(t, ok)

	_, _, err := svc.SetUsername(context.Background(), playerID, "roundtrip", 0)
	require.NoError(t, err)

	username, ok := svc.StoredUsername(context.Background(), playerID)
	assert.True(t, ok)
	assert.Equal(t, "roundtrip", username)
}
