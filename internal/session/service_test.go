package session

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
)

type stubRepo struct {
	sessions        map[uuid.UUID]*repository.SessionRow
	createErr       error
	getErr          error
	addErr          error
	deactivateErr   error
	addCalls        int
	deactivateCalls int
}

func newStubRepo() *stubRepo {
	return &stubRepo{sessions: map[uuid.UUID]*repository.SessionRow{}}
}

func (s *stubRepo) Create(_ context.Context, createdBy uuid.UUID, settings repository.SessionSettings) (uuid.UUID, error) {
	if s.createErr != nil {
		return uuid.Nil, s.createErr
	}
	id := uuid.New()
	s.sessions[id] = &repository.SessionRow{
		ID:        id,
		CreatedBy: createdBy,
		IsActive:  true,
		Players:   []uuid.UUID{createdBy},
		Settings:  settings,
	}
	return id, nil
}

func (s *stubRepo) Get(_ context.Context, id uuid.UUID) (*repository.SessionRow, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	row, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	copied.Players = append([]uuid.UUID(nil), row.Players...)
	return &copied, nil
}

func (s *stubRepo) AddPlayer(_ context.Context, id, playerID uuid.UUID) error {
	s.addCalls++
	if s.addErr != nil {
		return s.addErr
	}
	row := s.sessions[id]
	for _, p := range row.Players {
		if p == playerID {
			return nil
		}
	}
	row.Players = append(row.Players, playerID)
	return nil
}

func (s *stubRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	s.deactivateCalls++
	if s.deactivateErr != nil {
		return s.deactivateErr
	}
	if row, ok := s.sessions[id]; ok {
		row.IsActive = false
	}
	return nil
}

type recordingEvents struct {
	joined []uuid.UUID
}

func (r *recordingEvents) ParticipantJoined(_, playerID uuid.UUID) {
	r.joined = append(r.joined, playerID)
}

func newTestService(repo Repo, events Events) *Service {
	return NewService(repo, events, 10, zerolog.New(io.Discard))
}

func TestCreateRequiresIdentity(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)

	_, err := svc.Create(context.Background(), uuid.Nil, nil)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestCreateSeedsCreatorAndSettings(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)
	creator := uuid.New()

	sess, err := svc.Create(context.Background(), creator, []game.Difficulty{game.DifficultyHard})
	require.NoError(t, err)

	row := repo.sessions[sess.ID]
	require.NotNil(t, row)
	assert.True(t, row.IsActive)
	assert.Equal(t, []uuid.UUID{creator}, row.Players)
	assert.Equal(t, []string{"hard"}, row.Settings.Difficulty)
	assert.Equal(t, 10, row.Settings.Rounds)

	assert.True(t, sess.Active)
	assert.Equal(t, creator, sess.CreatedBy)
	assert.Equal(t, []game.Difficulty{game.DifficultyHard}, sess.Settings.Difficulty)
	assert.Equal(t, 10, sess.Settings.Rounds)
}

func TestCreateWrapsStoreFailure(t *testing.T) {
	repo := newStubRepo()
	repo.createErr = errors.New("insert failed")
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), uuid.New(), nil)
	assert.ErrorIs(t, err, ErrCreateFailed)
}

func TestJoinUnknownSession(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)

	_, err := svc.Join(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoinInactiveSessionFailsWithoutSideEffects(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)
	creator := uuid.New()

	sess, err := svc.Create(context.Background(), creator, []game.Difficulty{game.DifficultyEasy})
	require.NoError(t, err)
	repo.sessions[sess.ID].IsActive = false

	_, err = svc.Join(context.Background(), sess.ID, uuid.New())
	assert.ErrorIs(t, err, ErrInactive)
	assert.Equal(t, 0, repo.addCalls, "inactive join must not mutate the session")
}

func TestJoinIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	events := &recordingEvents{}
	svc := newTestService(repo, events)
	creator := uuid.New()
	joiner := uuid.New()

	sess, err := svc.Create(context.Background(), creator, []game.Difficulty{game.DifficultyMedium})
	require.NoError(t, err)

	first, err := svc.Join(context.Background(), sess.ID, joiner)
	require.NoError(t, err)
	second, err := svc.Join(context.Background(), sess.ID, joiner)
	require.NoError(t, err)

	assert.Len(t, first.Players, 2)
	assert.Len(t, second.Players, 2, "rejoin must not duplicate the participant")
	assert.Equal(t, 1, repo.addCalls)
	assert.Len(t, events.joined, 2, "each join attempt still notifies")
}

func TestJoinAdoptsSessionDifficulty(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)

	sess, err := svc.Create(context.Background(), uuid.New(), []game.Difficulty{game.DifficultyHard})
	require.NoError(t, err)

	joined, err := svc.Join(context.Background(), sess.ID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, []game.Difficulty{game.DifficultyHard}, joined.Settings.Difficulty)
}

func TestJoinRequiresIdentity(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)

	_, err := svc.Join(context.Background(), uuid.New(), uuid.Nil)
	assert.ErrorIs(t, err, ErrAuthRequired)
}

func TestEndDeactivatesSession(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)
	creator := uuid.New()

	sess, err := svc.Create(context.Background(), creator, nil)
	require.NoError(t, err)

	require.NoError(t, svc.End(context.Background(), sess.ID, creator))
	assert.False(t, repo.sessions[sess.ID].IsActive)

	_, err = svc.Join(context.Background(), sess.ID, uuid.New())
	assert.ErrorIs(t, err, ErrInactive, "ended sessions reject new joins")
}

func TestEndRequiresCreator(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)

	sess, err := svc.Create(context.Background(), uuid.New(), nil)
	require.NoError(t, err)

	err = svc.End(context.Background(), sess.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.True(t, repo.sessions[sess.ID].IsActive)
}

func TestEndUnknownSession(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)

	err := svc.End(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEndIsIdempotent(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)
	creator := uuid.New()

	sess, err := svc.Create(context.Background(), creator, nil)
	require.NoError(t, err)

	require.NoError(t, svc.End(context.Background(), sess.ID, creator))
	require.NoError(t, svc.End(context.Background(), sess.ID, creator))
	assert.Equal(t, 1, repo.deactivateCalls, "repeat end must not hit the store again")
}

func TestJoinURLFormat(t *testing.T) {
	id := uuid.MustParse("a2f4b8a0-0000-0000-0000-000000000001")

	url := JoinURL("https://wanderwhiz.example.com", id)
	assert.Equal(t, "https://wanderwhiz.example.com/join/a2f4b8a0-0000-0000-0000-000000000001", url)
}
