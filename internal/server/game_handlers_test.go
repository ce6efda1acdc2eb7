package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulsami822/wander-whiz-game/internal/auth"
	"github.com/abdulsami822/wander-whiz-game/internal/auth/jwt"
	"github.com/abdulsami822/wander-whiz-game/internal/challenge"
	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
	"github.com/abdulsami822/wander-whiz-game/internal/kv"
	"github.com/abdulsami822/wander-whiz-game/internal/profile"
)

var testTokenCfg = jwt.TokenConfig{
	AccessSecret:  []byte("test-access-secret"),
	RefreshSecret: []byte("test-refresh-secret"),
}

// Prometheus collectors register once per process, so every test shares one
// Metrics instance.
var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

func testMetrics() *Metrics {
	metricsOnce.Do(func() { sharedMetrics = NewMetrics() })
	return sharedMetrics
}

// authedHandler wraps a handler in the real token middleware.
func authedHandler(h http.HandlerFunc) http.Handler {
	logger := zerolog.New(io.Discard)
	svc := auth.NewService(nil, testTokenCfg, logger)
	return auth.Middleware(svc, logger)(auth.RequireAuth(h))
}

func bearerToken(t *testing.T, playerID uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewManager(testTokenCfg).GenerateAccessToken(jwt.Identity{
		ID:          playerID,
		DisplayName: "tester",
		IsGuest:     true,
	})
	require.NoError(t, err)
	return token
}

type stubCatalog struct {
	destinations []game.Destination
}

func (s *stubCatalog) List(_ context.Context, _ []game.Difficulty) ([]game.Destination, error) {
	return s.destinations, nil
}

type stubProfileRepo struct {
	profiles map[string]*repository.ProfileRow
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: map[string]*repository.ProfileRow{}}
}

func (s *stubProfileRepo) FindByUsername(_ context.Context, username string) (*repository.ProfileRow, error) {
	return s.profiles[username], nil
}

func (s *stubProfileRepo) Create(_ context.Context, username string) (*repository.ProfileRow, error) {
	row := &repository.ProfileRow{ID: uuid.New(), Username: username}
	s.profiles[username] = row
	return row, nil
}

func (s *stubProfileRepo) UpdateHighScoreIfHigher(_ context.Context, username string, score int) (bool, error) {
	row, ok := s.profiles[username]
	if !ok || score <= row.HighScore {
		return false, nil
	}
	row.HighScore = score
	return true, nil
}

func (s *stubProfileRepo) TopHighScores(_ context.Context, limit int) ([]repository.ProfileRow, error) {
	out := make([]repository.ProfileRow, 0, limit)
	for _, row := range s.profiles {
		out = append(out, *row)
	}
	return out, nil
}

func catalogFixture() []game.Destination {
	return []game.Destination{
		{ID: "d1", City: "Paris", Country: "France", Clues: []string{"a", "b", "c"}, Difficulty: game.DifficultyEasy},
		{ID: "d2", City: "Rome", Country: "Italy", Clues: []string{"a", "b"}, Difficulty: game.DifficultyEasy},
		{ID: "d3", City: "Tokyo", Country: "Japan", Clues: []string{"a", "b"}, Difficulty: game.DifficultyMedium},
		{ID: "d4", City: "Cusco", Country: "Peru", Clues: []string{"a", "b"}, Difficulty: game.DifficultyHard},
	}
}

func newTestGameHandlers(t *testing.T, profiles *profile.Service) *GameHandlers {
	t.Helper()
	logger := zerolog.New(io.Discard)
	catalog := &stubCatalog{destinations: catalogFixture()}
	registry := game.NewRegistry(func(uuid.UUID) *game.Engine {
		return game.NewEngine(catalog, nil, game.Config{}, logger)
	})
	composer := challenge.NewComposer(nil, nil, "https://wanderwhiz.example.com", logger)
	return NewGameHandlers(registry, profiles, composer, nil, testMetrics(), logger)
}

func TestStateRestoresSavedUsername(t *testing.T) {
	logger := zerolog.New(io.Discard)
	store := kv.NewMemoryStore()
	profiles := profile.NewService(newStubProfileRepo(), store, nil, logger)
	playerID := uuid.New()

	// A previous visit claimed a handle.
	_, _, err := profiles.SetUsername(context.Background(), playerID, "globetrotter", 0)
	require.NoError(t, err)

	h := newTestGameHandlers(t, profiles)

	req := httptest.NewRequest(http.MethodGet, "/v1/game/state", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, playerID))
	rec := httptest.NewRecorder()
	authedHandler(h.State).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view StateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "globetrotter", view.Username, "fresh engine must pick up the stored handle")
	assert.False(t, view.Loading)
	assert.NotEmpty(t, view.Clues, "first round starts on initial load")
}

func TestStateWithoutSavedUsername(t *testing.T) {
	logger := zerolog.New(io.Discard)
	profiles := profile.NewService(newStubProfileRepo(), kv.NewMemoryStore(), nil, logger)
	playerID := uuid.New()

	h := newTestGameHandlers(t, profiles)

	req := httptest.NewRequest(http.MethodGet, "/v1/game/state", nil)
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, playerID))
	rec := httptest.NewRecorder()
	authedHandler(h.State).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var view StateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Empty(t, view.Username)
}
