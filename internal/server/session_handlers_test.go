package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
	"github.com/abdulsami822/wander-whiz-game/internal/session"
	"github.com/abdulsami822/wander-whiz-game/pkg/http/ws"
)

type stubSessionRepo struct {
	rows map[uuid.UUID]*repository.SessionRow
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{rows: map[uuid.UUID]*repository.SessionRow{}}
}

func (s *stubSessionRepo) Create(_ context.Context, createdBy uuid.UUID, settings repository.SessionSettings) (uuid.UUID, error) {
	id := uuid.New()
	s.rows[id] = &repository.SessionRow{
		ID:        id,
		CreatedBy: createdBy,
		IsActive:  true,
		Players:   []uuid.UUID{createdBy},
		Settings:  settings,
	}
	return id, nil
}

func (s *stubSessionRepo) Get(_ context.Context, id uuid.UUID) (*repository.SessionRow, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (s *stubSessionRepo) AddPlayer(_ context.Context, id, playerID uuid.UUID) error {
	s.rows[id].Players = append(s.rows[id].Players, playerID)
	return nil
}

func (s *stubSessionRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if row, ok := s.rows[id]; ok {
		row.IsActive = false
	}
	return nil
}

func newTestSessionHandlers(t *testing.T, hub *ws.Hub, repo session.Repo) *SessionHandlers {
	t.Helper()
	logger := zerolog.New(io.Discard)
	events := NewSessionEvents(hub, logger)
	sessions := session.NewService(repo, events, 10, logger)
	catalog := &stubCatalog{destinations: catalogFixture()}
	registry := game.NewRegistry(func(uuid.UUID) *game.Engine {
		return game.NewEngine(catalog, nil, game.Config{}, logger)
	})
	return NewSessionHandlers(sessions, registry, hub, events, "https://wanderwhiz.example.com", testMetrics(), logger)
}

func TestCreateSessionAnnouncesOverSocket(t *testing.T) {
	hub := ws.NewHub(zerolog.New(io.Discard))
	h := newTestSessionHandlers(t, hub, newStubSessionRepo())

	playerID := uuid.New()
	client := dialTestSocket(t, hub, playerID)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader(`{"difficulty":["easy"]}`))
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, playerID))
	rec := httptest.NewRecorder()
	authedHandler(h.Create).ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	msg := readMessage(t, client)
	require.Equal(t, ws.TypeSessionCreated, msg.Type)
	var payload ws.SessionCreatedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, 10, payload.Rounds)
	assert.Equal(t, []string{"easy"}, payload.Tiers)
	assert.Contains(t, payload.InviteURL, payload.SessionID)
}

func TestEndSessionDeactivates(t *testing.T) {
	hub := ws.NewHub(zerolog.New(io.Discard))
	repo := newStubSessionRepo()
	h := newTestSessionHandlers(t, hub, repo)
	creator := uuid.New()

	id, err := repo.Create(context.Background(), creator, repository.SessionSettings{
		Difficulty: []string{"easy"}, Rounds: 10,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id.String()+"/end", nil)
	req.SetPathValue("id", id.String())
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, creator))
	rec := httptest.NewRecorder()
	authedHandler(h.End).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, repo.rows[id].IsActive)
}

func TestEndSessionRejectsNonCreator(t *testing.T) {
	hub := ws.NewHub(zerolog.New(io.Discard))
	repo := newStubSessionRepo()
	h := newTestSessionHandlers(t, hub, repo)

	id, err := repo.Create(context.Background(), uuid.New(), repository.SessionSettings{
		Difficulty: []string{"easy"}, Rounds: 10,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id.String()+"/end", nil)
	req.SetPathValue("id", id.String())
	req.Header.Set("Authorization", "Bearer "+bearerToken(t, uuid.New()))
	rec := httptest.NewRecorder()
	authedHandler(h.End).ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.True(t, repo.rows[id].IsActive)
}
