package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulsami822/wander-whiz-game/internal/game"
	"github.com/abdulsami822/wander-whiz-game/pkg/http/ws"
)

// dialTestSocket upgrades a real WebSocket, registers it on the hub for the
// player and returns the client side.
func dialTestSocket(t *testing.T, hub *ws.Hub, playerID uuid.UUID) *websocket.Conn {
	t.Helper()
	registered := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := WSUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		conn := ws.NewConnection(raw, zerolog.New(io.Discard))
		hub.RegisterConnection(playerID, conn)
		go conn.WritePump()
		close(registered)
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	<-registered
	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	return client
}

func readMessage(t *testing.T, client *websocket.Conn) ws.Message {
	t.Helper()
	var msg ws.Message
	require.NoError(t, client.ReadJSON(&msg))
	return msg
}

func decodeStateUpdate(t *testing.T, msg ws.Message) StateView {
	t.Helper()
	require.Equal(t, ws.TypeStateUpdate, msg.Type)
	var payload ws.StateUpdatePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	var view StateView
	require.NoError(t, json.Unmarshal(payload.State, &view))
	return view
}

func TestPublishStateReachesPlayer(t *testing.T) {
	logger := zerolog.New(io.Discard)
	hub := ws.NewHub(logger)
	events := NewSessionEvents(hub, logger)
	playerID := uuid.New()
	client := dialTestSocket(t, hub, playerID)

	st := viewFixtureState()
	st.HasGuessed = true
	events.PublishState(playerID, NewStateView(st))

	view := decodeStateUpdate(t, readMessage(t, client))
	assert.Equal(t, 30, view.Score)
	require.NotNil(t, view.Answer, "post-guess push carries the revealed answer")
	assert.Equal(t, "Paris", view.Answer.City)
}

func TestPublishStateWithoutConnectionIsDropped(t *testing.T) {
	logger := zerolog.New(io.Discard)
	events := NewSessionEvents(ws.NewHub(logger), logger)

	// No connection registered; must not panic or block.
	events.PublishState(uuid.New(), NewStateView(viewFixtureState()))
}

func TestEngineTransitionsPushStateOverSocket(t *testing.T) {
	logger := zerolog.New(io.Discard)
	hub := ws.NewHub(logger)
	events := NewSessionEvents(hub, logger)
	catalog := &stubCatalog{destinations: catalogFixture()}

	registry := game.NewRegistry(func(playerID uuid.UUID) *game.Engine {
		engine := game.NewEngine(catalog, nil, game.Config{}, logger)
		engine.Subscribe(func(st game.State) {
			events.PublishState(playerID, NewStateView(st))
		})
		return engine
	})

	playerID := uuid.New()
	client := dialTestSocket(t, hub, playerID)

	engine := registry.Get(playerID)
	require.NoError(t, engine.LoadPool(context.Background()))

	// LoadPool publishes the loading snapshot first, then the started round.
	loading := decodeStateUpdate(t, readMessage(t, client))
	assert.True(t, loading.Loading)

	started := decodeStateUpdate(t, readMessage(t, client))
	assert.False(t, started.Loading)
	assert.NotEmpty(t, started.Clues)
	assert.NotEmpty(t, started.Options)
}
