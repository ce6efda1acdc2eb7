package ws

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestJoinSessionIsIdempotent(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sessionID := uuid.New()
	playerID := uuid.New()

	hub.JoinSession(sessionID, playerID)
	hub.JoinSession(sessionID, playerID)

	assert.Len(t, hub.sessions[sessionID], 1)
}

func TestLeaveSessionRemovesPlayer(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	sessionID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	hub.JoinSession(sessionID, first)
	hub.JoinSession(sessionID, second)
	hub.LeaveSession(sessionID, first)

	assert.Equal(t, []uuid.UUID{second}, hub.sessions[sessionID])
}

func TestSendToPlayerWithoutConnection(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	err := hub.SendToPlayer(uuid.New(), Message{Type: TypePing})
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestBroadcastSkipsEmptySession(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	err := hub.BroadcastToSession(uuid.New(), Message{Type: TypeParticipantJoined})
	assert.NoError(t, err)
}
