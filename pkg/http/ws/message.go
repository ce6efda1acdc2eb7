package ws

import "encoding/json"

// MessageType constants for WebSocket protocol.
const (
	// Client -> Server
	TypeSubscribeSession = "subscribe_session"
	TypeLeaveSession     = "leave_session"

	// Server -> Client
	TypeSessionCreated        = "session_created"
	TypeParticipantJoined     = "participant_joined"
	TypeChallengeNotification = "challenge_notification"
	TypeStateUpdate           = "state_update"
	TypeError                 = "error"
	TypePing                  = "ping"
	TypePong                  = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	RequestID string          `json:"request_id,omitempty"`
}

// Client Messages (incoming)

type SubscribeSessionPayload struct {
	SessionID string `json:"session_id"`
}

type LeaveSessionPayload struct {
	SessionID string `json:"session_id"`
	Reason    string `json:"reason,omitempty"`
}

// Server Messages (outgoing)

type SessionCreatedPayload struct {
	SessionID string   `json:"session_id"`
	InviteURL string   `json:"invite_url"`
	Rounds    int      `json:"rounds"`
	Tiers     []string `json:"tiers"`
}

type ParticipantJoinedPayload struct {
	SessionID   string `json:"session_id"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Players     int    `json:"players"`
}

type ChallengeNotificationPayload struct {
	FromUsername string `json:"from_username"`
	Score        int    `json:"score"`
	ChallengeURL string `json:"challenge_url"`
}

// StateUpdatePayload carries a full game state snapshot for the player.
type StateUpdatePayload struct {
	State json.RawMessage `json:"state"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
