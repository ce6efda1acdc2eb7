package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/auth"
	"github.com/abdulsami822/wander-whiz-game/internal/challenge"
	"github.com/abdulsami822/wander-whiz-game/internal/session"
	httperrors "github.com/abdulsami822/wander-whiz-game/pkg/http/errors"
	"github.com/abdulsami822/wander-whiz-game/pkg/http/ws"
)

// WSHandler upgrades session notification connections and routes incoming
// subscribe/leave messages to the hub.
type WSHandler struct {
	hub     *ws.Hub
	authSvc *auth.Service
	logger  zerolog.Logger
}

// NewWSHandler creates the WebSocket endpoint handler.
func NewWSHandler(hub *ws.Hub, authSvc *auth.Service, logger zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, authSvc: authSvc, logger: logger}
}

// HandleWebSocket handles GET /ws/sessions. Browsers cannot set headers on
// WebSocket dials, so the token rides in the query string.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Token required")
		return
	}
	claims, err := h.authSvc.ValidateToken(token)
	if err != nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "Invalid or expired token")
		return
	}
	playerID := claims.PlayerID

	rawConn, err := WSUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	conn := ws.NewConnection(rawConn, h.logger)
	h.hub.RegisterConnection(playerID, conn)

	go conn.WritePump()
	go func() {
		defer h.hub.UnregisterConnection(playerID)
		conn.ReadPump(func(msg ws.Message) error {
			return h.handleMessage(playerID, conn, msg)
		})
	}()
}

func (h *WSHandler) handleMessage(playerID uuid.UUID, conn *ws.Connection, msg ws.Message) error {
	switch msg.Type {
	case ws.TypeSubscribeSession:
		var payload ws.SubscribeSessionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Malformed payload")
		}
		sessionID, err := uuid.Parse(payload.SessionID)
		if err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidSessionID, "Malformed session id")
		}
		h.hub.JoinSession(sessionID, playerID)
		return nil

	case ws.TypeLeaveSession:
		var payload ws.LeaveSessionPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return h.sendError(conn, msg.RequestID, httperrors.ErrCodeInvalidPayload, "Malformed payload")
		}
		if sessionID, err := uuid.Parse(payload.SessionID); err == nil {
			h.hub.LeaveSession(sessionID, playerID)
		}
		return nil

	case ws.TypePing:
		return conn.Send(ws.Message{Type: ws.TypePong, RequestID: msg.RequestID})

	default:
		return h.sendError(conn, msg.RequestID, httperrors.ErrCodeUnknownMessageType, "Unknown message type")
	}
}

func (h *WSHandler) sendError(conn *ws.Connection, requestID, code, message string) error {
	payload, _ := json.Marshal(ws.ErrorPayload{Code: code, Message: message})
	return conn.Send(ws.Message{Type: ws.TypeError, Payload: payload, RequestID: requestID})
}

// SessionEvents fans session lifecycle notifications out over the hub.
type SessionEvents struct {
	hub    *ws.Hub
	logger zerolog.Logger
}

// NewSessionEvents creates the hub-backed session event sink.
func NewSessionEvents(hub *ws.Hub, logger zerolog.Logger) *SessionEvents {
	return &SessionEvents{hub: hub, logger: logger}
}

// SessionCreated announces a freshly created session to its members. At this
// point that is the creator, who may still be mid-handshake on the socket, so
// a missed broadcast is logged and dropped.
func (e *SessionEvents) SessionCreated(sess *session.Session, inviteURL string) {
	tiers := make([]string, 0, len(sess.Settings.Difficulty))
	for _, tier := range sess.Settings.Difficulty {
		tiers = append(tiers, string(tier))
	}
	payload, _ := json.Marshal(ws.SessionCreatedPayload{
		SessionID: sess.ID.String(),
		InviteURL: inviteURL,
		Rounds:    sess.Settings.Rounds,
		Tiers:     tiers,
	})
	if err := e.hub.BroadcastToSession(sess.ID, ws.Message{
		Type:    ws.TypeSessionCreated,
		Payload: payload,
	}); err != nil {
		e.logger.Debug().Err(err).Str("session_id", sess.ID.String()).Msg("session created broadcast incomplete")
	}
}

// PublishState pushes a player's latest game state to their connection, if
// they have one. Engines call this after every completed transition so
// socket-connected clients track gameplay without polling.
func (e *SessionEvents) PublishState(playerID uuid.UUID, view StateView) {
	raw, err := json.Marshal(view)
	if err != nil {
		e.logger.Warn().Err(err).Msg("state view marshal failed")
		return
	}
	payload, _ := json.Marshal(ws.StateUpdatePayload{State: raw})
	if err := e.hub.SendToPlayer(playerID, ws.Message{
		Type:    ws.TypeStateUpdate,
		Payload: payload,
	}); err != nil {
		e.logger.Debug().Err(err).Str("player_id", playerID.String()).Msg("state push skipped")
	}
}

// ParticipantJoined notifies session members that a player joined.
func (e *SessionEvents) ParticipantJoined(sessionID, playerID uuid.UUID) {
	payload, _ := json.Marshal(ws.ParticipantJoinedPayload{
		SessionID: sessionID.String(),
		PlayerID:  playerID.String(),
	})
	if err := e.hub.BroadcastToSession(sessionID, ws.Message{
		Type:    ws.TypeParticipantJoined,
		Payload: payload,
	}); err != nil {
		e.logger.Debug().Err(err).Str("session_id", sessionID.String()).Msg("participant broadcast incomplete")
	}
}

// NotifyChallenge delivers an incoming challenge banner to a player after the
// configured delay, mirroring the client-side toast timing.
func (e *SessionEvents) NotifyChallenge(playerID uuid.UUID, fromUsername string, score int, challengeURL string) {
	go func() {
		time.Sleep(challenge.NotifyDelay)
		payload, _ := json.Marshal(ws.ChallengeNotificationPayload{
			FromUsername: fromUsername,
			Score:        score,
			ChallengeURL: challengeURL,
		})
		if err := e.hub.SendToPlayer(playerID, ws.Message{
			Type:    ws.TypeChallengeNotification,
			Payload: payload,
		}); err != nil {
			e.logger.Debug().Err(err).Str("player_id", playerID.String()).Msg("challenge notification dropped")
		}
	}()
}
