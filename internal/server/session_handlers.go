package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/auth"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
	"github.com/abdulsami822/wander-whiz-game/internal/profile"
	"github.com/abdulsami822/wander-whiz-game/internal/session"
	httperrors "github.com/abdulsami822/wander-whiz-game/pkg/http/errors"
	"github.com/abdulsami822/wander-whiz-game/pkg/http/ws"
)

// SessionHandlers serves the multiplayer session endpoints.
type SessionHandlers struct {
	sessions *session.Service
	registry *game.Registry
	hub      *ws.Hub
	events   *SessionEvents
	baseURL  string
	metrics  *Metrics
	logger   zerolog.Logger
}

// NewSessionHandlers creates the session HTTP handlers. events may be nil.
func NewSessionHandlers(sessions *session.Service, registry *game.Registry, hub *ws.Hub, events *SessionEvents, baseURL string, metrics *Metrics, logger zerolog.Logger) *SessionHandlers {
	return &SessionHandlers{
		sessions: sessions,
		registry: registry,
		hub:      hub,
		events:   events,
		baseURL:  baseURL,
		metrics:  metrics,
		logger:   logger,
	}
}

// Create handles POST /v1/sessions.
func (h *SessionHandlers) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	playerID := auth.PlayerIDFromContext(r.Context())

	var req struct {
		Difficulty []string `json:"difficulty,omitempty"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	tiers := make([]game.Difficulty, 0, len(req.Difficulty))
	for _, raw := range req.Difficulty {
		tier, err := game.ParseDifficulty(raw)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidDifficulty, err.Error())
			return
		}
		tiers = append(tiers, tier)
	}

	sess, err := h.sessions.Create(r.Context(), playerID, tiers)
	if err != nil {
		if errors.Is(err, session.ErrAuthRequired) {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
			return
		}
		h.logger.Error().Err(err).Msg("session create failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeSessionCreationFailed, "Could not create session")
		return
	}

	h.metrics.SessionsCreated.Inc()
	h.hub.JoinSession(sess.ID, playerID)

	joinURL := session.JoinURL(h.baseURL, sess.ID)
	if h.events != nil {
		h.events.SessionCreated(sess, joinURL)
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"session_id": sess.ID.String(),
		"join_url":   joinURL,
	})
}

// End handles POST /v1/sessions/{id}/end. Only the creator can end a session.
func (h *SessionHandlers) End(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	playerID := auth.PlayerIDFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Malformed session id")
		return
	}

	err = h.sessions.End(r.Context(), id, playerID)
	switch {
	case errors.Is(err, session.ErrAuthRequired):
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	case errors.Is(err, session.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	case errors.Is(err, session.ErrNotOwner):
		httperrors.RespondForbidden(w, httperrors.ErrCodeForbidden, "Only the session creator can end it")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("session end failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeSessionEndFailed, "Could not end session")
		return
	}

	h.hub.LeaveSession(id, playerID)
	respondJSON(w, http.StatusOK, map[string]interface{}{"ended": true})
}

// Join handles POST /v1/sessions/{id}/join. On success the caller's engine
// adopts the session and its difficulty settings.
func (h *SessionHandlers) Join(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	playerID := auth.PlayerIDFromContext(r.Context())

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidSessionID, "Malformed session id")
		return
	}

	sess, err := h.sessions.Join(r.Context(), id, playerID)
	switch {
	case errors.Is(err, session.ErrAuthRequired):
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return
	case errors.Is(err, session.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	case errors.Is(err, session.ErrInactive):
		httperrors.RespondError(w, http.StatusGone, httperrors.ErrCodeSessionInactive, "Session has ended")
		return
	case err != nil:
		h.logger.Error().Err(err).Msg("session join failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeJoinFailed, "Could not join session")
		return
	}

	h.metrics.SessionsJoined.Inc()
	h.hub.JoinSession(id, playerID)

	engine := h.registry.Get(playerID)
	if err := engine.AdoptSession(r.Context(), id.String(), sess.Settings.Difficulty); err != nil {
		h.logger.Warn().Err(err).Str("session_id", id.String()).Msg("pool reload after join failed")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session": sess,
		"state":   NewStateView(engine.Snapshot()),
	})
}

// LeaderboardHandlers serves the public high score listing.
type LeaderboardHandlers struct {
	profiles *profile.Service
	logger   zerolog.Logger
}

// NewLeaderboardHandlers creates the leaderboard HTTP handlers.
func NewLeaderboardHandlers(profiles *profile.Service, logger zerolog.Logger) *LeaderboardHandlers {
	return &LeaderboardHandlers{profiles: profiles, logger: logger}
}

// Top handles GET /v1/leaderboard.
func (h *LeaderboardHandlers) Top(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	entries, err := h.profiles.Top(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("leaderboard fetch failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeLeaderboardFetchFailed, "Could not fetch leaderboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
