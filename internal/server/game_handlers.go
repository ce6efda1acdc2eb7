package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/auth"
	"github.com/abdulsami822/wander-whiz-game/internal/challenge"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
	"github.com/abdulsami822/wander-whiz-game/internal/profile"
	httperrors "github.com/abdulsami822/wander-whiz-game/pkg/http/errors"
)

// GameHandlers serves the per-player gameplay endpoints. Every handler
// resolves the caller's engine from the registry by authenticated player id.
type GameHandlers struct {
	registry *game.Registry
	profiles *profile.Service
	composer *challenge.Composer
	events   *SessionEvents
	metrics  *Metrics
	logger   zerolog.Logger
}

// NewGameHandlers creates the gameplay HTTP handlers. events may be nil.
func NewGameHandlers(registry *game.Registry, profiles *profile.Service, composer *challenge.Composer, events *SessionEvents, metrics *Metrics, logger zerolog.Logger) *GameHandlers {
	return &GameHandlers{
		registry: registry,
		profiles: profiles,
		composer: composer,
		events:   events,
		metrics:  metrics,
		logger:   logger,
	}
}

func (h *GameHandlers) engine(w http.ResponseWriter, r *http.Request) *game.Engine {
	playerID := auth.PlayerIDFromContext(r.Context())
	if playerID == uuid.Nil {
		httperrors.RespondUnauthorized(w, httperrors.ErrCodeAuthenticationRequired, "Authentication required")
		return nil
	}
	return h.registry.Get(playerID)
}

// State handles GET /v1/game/state. The first call for a fresh engine
// restores the player's saved username and loads the destination pool before
// responding.
func (h *GameHandlers) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	st := engine.Snapshot()
	if st.Loading && st.CurrentDestination == nil && len(st.Destinations) == 0 {
		if st.Username == "" {
			playerID := auth.PlayerIDFromContext(r.Context())
			if username, ok := h.profiles.StoredUsername(r.Context(), playerID); ok {
				engine.SetUsername(username)
			}
		}
		if err := engine.LoadPool(r.Context()); err != nil {
			h.metrics.PoolLoadFailures.Inc()
			h.logger.Warn().Err(err).Msg("initial pool load failed")
		} else {
			h.metrics.RoundsStarted.Inc()
		}
		st = engine.Snapshot()
	}

	respondJSON(w, http.StatusOK, NewStateView(st))
}

// SetDifficulty handles POST /v1/game/difficulty.
func (h *GameHandlers) SetDifficulty(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Difficulty []string `json:"difficulty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
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

	if err := engine.SetDifficulty(r.Context(), tiers); err != nil {
		if errors.Is(err, game.ErrEmptyDifficulty) {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidDifficulty, err.Error())
			return
		}
		h.metrics.PoolLoadFailures.Inc()
		h.logger.Warn().Err(err).Msg("pool reload failed")
	} else {
		h.metrics.RoundsStarted.Inc()
	}

	respondJSON(w, http.StatusOK, NewStateView(engine.Snapshot()))
}

// RevealClue handles POST /v1/game/clue.
func (h *GameHandlers) RevealClue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}
	respondJSON(w, http.StatusOK, NewStateView(engine.RevealNextClue()))
}

// SubmitGuess handles POST /v1/game/guess.
func (h *GameHandlers) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	st, err := engine.SubmitGuess(game.Option{City: req.City, Country: req.Country})
	switch {
	case errors.Is(err, game.ErrGameOver):
		httperrors.RespondConflict(w, httperrors.ErrCodeGameOver, err.Error())
		return
	case errors.Is(err, game.ErrNoActiveRound):
		httperrors.RespondConflict(w, httperrors.ErrCodeNoActiveRound, err.Error())
		return
	case errors.Is(err, game.ErrAlreadyGuessed):
		httperrors.RespondConflict(w, httperrors.ErrCodeGuessRejected, err.Error())
		return
	case err != nil:
		httperrors.RespondInternalError(w, err.Error())
		return
	}

	outcome := "incorrect"
	if st.IsCorrect {
		outcome = "correct"
	}
	h.metrics.Guesses.WithLabelValues(outcome).Inc()

	respondJSON(w, http.StatusOK, NewStateView(st))
}

// NextRound handles POST /v1/game/next.
func (h *GameHandlers) NextRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	st := engine.AdvanceRound(r.Context())
	if !st.GameOver {
		h.metrics.RoundsStarted.Inc()
	}
	respondJSON(w, http.StatusOK, NewStateView(st))
}

// Reset handles POST /v1/game/reset.
func (h *GameHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		PreserveUsername bool     `json:"preserve_username"`
		ClearChallenge   bool     `json:"clear_challenge"`
		Difficulty       []string `json:"difficulty,omitempty"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	opts := game.ResetOptions{
		PreserveUsername: req.PreserveUsername,
		ClearChallenge:   req.ClearChallenge,
	}
	for _, raw := range req.Difficulty {
		tier, err := game.ParseDifficulty(raw)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidDifficulty, err.Error())
			return
		}
		opts.Difficulty = append(opts.Difficulty, tier)
	}

	st := engine.Reset(opts)
	if len(opts.Difficulty) > 0 {
		// A difficulty override cleared the pool; reload it before responding.
		if err := engine.LoadPool(r.Context()); err != nil {
			h.metrics.PoolLoadFailures.Inc()
			h.logger.Warn().Err(err).Msg("pool reload after reset failed")
		}
		st = engine.Snapshot()
	}
	respondJSON(w, http.StatusOK, NewStateView(st))
}

// SetUsername handles POST /v1/game/username. The handle is validated and
// persisted by the profile service, then mirrored onto the engine state.
func (h *GameHandlers) SetUsername(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	playerID := auth.PlayerIDFromContext(r.Context())
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	prof, returning, err := h.profiles.SetUsername(r.Context(), playerID, req.Username, engine.Snapshot().Score)
	if err != nil {
		if errors.Is(err, profile.ErrInvalidUsername) {
			httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidUsername, err.Error(), "username")
			return
		}
		httperrors.RespondInternalError(w, err.Error())
		return
	}

	st := engine.SetUsername(prof.Username)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"username":  prof.Username,
		"returning": returning,
		"state":     NewStateView(st),
	})
}

// ChallengeURL handles GET /v1/game/challenge-url. Requires a username so the
// invitee sees who challenged them.
func (h *GameHandlers) ChallengeURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	st := engine.Snapshot()
	if st.Username == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidUsername, "Set a username before challenging friends")
		return
	}

	challengeURL := h.composer.ChallengeURL(st.Username, st.Score)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"challenge_url": challengeURL,
		"message":       challenge.Message(st.Score, challengeURL),
		"intent_url":    challenge.IntentURL(challenge.Message(st.Score, challengeURL)),
	})
}

// AcceptChallenge handles POST /v1/game/challenge. The body carries either the
// full challenge URL or its decoded parts.
func (h *GameHandlers) AcceptChallenge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		URL      string `json:"url,omitempty"`
		Username string `json:"username,omitempty"`
		Score    int    `json:"score,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}

	ch := challenge.Challenge{Username: req.Username, Score: req.Score}
	if req.URL != "" {
		parsed, ok := challenge.ParseURL(req.URL)
		if !ok {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Malformed challenge URL")
			return
		}
		ch = parsed
	}
	if ch.Username == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Challenge username required")
		return
	}

	st := engine.SetChallenge(ch.Username, ch.Score)

	if h.events != nil {
		playerID := auth.PlayerIDFromContext(r.Context())
		h.events.NotifyChallenge(playerID, ch.Username, ch.Score,
			h.composer.ChallengeURL(ch.Username, ch.Score))
	}

	respondJSON(w, http.StatusOK, NewStateView(st))
}

// Share handles POST /v1/game/share. The optional snapshot is a base64 PNG of
// the player's score card.
func (h *GameHandlers) Share(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httperrors.RespondError(w, http.StatusMethodNotAllowed, httperrors.ErrCodeInvalidRequest, "Method not allowed")
		return
	}
	engine := h.engine(w, r)
	if engine == nil {
		return
	}

	var req struct {
		Snapshot string `json:"snapshot,omitempty"` // base64-encoded PNG
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	st := engine.Snapshot()
	if st.Username == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidUsername, "Set a username before sharing")
		return
	}

	var snapshot []byte
	if req.Snapshot != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.Snapshot)
		if err != nil {
			httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Snapshot must be base64 encoded")
			return
		}
		snapshot = decoded
	}

	shared, err := h.composer.Share(r.Context(), st.Username, st.Score, snapshot)
	if err != nil {
		h.logger.Warn().Err(err).Msg("share failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeShareFailed, "Share failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"share_url": shared})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
