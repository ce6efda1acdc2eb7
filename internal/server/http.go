package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/auth"
	"github.com/abdulsami822/wander-whiz-game/internal/config"
)

// WSUpgrader handles WebSocket upgrades (configure CORS/security as needed).
var WSUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: implement proper origin checking for production
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handlers groups the route handlers wired by the application bootstrap.
type Handlers struct {
	Auth        *auth.HTTPHandlers
	Game        *GameHandlers
	Sessions    *SessionHandlers
	Leaderboard *LeaderboardHandlers
	WS          *WSHandler
}

// NewHTTPServer wires all routes for the API service.
func NewHTTPServer(cfg *config.App, logger zerolog.Logger, pool *pgxpool.Pool, redisClient *redis.Client, authSvc *auth.Service, h Handlers) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		if err := pingDependencies(r.Context(), pool, redisClient); err != nil {
			logger.Error().Err(err).Msg("dependency ping failed")
			http.Error(w, "upstream error", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pong":true}`))
	})

	// Auth endpoints
	if h.Auth != nil {
		mux.HandleFunc("/v1/auth/register", h.Auth.Register)
		mux.HandleFunc("/v1/auth/login", h.Auth.Login)
		mux.HandleFunc("/v1/auth/guest", h.Auth.CreateGuest)
		mux.HandleFunc("/v1/auth/refresh", h.Auth.RefreshToken)
		mux.HandleFunc("/v1/oauth/google/start", h.Auth.OAuthStart)
		mux.HandleFunc("/v1/oauth/google/callback", h.Auth.OAuthCallback)
	}

	authed := func(handler http.HandlerFunc) http.Handler {
		return auth.Middleware(authSvc, logger)(auth.RequireAuth(handler))
	}

	if h.Auth != nil {
		mux.Handle("/v1/players/me", authed(h.Auth.GetMe))
	}

	// Gameplay endpoints, one engine per authenticated player
	if h.Game != nil {
		mux.Handle("/v1/game/state", authed(h.Game.State))
		mux.Handle("/v1/game/difficulty", authed(h.Game.SetDifficulty))
		mux.Handle("/v1/game/clue", authed(h.Game.RevealClue))
		mux.Handle("/v1/game/guess", authed(h.Game.SubmitGuess))
		mux.Handle("/v1/game/next", authed(h.Game.NextRound))
		mux.Handle("/v1/game/reset", authed(h.Game.Reset))
		mux.Handle("/v1/game/username", authed(h.Game.SetUsername))
		mux.Handle("/v1/game/challenge-url", authed(h.Game.ChallengeURL))
		mux.Handle("/v1/game/challenge", authed(h.Game.AcceptChallenge))
		mux.Handle("/v1/game/share", authed(h.Game.Share))
	}

	// Multiplayer sessions
	if h.Sessions != nil {
		mux.Handle("/v1/sessions", authed(h.Sessions.Create))
		mux.Handle("/v1/sessions/{id}/join", authed(h.Sessions.Join))
		mux.Handle("/v1/sessions/{id}/end", authed(h.Sessions.End))
	}

	if h.Leaderboard != nil {
		mux.HandleFunc("/v1/leaderboard", h.Leaderboard.Top)
	}

	// WebSocket endpoint (token authenticated in the handler)
	if h.WS != nil {
		mux.HandleFunc("/ws/sessions", h.WS.HandleWebSocket)
	}

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: corsMiddleware(cfg.CORS)(mux),
	}
}

func pingDependencies(ctx context.Context, pool *pgxpool.Pool, redisClient *redis.Client) error {
	if err := pool.Ping(ctx); err != nil {
		return err
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	return nil
}

// corsMiddleware applies the configured CORS policy to every route.
func corsMiddleware(cfg config.CORS) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.AllowedMethods, ", ")
	headers := strings.Join(cfg.AllowedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && originAllowed(cfg.AllowedOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.Header().Set("Access-Control-Allow-Methods", methods)
				w.Header().Set("Access-Control-Allow-Headers", headers)
				w.Header().Set("Access-Control-Max-Age", maxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func originAllowed(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}
