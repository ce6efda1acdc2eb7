package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abdulsami822/wander-whiz-game/internal/auth"
	"github.com/abdulsami822/wander-whiz-game/internal/auth/jwt"
	"github.com/abdulsami822/wander-whiz-game/internal/challenge"
	"github.com/abdulsami822/wander-whiz-game/internal/config"
	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
	"github.com/abdulsami822/wander-whiz-game/internal/destination"
	"github.com/abdulsami822/wander-whiz-game/internal/game"
	"github.com/abdulsami822/wander-whiz-game/internal/kv"
	"github.com/abdulsami822/wander-whiz-game/internal/logging"
	"github.com/abdulsami822/wander-whiz-game/internal/profile"
	"github.com/abdulsami822/wander-whiz-game/internal/server"
	"github.com/abdulsami822/wander-whiz-game/internal/session"
	ws "github.com/abdulsami822/wander-whiz-game/pkg/http/ws"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server
}

// New bootstraps config, logger, Postgres, Redis, the game services and the
// HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	connString := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s pool_max_conns=10",
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Database, cfg.Postgres.SSLMode)

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	accountRepo := repository.NewAccountRepository(pool)
	destinationRepo := repository.NewDestinationRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)

	// Auth
	if cfg.Security.JWTSecret == "" {
		return nil, fmt.Errorf("authentication service must be configured (set JWT_SECRET)")
	}
	tokenCfg := jwt.TokenConfig{
		AccessSecret:  []byte(cfg.Security.JWTSecret),
		RefreshSecret: []byte(cfg.Security.JWTSecret + "_refresh"),
		Issuer:        cfg.Name,
	}
	authSvc := auth.NewService(accountRepo, tokenCfg, logger)

	var oauthSvc *auth.OAuthService
	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		redirectURL := cfg.OAuth.GoogleRedirectURL
		if redirectURL == "" {
			redirectURL = fmt.Sprintf("%s/v1/oauth/google/callback", cfg.BaseURL)
		}
		oauthSvc = auth.NewOAuthService(
			cfg.OAuth.GoogleClientID,
			cfg.OAuth.GoogleClientSecret,
			redirectURL,
			logger,
		)
		logger.Info().Msg("OAuth service initialized")
	} else {
		logger.Warn().Msg("OAuth not configured (missing GOOGLE_OAUTH_CLIENT_ID or GOOGLE_OAUTH_CLIENT_SECRET)")
	}
	authHandlers := auth.NewHTTPHandlers(authSvc, oauthSvc, logger)

	// Profiles and leaderboard
	usernameStore := kv.NewRedisStore(redisClient, "")
	board := profile.NewLeaderboard(redisClient)
	profileSvc := profile.NewService(profileRepo, usernameStore, board, logger)

	// Destination catalog with Redis pool cache
	poolCache := destination.NewCache(redisClient, cfg.Game.CatalogCacheTTL)
	catalog := destination.NewService(destinationRepo, poolCache, logger)

	metrics := server.NewMetrics()

	// WebSocket fan-out
	hub := ws.NewHub(logger)
	events := server.NewSessionEvents(hub, logger)

	// Per-player game engines. Every engine pushes its state transitions to
	// the owning player's socket.
	engineCfg := game.Config{
		MaxRounds:           cfg.Game.MaxRounds,
		OptionCount:         cfg.Game.OptionCount,
		CatalogFetchTimeout: cfg.Game.CatalogFetchTimeout,
		ScoreWriteTimeout:   cfg.Game.ScoreWriteTimeout,
	}
	scores := &countingScores{inner: profileSvc, metrics: metrics}
	registry := game.NewRegistry(func(playerID uuid.UUID) *game.Engine {
		engine := game.NewEngine(catalog, scores, engineCfg, logger)
		engine.Subscribe(func(st game.State) {
			events.PublishState(playerID, server.NewStateView(st))
		})
		return engine
	})

	// Challenge sharing
	var uploader challenge.Uploader
	if cfg.Share.ImageHostURL != "" {
		uploader = challenge.NewImageHostClient(cfg.Share.ImageHostURL, cfg.Share.ImageHostKey,
			&http.Client{Timeout: cfg.Share.HTTPTimeout})
	}
	composer := challenge.NewComposer(nil, uploader, cfg.BaseURL, logger)

	// Sessions
	sessionSvc := session.NewService(sessionRepo, events, cfg.Game.SessionRounds, logger)

	handlers := server.Handlers{
		Auth:        authHandlers,
		Game:        server.NewGameHandlers(registry, profileSvc, composer, events, metrics, logger),
		Sessions:    server.NewSessionHandlers(sessionSvc, registry, hub, events, cfg.BaseURL, metrics, logger),
		Leaderboard: server.NewLeaderboardHandlers(profileSvc, logger),
		WS:          server.NewWSHandler(hub, authSvc, logger),
	}

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, authSvc, handlers)

	return &Application{
		cfg:    cfg,
		logger: logger,
		pool:   pool,
		redis:  redisClient,
		http:   apiServer,
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

// countingScores instruments high score writes on their way to the profile
// service.
type countingScores struct {
	inner   *profile.Service
	metrics *server.Metrics
}

func (c *countingScores) PushHighScore(ctx context.Context, username string, score int) error {
	if err := c.inner.PushHighScore(ctx, username, score); err != nil {
		return err
	}
	c.metrics.HighScoreUpdates.Inc()
	return nil
}
