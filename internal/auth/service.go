package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/abdulsami822/wander-whiz-game/internal/auth/jwt"
	"github.com/abdulsami822/wander-whiz-game/internal/db/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
)

const (
	minPasswordLength = 8
	bcryptCost        = 12
)

// Accounts is the repository surface auth needs.
type Accounts interface {
	Create(ctx context.Context, email, passwordHash *string, displayName string, isGuest bool) (*repository.AccountRow, error)
	GetByEmail(ctx context.Context, email string) (*repository.AccountRow, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.AccountRow, error)
	UpdateLogin(ctx context.Context, id uuid.UUID) error
}

// Service handles authentication and identity management.
type Service struct {
	accounts Accounts
	tokenMgr *jwt.Manager
	logger   zerolog.Logger
}

// NewService creates an authentication service.
func NewService(accounts Accounts, tokenCfg jwt.TokenConfig, logger zerolog.Logger) *Service {
	return &Service{
		accounts: accounts,
		tokenMgr: jwt.NewManager(tokenCfg),
		logger:   logger,
	}
}

// Register creates a new registered account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Player, *TokenPair, error) {
	if req.Email == "" {
		return nil, nil, fmt.Errorf("email required")
	}

	existing, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("check email: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Email
	}
	row, err := s.accounts.Create(ctx, &req.Email, &hash, displayName, false)
	if err != nil {
		return nil, nil, fmt.Errorf("create account: %w", err)
	}

	player := toPlayer(row)
	tokens, err := s.tokenPair(player)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("player_id", player.ID.String()).Msg("account registered")
	return player, tokens, nil
}

// Login authenticates an account with email/password.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Player, *TokenPair, error) {
	row, err := s.accounts.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}
	if row == nil || row.PasswordHash == nil {
		return nil, nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*row.PasswordHash), []byte(req.Password)) != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if err := s.accounts.UpdateLogin(ctx, row.ID); err != nil {
		s.logger.Warn().Err(err).Msg("login timestamp update failed")
	}

	player := toPlayer(row)
	tokens, err := s.tokenPair(player)
	if err != nil {
		return nil, nil, err
	}
	return player, tokens, nil
}

// CreateGuest mints an ephemeral guest identity so players can join sessions
// without registering.
func (s *Service) CreateGuest(ctx context.Context, req GuestRequest) (*Player, *TokenPair, error) {
	displayName := req.DisplayName
	if displayName == "" {
		displayName = "guest-" + uuid.NewString()[:8]
	}
	row, err := s.accounts.Create(ctx, nil, nil, displayName, true)
	if err != nil {
		return nil, nil, fmt.Errorf("create guest: %w", err)
	}

	player := toPlayer(row)
	tokens, err := s.tokenPair(player)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Str("player_id", player.ID.String()).Msg("guest created")
	return player, tokens, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Player, *TokenPair, error) {
	claims, err := s.tokenMgr.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, nil, err
	}
	row, err := s.accounts.GetByID(ctx, claims.PlayerID)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}
	if row == nil {
		return nil, nil, ErrInvalidCredentials
	}

	player := toPlayer(row)
	tokens, err := s.tokenPair(player)
	if err != nil {
		return nil, nil, err
	}
	return player, tokens, nil
}

// ValidateToken parses an access token into its claims.
func (s *Service) ValidateToken(token string) (*jwt.Claims, error) {
	return s.tokenMgr.ValidateAccessToken(token)
}

func (s *Service) tokenPair(player *Player) (*TokenPair, error) {
	id := jwt.Identity{
		ID:          player.ID,
		Email:       player.Email,
		DisplayName: player.DisplayName,
		IsGuest:     player.IsGuest,
	}
	access, err := s.tokenMgr.GenerateAccessToken(id)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokenMgr.GenerateRefreshToken(id)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokenMgr.AccessTTL().Seconds()),
	}, nil
}

func toPlayer(row *repository.AccountRow) *Player {
	return &Player{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		IsGuest:     row.IsGuest,
	}
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
