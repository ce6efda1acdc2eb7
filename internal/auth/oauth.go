package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthUserInfo contains player data returned by an OAuth provider.
type OAuthUserInfo struct {
	ProviderID string
	Email      string
	Name       string
	AvatarURL  string
}

// OAuthService handles the Google OAuth flow with full token exchange.
type OAuthService struct {
	googleConfig *oauth2.Config
	logger       zerolog.Logger
	httpClient   *http.Client
}

// NewOAuthService creates an OAuth service with provider credentials.
func NewOAuthService(clientID, clientSecret, redirectURI string, logger zerolog.Logger) *OAuthService {
	return &OAuthService{
		googleConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		logger:     logger,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// StartFlow generates the authorization URL for the given provider.
func (s *OAuthService) StartFlow(provider, state string) (string, error) {
	if provider != OAuthProviderGoogle {
		return "", fmt.Errorf("unsupported provider: %s", provider)
	}
	if s.googleConfig.ClientID == "" {
		return "", fmt.Errorf("OAuth not configured (missing GOOGLE_CLIENT_ID)")
	}
	return s.googleConfig.AuthCodeURL(state, oauth2.AccessTypeOffline), nil
}

// HandleCallback exchanges the authorization code for the provider's user info.
func (s *OAuthService) HandleCallback(ctx context.Context, provider, code string) (*OAuthUserInfo, error) {
	if provider != OAuthProviderGoogle {
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}

	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth token exchange failed")
		return nil, fmt.Errorf("token exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info API returned status %d", resp.StatusCode)
	}

	var googleUser struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}

	return &OAuthUserInfo{
		ProviderID: googleUser.ID,
		Email:      googleUser.Email,
		Name:       googleUser.Name,
		AvatarURL:  googleUser.Picture,
	}, nil
}

// LoginOrCreate finds an account by OAuth email or creates one, then issues tokens.
func (s *OAuthService) LoginOrCreate(ctx context.Context, authSvc *Service, provider string, info *OAuthUserInfo) (*Player, *TokenPair, error) {
	if info.Email == "" {
		return nil, nil, fmt.Errorf("OAuth provider did not return email")
	}

	row, err := authSvc.accounts.GetByEmail(ctx, info.Email)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup account: %w", err)
	}

	if row == nil {
		displayName := info.Name
		if displayName == "" {
			displayName = info.Email
		}
		// OAuth accounts carry no password hash.
		row, err = authSvc.accounts.Create(ctx, &info.Email, nil, displayName, false)
		if err != nil {
			return nil, nil, fmt.Errorf("create OAuth account: %w", err)
		}
		s.logger.Info().Str("player_id", row.ID.String()).Str("provider", provider).Msg("OAuth account created")
	} else {
		if err := authSvc.accounts.UpdateLogin(ctx, row.ID); err != nil {
			s.logger.Warn().Err(err).Msg("login timestamp update failed")
		}
		s.logger.Info().Str("player_id", row.ID.String()).Str("provider", provider).Msg("OAuth account logged in")
	}

	player := toPlayer(row)
	tokens, err := authSvc.tokenPair(player)
	if err != nil {
		return nil, nil, err
	}
	return player, tokens, nil
}
