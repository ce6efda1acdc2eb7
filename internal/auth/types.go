package auth

import "github.com/google/uuid"

// Player represents an authenticated identity (registered or guest).
type Player struct {
	ID          uuid.UUID
	Email       *string
	DisplayName string
	IsGuest     bool
}

// TokenPair holds access and refresh tokens.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest for email/password registration.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// LoginRequest for email/password authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GuestRequest for creating ephemeral guest identities.
type GuestRequest struct {
	DisplayName string `json:"display_name"`
}

// OAuth provider constants.
const OAuthProviderGoogle = "google"
