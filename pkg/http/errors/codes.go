package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeUnauthorized           = "unauthorized"
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeTokenExpired           = "token_expired"
	ErrCodeAuthenticationRequired = "authentication_required"

	// Validation errors
	ErrCodeInvalidRequest   = "invalid_request"
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeMissingField     = "missing_field"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeAlreadyExists = "already_exists"
	ErrCodeConflict      = "conflict"

	// Account errors
	ErrCodeRegistrationFailed  = "registration_failed"
	ErrCodeLoginFailed         = "login_failed"
	ErrCodeGuestCreationFailed = "guest_creation_failed"
	ErrCodeRefreshFailed       = "refresh_failed"
	ErrCodeInvalidUsername     = "invalid_username"
	ErrCodeSetUsernameFailed   = "set_username_failed"

	// Game errors
	ErrCodeCatalogFetchFailed = "catalog_fetch_failed"
	ErrCodeEmptyPool          = "empty_destination_pool"
	ErrCodeGuessRejected      = "guess_rejected"
	ErrCodeNoActiveRound      = "no_active_round"
	ErrCodeGameOver           = "game_over"
	ErrCodeInvalidDifficulty  = "invalid_difficulty"

	// Session errors
	ErrCodeSessionCreationFailed = "session_creation_failed"
	ErrCodeSessionNotFound       = "session_not_found"
	ErrCodeSessionInactive       = "session_inactive"
	ErrCodeInvalidSessionID      = "invalid_session_id"
	ErrCodeJoinFailed            = "join_failed"
	ErrCodeSessionEndFailed      = "session_end_failed"

	// Challenge / share errors
	ErrCodeChallengeUnavailable = "challenge_unavailable"
	ErrCodeShareFailed          = "share_failed"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"

	// WebSocket errors
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeUnknownMessageType = "unknown_message_type"
	ErrCodeConnectionError    = "connection_error"

	// Server errors
	ErrCodeInternalError      = "internal_error"
	ErrCodeServiceUnavailable = "service_unavailable"
	ErrCodeUpstreamError      = "upstream_error"

	// OAuth errors
	ErrCodeOAuthNotConfigured  = "oauth_not_configured"
	ErrCodeOAuthStartFailed    = "oauth_start_failed"
	ErrCodeOAuthCallbackFailed = "oauth_callback_failed"
	ErrCodeOAuthMissingCode    = "missing_code"
	ErrCodeOAuthInvalidState   = "invalid_state"
	ErrCodeUserCreationFailed  = "user_creation_failed"
)
