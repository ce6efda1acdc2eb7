package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AccountRow mirrors the accounts table backing authenticated identities.
type AccountRow struct {
	ID           uuid.UUID
	Email        *string
	PasswordHash *string
	DisplayName  string
	IsGuest      bool
	CreatedAt    time.Time
	LastLoginAt  *time.Time
}

// AccountRepository exposes typed DB operations required by auth flows.
type AccountRepository struct {
	db DBTX
}

// NewAccountRepository constructs an account repository.
func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts an account (guest or registered).
func (r *AccountRepository) Create(ctx context.Context, email, passwordHash *string, displayName string, isGuest bool) (*AccountRow, error) {
	var row AccountRow
	err := r.db.QueryRow(ctx, `
		INSERT INTO accounts (email, password_hash, display_name, is_guest)
		VALUES ($1, $2, $3, $4)
		RETURNING account_id, email, password_hash, display_name, is_guest, created_at, last_login_at`,
		email, passwordHash, displayName, isGuest).
		Scan(&row.ID, &row.Email, &row.PasswordHash, &row.DisplayName,
			&row.IsGuest, &row.CreatedAt, &row.LastLoginAt)
	if err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return &row, nil
}

// GetByEmail fetches an account by email. Absence is (nil, nil).
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*AccountRow, error) {
	var row AccountRow
	err := r.db.QueryRow(ctx, `
		SELECT account_id, email, password_hash, display_name, is_guest, created_at, last_login_at
		FROM accounts
		WHERE email = $1`, email).
		Scan(&row.ID, &row.Email, &row.PasswordHash, &row.DisplayName,
			&row.IsGuest, &row.CreatedAt, &row.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return &row, nil
}

// GetByID fetches an account by id. Absence is (nil, nil).
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*AccountRow, error) {
	var row AccountRow
	err := r.db.QueryRow(ctx, `
		SELECT account_id, email, password_hash, display_name, is_guest, created_at, last_login_at
		FROM accounts
		WHERE account_id = $1`, id).
		Scan(&row.ID, &row.Email, &row.PasswordHash, &row.DisplayName,
			&row.IsGuest, &row.CreatedAt, &row.LastLoginAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get account by id: %w", err)
	}
	return &row, nil
}

// UpdateLogin records the last login timestamp.
func (r *AccountRepository) UpdateLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		UPDATE accounts SET last_login_at = NOW() WHERE account_id = $1`, id)
	if err != nil {
		return fmt.Errorf("update account login: %w", err)
	}
	return nil
}
