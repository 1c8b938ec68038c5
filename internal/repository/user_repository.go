package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MostTP/EduWave-Backend/internal/model"
)

const userColumns = `id, full_name, email, password_hash, role, email_verified,
	email_verification_token_hash, email_verification_expires_at,
	password_reset_token_hash, password_reset_expires_at,
	refresh_token_hash, login_streak, last_login_at, created_at, updated_at`

// UserRepository is the credential store. Every single-use token consumption
// is a single conditional UPDATE so a concurrent presenter of the same token
// cannot double-spend it.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) (uuid.UUID, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ConsumeVerificationToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	ClearExpiredVerificationToken(ctx context.Context, tokenHash string) (bool, error)

	SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id uuid.UUID) error
	ConsumeResetToken(ctx context.Context, tokenHash string, newPasswordHash string) (uuid.UUID, error)
	ClearExpiredResetToken(ctx context.Context, tokenHash string) (bool, error)

	RecordLogin(ctx context.Context, id uuid.UUID, streak int, at time.Time, refreshTokenHash string) error
	RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string) error
	ClearRefreshToken(ctx context.Context, id uuid.UUID) error

	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
}

type postgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) Create(ctx context.Context, user *model.User) (uuid.UUID, error) {
	query := `INSERT INTO users (full_name, email, password_hash, role, email_verification_token_hash, email_verification_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`

	var newID uuid.UUID
	err := r.db.QueryRowxContext(ctx, query,
		user.FullName, user.Email, user.PasswordHash, user.Role,
		user.EmailVerificationTokenHash, user.EmailVerificationExpiresAt,
	).Scan(&newID)
	if err != nil {
		return uuid.Nil, err
	}

	return newID, nil
}

func (r *postgresUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = lower($1)`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *postgresUserRepository) SetVerificationToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users
		SET email_verification_token_hash = $2, email_verification_expires_at = $3, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, tokenHash, expiresAt)
}

// ConsumeVerificationToken marks the matching user verified and clears the
// token fields in one statement. sql.ErrNoRows means no live token matched.
func (r *postgresUserRepository) ConsumeVerificationToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	query := `UPDATE users
		SET email_verified = TRUE, email_verification_token_hash = NULL,
			email_verification_expires_at = NULL, updated_at = now()
		WHERE email_verification_token_hash = $1 AND email_verification_expires_at > now()
		RETURNING id`

	var id uuid.UUID
	if err := r.db.QueryRowxContext(ctx, query, tokenHash).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// ClearExpiredVerificationToken removes a dead token so it is never left
// dangling. It reports whether the hash matched an expired token, which lets
// the service distinguish "expired" from "never existed".
func (r *postgresUserRepository) ClearExpiredVerificationToken(ctx context.Context, tokenHash string) (bool, error) {
	query := `UPDATE users
		SET email_verification_token_hash = NULL, email_verification_expires_at = NULL, updated_at = now()
		WHERE email_verification_token_hash = $1 AND email_verification_expires_at <= now()`

	res, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postgresUserRepository) SetResetToken(ctx context.Context, id uuid.UUID, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users
		SET password_reset_token_hash = $2, password_reset_expires_at = $3, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, tokenHash, expiresAt)
}

func (r *postgresUserRepository) ClearResetToken(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users
		SET password_reset_token_hash = NULL, password_reset_expires_at = NULL, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id)
}

// ConsumeResetToken swaps in the new password hash and clears the reset
// fields in the same statement, so the token is single-use even under
// concurrent presentation.
func (r *postgresUserRepository) ConsumeResetToken(ctx context.Context, tokenHash string, newPasswordHash string) (uuid.UUID, error) {
	query := `UPDATE users
		SET password_hash = $2, password_reset_token_hash = NULL,
			password_reset_expires_at = NULL, updated_at = now()
		WHERE password_reset_token_hash = $1 AND password_reset_expires_at > now()
		RETURNING id`

	var id uuid.UUID
	if err := r.db.QueryRowxContext(ctx, query, tokenHash, newPasswordHash).Scan(&id); err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (r *postgresUserRepository) ClearExpiredResetToken(ctx context.Context, tokenHash string) (bool, error) {
	query := `UPDATE users
		SET password_reset_token_hash = NULL, password_reset_expires_at = NULL, updated_at = now()
		WHERE password_reset_token_hash = $1 AND password_reset_expires_at <= now()`

	res, err := r.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *postgresUserRepository) RecordLogin(ctx context.Context, id uuid.UUID, streak int, at time.Time, refreshTokenHash string) error {
	query := `UPDATE users
		SET login_streak = $2, last_login_at = $3, refresh_token_hash = $4, updated_at = now()
		WHERE id = $1`
	return r.exec(ctx, query, id, streak, at, refreshTokenHash)
}

// RotateRefreshToken replaces the stored refresh token hash only when the
// presented one is still current. sql.ErrNoRows means the token was already
// rotated out (reuse or theft).
func (r *postgresUserRepository) RotateRefreshToken(ctx context.Context, id uuid.UUID, oldHash, newHash string) error {
	query := `UPDATE users
		SET refresh_token_hash = $3, updated_at = now()
		WHERE id = $1 AND refresh_token_hash = $2`

	res, err := r.db.ExecContext(ctx, query, id, oldHash, newHash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresUserRepository) ClearRefreshToken(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE users SET refresh_token_hash = NULL, updated_at = now() WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *postgresUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	query := `UPDATE users SET role = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, role)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *postgresUserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}
