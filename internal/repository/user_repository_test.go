package repository_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/MostTP/EduWave-Backend/internal/model"
	repo "github.com/MostTP/EduWave-Backend/internal/repository"
)

func newMockRepo(t *testing.T) (repo.UserRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return repo.NewPostgresUserRepository(sqlxDB), mock, func() { db.Close() }
}

func TestPostgresUserRepository_Create(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	id := uuid.New()
	hash := "tokenhash"
	expiry := time.Now().Add(24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO users (full_name, email, password_hash, role, email_verification_token_hash, email_verification_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`)).
		WithArgs("Ada Lovelace", "ada@example.com", "pwhash", model.RoleUser, &hash, &expiry).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))

	nid, err := r.Create(context.Background(), &model.User{
		FullName:                   "Ada Lovelace",
		Email:                      "ada@example.com",
		PasswordHash:               "pwhash",
		Role:                       model.RoleUser,
		EmailVerificationTokenHash: &hash,
		EmailVerificationExpiresAt: &expiry,
	})
	require.NoError(t, err)
	require.Equal(t, id, nid)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_FindByEmail_NotFound(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = lower\(\$1\)`).
		WithArgs("missing@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := r.FindByEmail(context.Background(), "missing@example.com")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ConsumeVerificationToken(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	id := uuid.New()
	mock.ExpectQuery(`UPDATE users\s+SET email_verified = TRUE.+RETURNING id`).
		WithArgs("tokenhash").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(id))

	got, err := r.ConsumeVerificationToken(context.Background(), "tokenhash")
	require.NoError(t, err)
	require.Equal(t, id, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ConsumeVerificationToken_NoMatch(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectQuery(`UPDATE users\s+SET email_verified = TRUE.+RETURNING id`).
		WithArgs("tokenhash").
		WillReturnError(sql.ErrNoRows)

	_, err := r.ConsumeVerificationToken(context.Background(), "tokenhash")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_ClearExpiredVerificationToken(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	mock.ExpectExec(`UPDATE users\s+SET email_verification_token_hash = NULL.+expires_at <= now\(\)`).
		WithArgs("tokenhash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	expired, err := r.ClearExpiredVerificationToken(context.Background(), "tokenhash")
	require.NoError(t, err)
	require.True(t, expired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_RotateRefreshToken_Mismatch(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	id := uuid.New()
	mock.ExpectExec(`UPDATE users\s+SET refresh_token_hash = \$3.+WHERE id = \$1 AND refresh_token_hash = \$2`).
		WithArgs(id, "stale", "fresh").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.RotateRefreshToken(context.Background(), id, "stale", "fresh")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUserRepository_RotateRefreshToken(t *testing.T) {
	r, mock, closeDB := newMockRepo(t)
	defer closeDB()

	id := uuid.New()
	mock.ExpectExec(`UPDATE users\s+SET refresh_token_hash = \$3.+WHERE id = \$1 AND refresh_token_hash = \$2`).
		WithArgs(id, "current", "fresh").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.RotateRefreshToken(context.Background(), id, "current", "fresh")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
