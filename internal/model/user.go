package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of authorization levels a user can hold.
type Role string

const (
	RoleUser       Role = "user"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User is the credential record. Token hashes are stored alongside their
// expiries; the plaintext tokens are never persisted. The verification and
// reset columns are both-null or both-set (enforced by a CHECK constraint).
type User struct {
	ID                         uuid.UUID  `db:"id"`
	FullName                   string     `db:"full_name"`
	Email                      string     `db:"email"`
	PasswordHash               string     `db:"password_hash"`
	Role                       Role       `db:"role"`
	EmailVerified              bool       `db:"email_verified"`
	EmailVerificationTokenHash *string    `db:"email_verification_token_hash"`
	EmailVerificationExpiresAt *time.Time `db:"email_verification_expires_at"`
	PasswordResetTokenHash     *string    `db:"password_reset_token_hash"`
	PasswordResetExpiresAt     *time.Time `db:"password_reset_expires_at"`
	RefreshTokenHash           *string    `db:"refresh_token_hash"`
	LoginStreak                int        `db:"login_streak"`
	LastLoginAt                *time.Time `db:"last_login_at"`
	CreatedAt                  time.Time  `db:"created_at"`
	UpdatedAt                  time.Time  `db:"updated_at"`
}
