package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/MostTP/EduWave-Backend/internal/events"
	"github.com/MostTP/EduWave-Backend/internal/mailer"
	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/repository"
	"github.com/MostTP/EduWave-Backend/internal/token"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = time.Hour
	minPasswordLength    = 8

	// a login within this window of the previous one extends the streak
	streakWindow = 24 * time.Hour
)

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailNotVerified     = errors.New("email address is not verified")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrTokenInvalid         = errors.New("token is invalid")
	ErrTokenExpired         = errors.New("token has expired")
	ErrRefreshTokenMismatch = errors.New("refresh token does not match the active session")
	ErrAlreadyVerified      = errors.New("email is already verified")
	ErrPasswordMismatch     = errors.New("passwords do not match")
	ErrPasswordTooShort     = errors.New("password is too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidRole          = errors.New("unknown role")
	ErrEmailDispatch        = errors.New("failed to send email")
)

type RegisterInput struct {
	FullName        string
	Email           string
	Password        string
	PasswordConfirm string
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	VerifyEmail(ctx context.Context, plaintextToken string) error
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*model.User, TokenPair, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, plaintextToken, password, passwordConfirm string) error
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateRole(ctx context.Context, userID uuid.UUID, role model.Role) error
}

type authService struct {
	userRepo   repository.UserRepository
	tokens     *token.Manager
	mail       mailer.Mailer
	publisher  events.Publisher
	appBaseURL string

	// injected so streak arithmetic is testable
	now func() time.Time
}

func NewAuthService(userRepo repository.UserRepository, tokens *token.Manager, mail mailer.Mailer, publisher events.Publisher, appBaseURL string) AuthService {
	return &authService{
		userRepo:   userRepo,
		tokens:     tokens,
		mail:       mail,
		publisher:  publisher,
		appBaseURL: appBaseURL,
		now:        time.Now,
	}
}

// Register creates an unverified user and dispatches the verification email.
// Delivery is best-effort: a dispatch failure is logged and registration
// still succeeds, since the user can request a resend at any time.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Password != input.PasswordConfirm {
		return nil, ErrPasswordMismatch
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	plaintext, hash, err := token.NewOpaqueToken()
	if err != nil {
		return nil, err
	}
	expiry := s.now().Add(verificationTokenTTL)

	user := &model.User{
		FullName:                   input.FullName,
		Email:                      strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash:               string(passwordHash),
		Role:                       model.RoleUser, // self-registration never elevates
		EmailVerificationTokenHash: &hash,
		EmailVerificationExpiresAt: &expiry,
	}

	newID, err := s.userRepo.Create(ctx, user)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = newID

	if err := s.sendVerificationEmail(ctx, user, plaintext); err != nil {
		slog.WarnContext(ctx, "verification email dispatch failed", "user_id", user.ID, "error", err)
	}

	go s.publisher.PublishUserRegistered(user)

	return user, nil
}

// VerifyEmail consumes a verification token. The lookup and the clearing of
// the token fields are one conditional update, so a token can be spent once.
func (s *authService) VerifyEmail(ctx context.Context, plaintextToken string) error {
	hash := token.Hash(plaintextToken)

	_, err := s.userRepo.ConsumeVerificationToken(ctx, hash)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	expired, err := s.userRepo.ClearExpiredVerificationToken(ctx, hash)
	if err != nil {
		return err
	}
	if expired {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}

// ResendVerification rotates the verification token. An unknown email is a
// silent no-op so responses cannot be used to enumerate accounts.
func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	if user.EmailVerified {
		return ErrAlreadyVerified
	}

	plaintext, hash, err := token.NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, hash, s.now().Add(verificationTokenTTL)); err != nil {
		return err
	}

	if err := s.sendVerificationEmail(ctx, user, plaintext); err != nil {
		slog.WarnContext(ctx, "verification email dispatch failed", "user_id", user.ID, "error", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.User, TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		// an unknown account is indistinguishable from a wrong password
		if errors.Is(err, sql.ErrNoRows) {
			return nil, TokenPair{}, ErrInvalidCredentials
		}
		return nil, TokenPair{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, TokenPair{}, ErrEmailNotVerified
	}

	now := s.now()
	user.LoginStreak = nextStreak(user.LoginStreak, user.LastLoginAt, now)
	user.LastLoginAt = &now

	accessToken, refreshToken, err := s.tokens.NewPair(user)
	if err != nil {
		return nil, TokenPair{}, err
	}

	refreshHash := token.Hash(refreshToken)
	if err := s.userRepo.RecordLogin(ctx, user.ID, user.LoginStreak, now, refreshHash); err != nil {
		return nil, TokenPair{}, err
	}
	user.RefreshTokenHash = &refreshHash

	return user, TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ForgotPassword always reports success so responses cannot be used to probe
// for registered addresses. A failed email dispatch rolls the just-written
// reset token back before surfacing the failure.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	plaintext, hash, err := token.NewOpaqueToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, hash, s.now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.appBaseURL, plaintext)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>You requested a password reset. The link below is valid for 1 hour.</p><p><a href=%q>Reset your password</a></p>",
		user.FullName, resetURL,
	)
	if err := s.mail.Send(ctx, user.Email, "Reset your EduWave password", body); err != nil {
		if clearErr := s.userRepo.ClearResetToken(ctx, user.ID); clearErr != nil {
			slog.ErrorContext(ctx, "failed to roll back reset token", "user_id", user.ID, "error", clearErr)
		}
		return fmt.Errorf("%w: %v", ErrEmailDispatch, err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, plaintextToken, password, passwordConfirm string) error {
	// input checks come before any token lookup
	if password != passwordConfirm {
		return ErrPasswordMismatch
	}
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	hash := token.Hash(plaintextToken)
	_, err = s.userRepo.ConsumeResetToken(ctx, hash, string(passwordHash))
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	expired, err := s.userRepo.ClearExpiredResetToken(ctx, hash)
	if err != nil {
		return err
	}
	if expired {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}

// Refresh rotates the token pair. Only the most recently issued refresh
// token is accepted; anything older fails even if its signature is valid.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return TokenPair{}, ErrTokenExpired
		}
		return TokenPair{}, ErrTokenInvalid
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrTokenInvalid
		}
		return TokenPair{}, err
	}

	presentedHash := token.Hash(refreshToken)
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != presentedHash {
		return TokenPair{}, ErrRefreshTokenMismatch
	}

	accessToken, newRefreshToken, err := s.tokens.NewPair(user)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.userRepo.RotateRefreshToken(ctx, user.ID, presentedHash, token.Hash(newRefreshToken)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrRefreshTokenMismatch
		}
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Logout is idempotent: clearing an already-empty refresh token succeeds.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.userRepo.ClearRefreshToken(ctx, userID)
}

func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole is the only path that changes a role. The caller must already
// have been authorized as an admin by the middleware.
func (s *authService) UpdateRole(ctx context.Context, userID uuid.UUID, role model.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	if err := s.userRepo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *authService) sendVerificationEmail(ctx context.Context, user *model.User, plaintextToken string) error {
	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.appBaseURL, plaintextToken)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to EduWave! Confirm your email within 24 hours.</p><p><a href=%q>Verify your email</a></p>",
		user.FullName, verifyURL,
	)
	return s.mail.Send(ctx, user.Email, "Verify your EduWave email", body)
}

// nextStreak extends the streak when the previous login happened within the
// window, otherwise restarts it. This is a continuity heuristic measured in
// hours, not calendar days.
func nextStreak(current int, lastLogin *time.Time, now time.Time) int {
	if lastLogin == nil {
		return 1
	}
	if now.Sub(*lastLogin) <= streakWindow {
		return current + 1
	}
	return 1
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
