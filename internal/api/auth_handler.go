package api

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/service"
)

type AuthHandler struct {
	authService service.AuthService
	validate    *validator.Validate
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// UserResponse is the outward shape of a user. The password hash and token
// hashes never leave the service boundary.
type UserResponse struct {
	ID            uuid.UUID  `json:"id"`
	FullName      string     `json:"fullName"`
	Email         string     `json:"email"`
	Role          model.Role `json:"role"`
	EmailVerified bool       `json:"emailVerified"`
	LoginStreak   int        `json:"loginStreak"`
	LastLoginAt   *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		LoginStreak:   u.LoginStreak,
		LastLoginAt:   u.LastLoginAt,
		CreatedAt:     u.CreatedAt,
	}
}

type RegisterRequest struct {
	FullName        string `json:"fullName" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// Register ignores any role supplied by the client; new accounts always
// start as plain users.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	user, err := h.authService.Register(c.Context(), service.RegisterInput{
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		return failFromService(c, err)
	}

	return respond(c, fiber.StatusCreated,
		"Registration successful, please check your email to verify your account",
		fiber.Map{"user": toUserResponse(user)})
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	user, pair, err := h.authService.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return failFromService(c, err)
	}

	return respond(c, fiber.StatusOK, "Login successful", fiber.Map{
		"user":         toUserResponse(user),
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	if err := h.authService.VerifyEmail(c.Context(), req.Token); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Email verified successfully", nil)
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *AuthHandler) ResendVerification(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	if err := h.authService.ResendVerification(c.Context(), req.Email); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "If the account exists, a verification email has been sent", nil)
}

// ForgotPassword responds identically whether or not the email is
// registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req EmailRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	if err := h.authService.ForgotPassword(c.Context(), req.Email); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "If the account exists, a password reset email has been sent", nil)
}

type ResetPasswordRequest struct {
	Token           string `json:"token" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required"`
}

func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	if err := h.authService.ResetPassword(c.Context(), req.Token, req.Password, req.PasswordConfirm); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Password has been reset, you can now log in", nil)
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Cannot parse JSON body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "Invalid input: "+err.Error())
	}

	pair, err := h.authService.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Tokens refreshed", fiber.Map{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return fail(c, fiber.StatusUnauthorized, "Authentication required")
	}

	if err := h.authService.Logout(c.Context(), user.ID); err != nil {
		return failFromService(c, err)
	}
	return respond(c, fiber.StatusOK, "Logged out successfully", nil)
}
