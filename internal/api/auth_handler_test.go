package api_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MostTP/EduWave-Backend/internal/api"
	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/service"
)

// fakeAuthService treats "known@example.com" as registered and everything
// else as unknown, mirroring the enumeration-safe service behavior.
type fakeAuthService struct {
	service.AuthService
	forgotCalls []string
}

func (f *fakeAuthService) ForgotPassword(_ context.Context, email string) error {
	f.forgotCalls = append(f.forgotCalls, email)
	return nil // unknown emails are a silent no-op
}

func (f *fakeAuthService) Register(_ context.Context, input service.RegisterInput) (*model.User, error) {
	return &model.User{ID: uuid.New(), FullName: input.FullName, Email: input.Email, Role: model.RoleUser}, nil
}

func TestForgotPassword_ResponsesAreIndistinguishable(t *testing.T) {
	svc := &fakeAuthService{}
	handler := api.NewAuthHandler(svc)

	app := fiber.New()
	app.Post("/forgot", handler.ForgotPassword)

	post := func(email string) (int, string) {
		req := httptest.NewRequest("POST", "/forgot", strings.NewReader(`{"email":"`+email+`"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	knownStatus, knownBody := post("known@example.com")
	unknownStatus, unknownBody := post("ghost@example.com")

	require.Equal(t, knownStatus, unknownStatus)
	require.Equal(t, knownBody, unknownBody)
	require.Len(t, svc.forgotCalls, 2)
}

func TestRegister_RejectsInvalidInput(t *testing.T) {
	handler := api.NewAuthHandler(&fakeAuthService{})

	app := fiber.New()
	app.Post("/register", handler.Register)

	cases := []string{
		`{"fullName":"A","email":"a@b.com","password":"password123","passwordConfirm":"password123"}`, // name too short
		`{"fullName":"Ada","email":"not-an-email","password":"password123","passwordConfirm":"password123"}`,
		`{"fullName":"Ada","email":"a@b.com","password":"short","passwordConfirm":"short"}`,
		`{"fullName":"Ada","email":"a@b.com","password":"password123","passwordConfirm":"password456"}`,
	}

	for _, body := range cases {
		req := httptest.NewRequest("POST", "/register", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestRegister_IgnoresClientRole(t *testing.T) {
	handler := api.NewAuthHandler(&fakeAuthService{})

	app := fiber.New()
	app.Post("/register", handler.Register)

	// a role field in the payload has no field to land in and is dropped
	body := `{"fullName":"Ada","email":"a@b.com","password":"password123","passwordConfirm":"password123","role":"admin"}`
	req := httptest.NewRequest("POST", "/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	payload, _ := io.ReadAll(resp.Body)
	require.Contains(t, string(payload), `"role":"user"`)
}
