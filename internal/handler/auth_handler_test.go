package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/service"
	"github.com/juanpmar/finko/finko-backend/internal/testutil"
)

type identityStub struct {
	userID uuid.UUID
}

func (s *identityStub) SignUp(ctx context.Context, email, password string) (uuid.UUID, error) {
	return s.userID, nil
}

func newAuthHandler(userID uuid.UUID) *AuthHandler {
	profileRepo := testutil.NewMockProfileRepository()
	svc := service.NewAuthService(&identityStub{userID: userID}, profileRepo)
	return NewAuthHandler(svc)
}

func signUpRequest(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/sign-up", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSignUpHandler_Success(t *testing.T) {
	e := echo.New()
	userID := uuid.New()
	handler := newAuthHandler(userID)

	c, rec := signUpRequest(e, `{"email": "user@example.com", "password": "correct-horse"}`)

	if err := handler.SignUp(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response ProfileResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.UserID != userID {
		t.Error("Expected the identity service's user id")
	}
	if response.Timezone != "UTC" {
		t.Errorf("Expected default timezone UTC, got %s", response.Timezone)
	}
	if response.CurrentLevel != 1 {
		t.Errorf("Expected level 1, got %d", response.CurrentLevel)
	}
}

func TestSignUpHandler_InvalidCredentials(t *testing.T) {
	e := echo.New()
	handler := newAuthHandler(uuid.New())

	c, rec := signUpRequest(e, `{"email": "not-an-email", "password": "short"}`)

	if err := handler.SignUp(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if len(problem.Errors) != 2 {
		t.Fatalf("Expected 2 field errors, got %d", len(problem.Errors))
	}
	fields := map[string]bool{}
	for _, fe := range problem.Errors {
		fields[fe.Field] = true
	}
	if !fields["email"] || !fields["password"] {
		t.Errorf("Expected email and password errors, got %+v", problem.Errors)
	}
}
