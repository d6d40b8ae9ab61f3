package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/leadintake/internal/handlers"
	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/BradenHooton/leadintake/internal/services"
	pkgauth "github.com/BradenHooton/leadintake/pkg/auth"
	"github.com/stretchr/testify/assert"
)

func TestLogin_Success(t *testing.T) {
	var gotEmail string
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			gotEmail = email
			return &services.AuthResponse{
				Token: "token_123",
				User:  &services.UserResponse{ID: "u1", Email: email, Role: "admin"},
			}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{
		Email:    "  Admin@Example.com ",
		Password: "Str0ng!Passw0rd",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	var resp handlers.LoginResponse
	handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "token_123", resp.Token)
	assert.Equal(t, "admin", resp.User.Role)
	assert.Equal(t, "admin@example.com", gotEmail)
}

func TestLogin_MissingFields(t *testing.T) {
	handler := handlers.NewAuthHandler(&handlers.MockAuthService{})

	for _, body := range []handlers.LoginRequest{
		{Email: "admin@example.com"},
		{Password: "secret"},
		{},
	} {
		w := httptest.NewRecorder()
		handler.Login(w, handlers.NewTestRequest(t, http.MethodPost, "/api/auth/login", body))

		handlers.AssertErrorResponse(t, w, http.StatusBadRequest, "Email and password are required")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, models.ErrUnauthorized
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "Invalid email or password")
}

func TestLogin_InternalError(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		LoginFunc: func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
			return nil, models.ErrInternalServer
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, http.MethodPost, "/api/auth/login", handlers.LoginRequest{
		Email:    "admin@example.com",
		Password: "whatever",
	})

	w := httptest.NewRecorder()
	handler.Login(w, req)

	handlers.AssertErrorResponse(t, w, http.StatusInternalServerError, "Internal server error")
}

func TestRegister_Success(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		RegisterFunc: func(ctx context.Context, email, password, role string) (*services.UserResponse, error) {
			return &services.UserResponse{ID: "u2", Email: email, Role: "admin"}, nil
		},
	}

	handler := handlers.NewAuthHandler(mockAuth)
	req := handlers.NewTestRequest(t, http.MethodPost, "/api/auth/register", handlers.RegisterRequest{
		Email:    "New@Example.com",
		Password: "Str0ng!Passw0rd",
	})
	req = handlers.WithAdminContext(req, "u1", "admin@example.com")

	w := httptest.NewRecorder()
	handler.Register(w, req)

	var resp handlers.RegisterResponse
	handlers.AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "User created successfully", resp.Message)
	assert.Equal(t, "new@example.com", resp.User.Email)
}

func TestRegister_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    handlers.RegisterRequest
		err     error
		status  int
		message string
	}{
		{
			name:    "duplicate",
			body:    handlers.RegisterRequest{Email: "admin@example.com", Password: "Str0ng!Passw0rd"},
			err:     models.ErrConflict,
			status:  http.StatusConflict,
			message: "User already exists",
		},
		{
			name:    "weak password",
			body:    handlers.RegisterRequest{Email: "admin@example.com", Password: "short"},
			err:     &pkgauth.PasswordValidationError{Errors: []string{"too short"}},
			status:  http.StatusBadRequest,
			message: "Password does not meet complexity requirements",
		},
		{
			name:    "invalid email",
			body:    handlers.RegisterRequest{Email: "nope", Password: "Str0ng!Passw0rd"},
			status:  http.StatusBadRequest,
			message: "validation failed: email: must be a valid email address",
		},
		{
			name:    "unknown role",
			body:    handlers.RegisterRequest{Email: "a@example.com", Password: "Str0ng!Passw0rd", Role: "owner"},
			status:  http.StatusBadRequest,
			message: "validation failed: role: must be one of: admin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAuth := &handlers.MockAuthService{
				RegisterFunc: func(ctx context.Context, email, password, role string) (*services.UserResponse, error) {
					return nil, tt.err
				},
			}

			handler := handlers.NewAuthHandler(mockAuth)
			w := httptest.NewRecorder()
			handler.Register(w, handlers.NewTestRequest(t, http.MethodPost, "/api/auth/register", tt.body))

			handlers.AssertErrorResponse(t, w, tt.status, tt.message)
		})
	}
}

func TestProfile(t *testing.T) {
	mockAuth := &handlers.MockAuthService{
		GetProfileFunc: func(ctx context.Context, userID string) (*services.UserResponse, error) {
			return &services.UserResponse{ID: userID, Email: "admin@example.com", Role: "admin"}, nil
		},
	}
	handler := handlers.NewAuthHandler(mockAuth)

	t.Run("authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
		req = handlers.WithAdminContext(req, "u1", "admin@example.com")

		w := httptest.NewRecorder()
		handler.Profile(w, req)

		var resp handlers.ProfileResponse
		handlers.AssertJSONResponse(t, w, http.StatusOK, &resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "u1", resp.User.ID)
	})

	t.Run("no claims", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.Profile(w, httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))

		handlers.AssertErrorResponse(t, w, http.StatusUnauthorized, "Authentication required")
	})
}
