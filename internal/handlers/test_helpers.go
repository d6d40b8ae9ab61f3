package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/leadintake/internal/auth"
	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/BradenHooton/leadintake/internal/services"
	pkghttp "github.com/BradenHooton/leadintake/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAdminContext adds admin claims to the request context
func WithAdminContext(req *http.Request, userID, email string) *http.Request {
	claims := &models.TokenClaims{
		UserID: userID,
		Email:  email,
		Role:   models.RoleAdmin,
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks the status and the client-facing message
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMessage string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedMessage, resp.Error, "Error message mismatch")
	assert.NotEmpty(t, resp.Code, "Error code should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc      func(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error)
	RegisterFunc   func(ctx context.Context, email, password, role string) (*services.UserResponse, error)
	GetProfileFunc func(ctx context.Context, userID string) (*services.UserResponse, error)
}

func (m *MockAuthService) Login(ctx context.Context, email, password, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, email, password, ipAddress)
}

func (m *MockAuthService) Register(ctx context.Context, email, password, role string) (*services.UserResponse, error) {
	if m.RegisterFunc == nil {
		return nil, models.ErrConflict
	}
	return m.RegisterFunc(ctx, email, password, role)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID string) (*services.UserResponse, error) {
	if m.GetProfileFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.GetProfileFunc(ctx, userID)
}

// MockLeadService implements LeadServiceInterface for testing
type MockLeadService struct {
	SubmitLeadFunc   func(ctx context.Context, input services.SubmitLeadInput) (*models.Lead, error)
	ListLeadsFunc    func(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error)
	UpdateStatusFunc func(ctx context.Context, adminID, id, status string) (*models.Lead, error)
}

func (m *MockLeadService) SubmitLead(ctx context.Context, input services.SubmitLeadInput) (*models.Lead, error) {
	if m.SubmitLeadFunc == nil {
		return nil, models.ErrInternalServer
	}
	return m.SubmitLeadFunc(ctx, input)
}

func (m *MockLeadService) ListLeads(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error) {
	if m.ListLeadsFunc == nil {
		return &models.LeadPage{}, nil
	}
	return m.ListLeadsFunc(ctx, params)
}

func (m *MockLeadService) UpdateStatus(ctx context.Context, adminID, id, status string) (*models.Lead, error) {
	if m.UpdateStatusFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UpdateStatusFunc(ctx, adminID, id, status)
}
