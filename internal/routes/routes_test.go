package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/leadintake/internal/auth"
	"github.com/BradenHooton/leadintake/internal/cache"
	"github.com/BradenHooton/leadintake/internal/handlers"
	"github.com/BradenHooton/leadintake/internal/middleware"
	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/BradenHooton/leadintake/internal/routes"
	"github.com/BradenHooton/leadintake/internal/services"
	pkgauth "github.com/BradenHooton/leadintake/pkg/auth"
	pkglogger "github.com/BradenHooton/leadintake/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID       = "0b8e4a52-8a35-4c8e-9a7e-2f1f5a0a9c11"
	adminEmail    = "admin@example.com"
	adminPassword = "Adm1n!Console#2026"
)

// memoryLeadRepo is a small in-memory stand-in for the Postgres repository
type memoryLeadRepo struct {
	mu    sync.Mutex
	leads []*models.Lead
}

func (m *memoryLeadRepo) Create(_ context.Context, lead *models.Lead) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *lead
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now().UTC().Add(time.Duration(len(m.leads)) * time.Millisecond)
	stored.UpdatedAt = stored.CreatedAt
	if stored.Status == "" {
		stored.Status = models.LeadStatusPending
	}
	m.leads = append(m.leads, &stored)

	out := stored
	return &out, nil
}

func (m *memoryLeadRepo) GetByID(_ context.Context, id string) (*models.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.leads {
		if l.ID == id {
			out := *l
			return &out, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memoryLeadRepo) List(_ context.Context, params models.LeadListParams) (*models.LeadPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*models.Lead
	for _, l := range m.leads {
		if params.Status != "" && l.Status != params.Status {
			continue
		}
		out := *l
		matched = append(matched, &out)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	page := &models.LeadPage{Total: len(matched), Items: []*models.Lead{}}
	if params.Offset < len(matched) {
		end := min(params.Offset+params.Limit, len(matched))
		page.Items = matched[params.Offset:end]
	}
	return page, nil
}

func (m *memoryLeadRepo) UpdateStatus(_ context.Context, id string, status models.LeadStatus) (*models.Lead, models.LeadStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.leads {
		if l.ID == id {
			previous := l.Status
			l.Status = status
			l.UpdatedAt = time.Now().UTC()
			out := *l
			return &out, previous, nil
		}
	}
	return nil, "", models.ErrNotFound
}

func (m *memoryLeadRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.leads)
}

type fakeHealth struct{ err error }

func (f fakeHealth) HealthCheck(context.Context) error { return f.err }

type testApp struct {
	router http.Handler
	leads  *memoryLeadRepo
}

func newTestApp(t *testing.T, health error) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	audit := pkglogger.NewAuditLogger(logger)

	hash, err := pkgauth.HashPassword(adminPassword)
	require.NoError(t, err)
	admin := &models.User{ID: adminID, Email: adminEmail, PasswordHash: hash, Role: models.RoleAdmin}

	users := &services.MockUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.User, error) {
			if id == adminID {
				return admin, nil
			}
			return nil, models.ErrNotFound
		},
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == adminEmail {
				return admin, nil
			}
			return nil, models.ErrNotFound
		},
	}

	leads := &memoryLeadRepo{}
	limiter := services.NewSubmissionLimiter(cache.NewMemoryAttemptStore(),
		services.SubmissionLimitConfig{MaxAttempts: 5, Window: time.Hour}, logger)
	leadService := services.NewLeadService(leads, limiter, &services.MockResumeStorage{}, nil, logger, audit)

	tm := auth.NewTokenManager("routes-test-secret-0123456789abcdef", time.Hour)
	authService := services.NewAuthService(users, tm, logger, audit)

	router := chi.NewRouter()
	routes.RegisterRoutes(router, routes.Dependencies{
		LeadHandler:     handlers.NewLeadHandler(leadService, 5<<20),
		AuthHandler:     handlers.NewAuthHandler(authService),
		TokenManager:    tm,
		UserRepo:        users,
		Health:          fakeHealth{err: health},
		SubmitRateLimit: middleware.RateLimitConfig{RequestsPerMinute: 100},
		LoginRateLimit:  middleware.RateLimitConfig{RequestsPerMinute: 100},
	})

	return &testApp{router: router, leads: leads}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()

	w := a.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    adminEmail,
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp handlers.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func submission(email string) map[string]any {
	return map[string]any{
		"firstName":  "Jane",
		"lastName":   "Doe",
		"email":      email,
		"linkedin":   "https://linkedin.com/in/jane",
		"country":    "Canada",
		"eb1aVisa":   true,
		"eb2NiwVisa": "true",
	}
}

func TestHealth(t *testing.T) {
	w := newTestApp(t, nil).do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"up"}`, w.Body.String())

	w = newTestApp(t, errors.New("down")).do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	w := newTestApp(t, nil).do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmit_SixthFromSameEmailIsRejected(t *testing.T) {
	app := newTestApp(t, nil)

	for i := 1; i <= 5; i++ {
		w := app.do(t, http.MethodPost, "/api/leads/submit", "", submission("repeat@example.com"))
		require.Equal(t, http.StatusOK, w.Code, "submission %d: %s", i, w.Body.String())
	}

	w := app.do(t, http.MethodPost, "/api/leads/submit", "", submission("repeat@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Too many submission attempts from this email. Please try again later.")
	assert.Equal(t, 5, app.leads.count(), "rejected submission must not be stored")

	// another submitter is unaffected
	w = app.do(t, http.MethodPost, "/api/leads/submit", "", submission("other@example.com"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmit_StoresHighestPriorityVisa(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodPost, "/api/leads/submit", "", submission("visa@example.com"))
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.SubmitLeadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	lead, err := app.leads.GetByID(context.Background(), resp.SubmissionID)
	require.NoError(t, err)
	assert.Equal(t, models.VisaTypeEB1A, lead.VisaType)
	assert.Equal(t, models.LeadStatusPending, lead.Status)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	app := newTestApp(t, nil)

	tests := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/leads"},
		{http.MethodPatch, "/api/leads/abc/status"},
		{http.MethodPost, "/api/auth/register"},
		{http.MethodGet, "/api/auth/profile"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := app.do(t, tt.method, tt.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = app.do(t, tt.method, tt.path, "not-a-jwt", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestListLeads_EmptyStore(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.login(t)

	w := app.do(t, http.MethodGet, "/api/leads", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	assert.JSONEq(t, `[]`, string(raw["submissions"]))
	assert.JSONEq(t, `0`, string(raw["total"]))
	assert.JSONEq(t, `10`, string(raw["limit"]))
	assert.JSONEq(t, `0`, string(raw["offset"]))
}

func TestLeadLifecycle(t *testing.T) {
	app := newTestApp(t, nil)

	for i := 0; i < 3; i++ {
		w := app.do(t, http.MethodPost, "/api/leads/submit", "", submission(fmt.Sprintf("lead%d@example.com", i)))
		require.Equal(t, http.StatusOK, w.Code)
	}

	token := app.login(t)

	w := app.do(t, http.MethodGet, "/api/leads?limit=2", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page handlers.ListLeadsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Submissions, 2)
	assert.Equal(t, "lead2@example.com", page.Submissions[0].Data.Email, "newest first")

	target := page.Submissions[1].ID
	w = app.do(t, http.MethodPatch, "/api/leads/"+target+"/status", token, map[string]string{"status": "REACHED_OUT"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated handlers.UpdateLeadStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "REACHED_OUT", updated.Lead.Status)

	w = app.do(t, http.MethodGet, "/api/leads?status=REACHED_OUT", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Submissions, 1)
	assert.Equal(t, target, page.Submissions[0].ID)

	w = app.do(t, http.MethodPatch, "/api/leads/"+target+"/status", token, map[string]string{"status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = app.do(t, http.MethodPatch, "/api/leads/"+uuid.NewString()+"/status", token, map[string]string{"status": "PENDING"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Lead not found")
}

func TestLogin_WrongPassword(t *testing.T) {
	app := newTestApp(t, nil)

	w := app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    adminEmail,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid email or password")
}

func TestProfile(t *testing.T) {
	app := newTestApp(t, nil)
	token := app.login(t)

	w := app.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp handlers.ProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, adminEmail, resp.User.Email)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
}
