package services

import (
	"context"
	"sync"

	"github.com/BradenHooton/leadintake/internal/cache"
	"github.com/BradenHooton/leadintake/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*models.User, error)
	CreateFunc     func(ctx context.Context, user *models.User) (*models.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

// MockLeadRepository implements LeadRepository for testing
type MockLeadRepository struct {
	CreateFunc       func(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	ListFunc         func(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error)
	UpdateStatusFunc func(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, models.LeadStatus, error)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, lead)
	}
	return nil, models.ErrInternalServer
}

func (m *MockLeadRepository) List(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, params)
	}
	return &models.LeadPage{Items: []*models.Lead{}}, nil
}

func (m *MockLeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, models.LeadStatus, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, "", models.ErrNotFound
}

// MockResumeStorage implements ResumeStorage for testing
type MockResumeStorage struct {
	SaveFunc   func(ctx context.Context, upload models.ResumeUpload) (string, error)
	DeleteFunc func(ctx context.Context, path string) error
}

func (m *MockResumeStorage) Save(ctx context.Context, upload models.ResumeUpload) (string, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, upload)
	}
	return "uploads/resumes/resume-test.pdf", nil
}

func (m *MockResumeStorage) Delete(ctx context.Context, path string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, path)
	}
	return nil
}

// MockAttemptStore implements AttemptStore for testing
type MockAttemptStore struct {
	UpdateFunc func(ctx context.Context, key string, fn cache.UpdateFunc) error
}

func (m *MockAttemptStore) Update(ctx context.Context, key string, fn cache.UpdateFunc) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, fn)
	}
	fn(models.RateLimitEntry{}, false)
	return nil
}

// MockNotifier implements Notifier and records what it was sent
type MockNotifier struct {
	NotifierName string
	NotifyFunc   func(ctx context.Context, lead *models.Lead) error

	mu    sync.Mutex
	leads []*models.Lead
}

func (m *MockNotifier) Name() string {
	if m.NotifierName == "" {
		return "mock"
	}
	return m.NotifierName
}

func (m *MockNotifier) NotifyLeadSubmitted(ctx context.Context, lead *models.Lead) error {
	m.mu.Lock()
	m.leads = append(m.leads, lead)
	m.mu.Unlock()

	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, lead)
	}
	return nil
}

func (m *MockNotifier) Leads() []*models.Lead {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Lead(nil), m.leads...)
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendFunc func(ctx context.Context, to, subject, htmlBody, textBody string) error
}

func (m *MockEmailSender) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	if m.SendFunc != nil {
		return m.SendFunc(ctx, to, subject, htmlBody, textBody)
	}
	return nil
}
