package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/BradenHooton/leadintake/pkg/logger"
	"github.com/BradenHooton/leadintake/pkg/sanitize"
)

// LeadRepository defines the lead persistence operations the service needs
type LeadRepository interface {
	Create(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	List(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error)
	// UpdateStatus returns the updated lead and the status it had before.
	UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, models.LeadStatus, error)
}

// ResumeStorage stores uploaded resumes and returns the stored path
type ResumeStorage interface {
	Save(ctx context.Context, upload models.ResumeUpload) (string, error)
	Delete(ctx context.Context, path string) error
}

// SubmitLeadInput is a validated public form submission. Fields are raw:
// the service sanitizes them.
type SubmitLeadInput struct {
	FirstName string
	LastName  string
	Email     string
	LinkedIn  string
	Country   string
	OpenInput string
	Visa      models.VisaFlags
	Resume    *models.ResumeUpload
}

type LeadService struct {
	repo     LeadRepository
	limiter  *SubmissionLimiter
	resumes  ResumeStorage
	notifier *NotificationDispatcher
	audit    *logger.AuditLogger
	logger   *slog.Logger
}

func NewLeadService(
	repo LeadRepository,
	limiter *SubmissionLimiter,
	resumes ResumeStorage,
	notifier *NotificationDispatcher,
	logger *slog.Logger,
	auditLogger *logger.AuditLogger,
) *LeadService {
	return &LeadService{
		repo:     repo,
		limiter:  limiter,
		resumes:  resumes,
		notifier: notifier,
		audit:    auditLogger,
		logger:   logger,
	}
}

// SubmitLead runs the public submission pipeline: rate limit, sanitize,
// derive the visa type, store the resume, persist, then notify.
func (s *LeadService) SubmitLead(ctx context.Context, input SubmitLeadInput) (*models.Lead, error) {
	// keyed on the address exactly as submitted
	if s.limiter.IsRateLimited(ctx, input.Email) {
		return nil, models.ErrRateLimited
	}

	lead := &models.Lead{
		FirstName:   sanitize.String(input.FirstName),
		LastName:    sanitize.String(input.LastName),
		Email:       strings.ToLower(sanitize.String(input.Email)),
		LinkedinURL: sanitize.String(input.LinkedIn),
		Country:     sanitize.String(input.Country),
		Status:      models.LeadStatusPending,
	}
	if info := sanitize.String(input.OpenInput); info != "" {
		lead.AdditionalInfo = &info
	}

	visaType, ok := input.Visa.VisaType()
	if !ok {
		return nil, models.ErrVisaRequired
	}
	lead.VisaType = visaType

	if input.Resume != nil && s.resumes != nil {
		path, err := s.resumes.Save(ctx, *input.Resume)
		if err != nil {
			if errors.Is(err, models.ErrInvalidFileType) || errors.Is(err, models.ErrFileTooLarge) {
				return nil, err
			}
			s.logger.Error("failed to store resume", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		fileName := sanitize.String(input.Resume.FileName)
		lead.ResumePath = &path
		lead.ResumeFileName = &fileName
	}

	created, err := s.repo.Create(ctx, lead)
	if err != nil {
		s.logger.Error("failed to create lead",
			slog.String("email", logger.SanitizedEmail(lead.Email)),
			slog.Any("error", err))
		s.discardResume(ctx, lead.ResumePath)
		return nil, models.ErrInternalServer
	}

	leadsSubmitted.WithLabelValues(string(created.VisaType)).Inc()
	s.logger.Info("lead submitted",
		slog.String("lead_id", created.ID),
		slog.String("visa_type", string(created.VisaType)),
		slog.Bool("has_resume", created.ResumePath != nil))

	s.notifier.Dispatch(created)

	return created, nil
}

// discardResume removes a stored resume whose lead never made it to the
// database so no orphan file is left behind.
func (s *LeadService) discardResume(ctx context.Context, path *string) {
	if path == nil || s.resumes == nil {
		return
	}
	if err := s.resumes.Delete(ctx, *path); err != nil {
		s.logger.Warn("failed to remove orphaned resume",
			slog.String("path", *path),
			slog.Any("error", err))
	}
}

// ListLeads returns one page of leads for the admin console
func (s *LeadService) ListLeads(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error) {
	params = params.Normalized()

	page, err := s.repo.List(ctx, params)
	if err != nil {
		s.logger.Error("failed to list leads", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return page, nil
}

// UpdateStatus moves a lead between PENDING and REACHED_OUT
func (s *LeadService) UpdateStatus(ctx context.Context, adminID, id, status string) (*models.Lead, error) {
	newStatus, err := models.ParseLeadStatus(status)
	if err != nil {
		return nil, err
	}

	updated, previous, err := s.repo.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update lead status",
			slog.String("lead_id", id),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	leadStatusUpdates.WithLabelValues(string(updated.Status)).Inc()
	if s.audit != nil {
		s.audit.LogLeadStatusChange(adminID, updated.ID, string(previous), string(updated.Status))
	}

	return updated, nil
}
