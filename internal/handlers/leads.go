package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/BradenHooton/leadintake/internal/auth"
	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/BradenHooton/leadintake/internal/services"
	"github.com/BradenHooton/leadintake/internal/storage"
	pkghttp "github.com/BradenHooton/leadintake/pkg/http"
	"github.com/BradenHooton/leadintake/pkg/sanitize"
	"github.com/go-chi/chi/v5"
)

// LeadServiceInterface defines the interface for lead business logic
type LeadServiceInterface interface {
	SubmitLead(ctx context.Context, input services.SubmitLeadInput) (*models.Lead, error)
	ListLeads(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error)
	UpdateStatus(ctx context.Context, adminID, id, status string) (*models.Lead, error)
}

const (
	msgRateLimited       = "Too many submission attempts from this email. Please try again later."
	msgSubmitFailed      = "Internal server error. Please try again later."
	msgInvalidFileType   = "Invalid file type. Only PDF, DOC, DOCX, and TXT files are allowed."
	msgFileTooLarge      = "Resume file is too large (max 5MB)"
	msgInvalidLeadStatus = "Invalid status. Must be PENDING or REACHED_OUT"

	// room for the text fields on top of the resume itself
	formOverheadBytes = 1 << 20
)

// LeadHandler handles the public form and the admin lead endpoints
type LeadHandler struct {
	service        LeadServiceInterface
	maxResumeBytes int64
}

// NewLeadHandler creates a new LeadHandler
func NewLeadHandler(service LeadServiceInterface, maxResumeBytes int64) *LeadHandler {
	return &LeadHandler{
		service:        service,
		maxResumeBytes: maxResumeBytes,
	}
}

// Request DTOs

// SubmitLeadRequest is the public form after decoding either JSON or
// multipart. Visa flags accept true or "true".
type SubmitLeadRequest struct {
	FirstName    string `json:"firstName" validate:"required,notblank,max=50"`
	LastName     string `json:"lastName" validate:"required,notblank,max=50"`
	Email        string `json:"email" validate:"required,leademail"`
	LinkedIn     string `json:"linkedin" validate:"required,url"`
	Country      string `json:"country" validate:"required,notblank"`
	OpenInput    string `json:"openInput" validate:"max=1000"`
	O1Visa       bool   `json:"o1Visa"`
	EB1AVisa     bool   `json:"eb1aVisa"`
	EB2NIWVisa   bool   `json:"eb2NiwVisa"`
	DontKnowVisa bool   `json:"dontKnowVisa"`
}

func (r *SubmitLeadRequest) Visa() models.VisaFlags {
	return models.VisaFlags{
		O1:       r.O1Visa,
		EB1A:     r.EB1AVisa,
		EB2NIW:   r.EB2NIWVisa,
		DontKnow: r.DontKnowVisa,
	}
}

// UpdateLeadStatusRequest represents the request body for a status change
type UpdateLeadStatusRequest struct {
	Status string `json:"status"`
}

// Response DTOs

type SubmitLeadResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	SubmissionID string `json:"submissionId"`
	Timestamp    string `json:"timestamp"`
}

// LeadData is the flattened form view of a stored lead
type LeadData struct {
	FirstName      string  `json:"firstName"`
	LastName       string  `json:"lastName"`
	Email          string  `json:"email"`
	LinkedIn       string  `json:"linkedin"`
	Country        string  `json:"country"`
	O1Visa         bool    `json:"o1Visa"`
	EB1AVisa       bool    `json:"eb1aVisa"`
	EB2NIWVisa     bool    `json:"eb2NiwVisa"`
	DontKnowVisa   bool    `json:"dontKnowVisa"`
	OpenInput      *string `json:"openInput"`
	ResumeFileName *string `json:"resumeFileName,omitempty"`
}

type LeadSubmission struct {
	ID        string   `json:"id"`
	Timestamp string   `json:"timestamp"`
	Data      LeadData `json:"data"`
	Status    string   `json:"status"`
}

type ListLeadsResponse struct {
	Submissions   []LeadSubmission `json:"submissions"`
	Total         int              `json:"total"`
	Limit         int              `json:"limit"`
	Offset        int              `json:"offset"`
	SortField     string           `json:"sortField"`
	SortDirection string           `json:"sortDirection"`
	Search        string           `json:"search"`
	Status        string           `json:"status"`
}

type LeadStatusSummary struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"`
}

type UpdateLeadStatusResponse struct {
	Success bool              `json:"success"`
	Lead    LeadStatusSummary `json:"lead"`
}

// SubmitLead handles the public lead form
// @Summary Submit a lead
// @Accept json,mpfd
// @Produce json
// @Success 200 {object} SubmitLeadResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 429 {object} pkghttp.ErrorResponse
// @Failure 500 {object} pkghttp.ErrorResponse
// @Router /leads/submit [post]
func (h *LeadHandler) SubmitLead(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxResumeBytes+formOverheadBytes)

	req, resume, err := h.decodeSubmission(r)
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, models.ErrFileTooLarge):
			pkghttp.WriteBadRequest(w, msgFileTooLarge)
		case errors.Is(err, models.ErrInvalidFileType):
			pkghttp.WriteBadRequest(w, msgInvalidFileType)
		default:
			pkghttp.WriteBadRequest(w, "Invalid request body")
		}
		return
	}

	if msg := validateLeadSubmission(req); msg != "" {
		pkghttp.WriteBadRequest(w, msg)
		return
	}

	lead, err := h.service.SubmitLead(r.Context(), services.SubmitLeadInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		LinkedIn:  req.LinkedIn,
		Country:   req.Country,
		OpenInput: req.OpenInput,
		Visa:      req.Visa(),
		Resume:    resume,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimited):
			pkghttp.WriteTooManyRequests(w, msgRateLimited)
		case errors.Is(err, models.ErrVisaRequired):
			pkghttp.WriteBadRequest(w, "Please select at least one visa category")
		case errors.Is(err, models.ErrInvalidFileType):
			pkghttp.WriteBadRequest(w, msgInvalidFileType)
		case errors.Is(err, models.ErrFileTooLarge):
			pkghttp.WriteBadRequest(w, msgFileTooLarge)
		default:
			pkghttp.WriteInternalError(w, msgSubmitFailed)
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, SubmitLeadResponse{
		Success:      true,
		Message:      "Lead submitted successfully",
		SubmissionID: lead.ID,
		Timestamp:    isoTime(lead.CreatedAt),
	})
}

// decodeSubmission reads either a JSON or a multipart body into a request
// and the optional resume.
func (h *LeadHandler) decodeSubmission(r *http.Request) (*SubmitLeadRequest, *models.ResumeUpload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	fields := make(map[string]any)
	var resume *models.ResumeUpload

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxResumeBytes + formOverheadBytes); err != nil {
			return nil, nil, err
		}
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				fields[key] = values[0]
			}
		}

		var err error
		resume, err = h.readResume(r)
		if err != nil {
			return nil, nil, err
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			return nil, nil, err
		}
	}

	req := &SubmitLeadRequest{
		O1Visa:       formBool(fields["o1Visa"]),
		EB1AVisa:     formBool(fields["eb1aVisa"]),
		EB2NIWVisa:   formBool(fields["eb2NiwVisa"]),
		DontKnowVisa: formBool(fields["dontKnowVisa"]),
	}

	targets := []struct {
		key string
		dst *string
	}{
		{"firstName", &req.FirstName},
		{"lastName", &req.LastName},
		{"email", &req.Email},
		{"linkedin", &req.LinkedIn},
		{"country", &req.Country},
		{"openInput", &req.OpenInput},
	}
	for _, t := range targets {
		s, err := formString(fields, t.key)
		if err != nil {
			return nil, nil, err
		}
		*t.dst = s
	}

	return req, resume, nil
}

// readResume pulls the optional "resume" part and checks its size and type
// before anything else happens to the submission.
func (h *LeadHandler) readResume(r *http.Request) (*models.ResumeUpload, error) {
	file, header, err := r.FormFile("resume")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header.Size > h.maxResumeBytes {
		return nil, models.ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxResumeBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > h.maxResumeBytes {
		return nil, models.ErrFileTooLarge
	}

	contentType, _, err := storage.DetectResumeType(data)
	if err != nil {
		return nil, err
	}

	return &models.ResumeUpload{
		FileName:    header.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// formString returns the string at key exactly as submitted. Absent and
// null values read as empty; anything else that isn't a string is rejected.
// Sanitizing happens in the service, after the rate-limit key is taken.
func formString(fields map[string]any, key string) (string, error) {
	v, ok := fields[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: %w: expected string, got %T", key, sanitize.ErrInvalidInput, v)
	}
	return s, nil
}

// formBool accepts a JSON true or the string "true" from a form field
func formBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	}
	return false
}

// ListLeads handles the admin lead listing
// @Summary List leads
// @Param limit query int false "Page size (default 10, max 100)"
// @Param offset query int false "Rows to skip"
// @Param search query string false "Matches first name, last name, email or country"
// @Param status query string false "PENDING, REACHED_OUT or all"
// @Param sortField query string false "createdAt, name, firstName, lastName, email, country, status"
// @Param sortDirection query string false "asc or desc"
// @Produce json
// @Success 200 {object} ListLeadsResponse
// @Router /leads [get]
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := parseNonNegative(q.Get("limit"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "limit must be a non-negative integer")
		return
	}
	offset, err := parseNonNegative(q.Get("offset"))
	if err != nil {
		pkghttp.WriteBadRequest(w, "offset must be a non-negative integer")
		return
	}

	params := models.LeadListParams{
		Limit:         limit,
		Offset:        offset,
		Search:        strings.TrimSpace(q.Get("search")),
		SortField:     models.LeadSortField(q.Get("sortField")),
		SortDirection: models.SortDirection(q.Get("sortDirection")),
	}

	statusEcho := "all"
	if s := q.Get("status"); s != "" && s != "all" {
		status, err := models.ParseLeadStatus(s)
		if err != nil {
			pkghttp.WriteBadRequest(w, msgInvalidLeadStatus)
			return
		}
		params.Status = status
		statusEcho = string(status)
	}

	params = params.Normalized()

	page, err := h.service.ListLeads(r.Context(), params)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	submissions := make([]LeadSubmission, 0, len(page.Items))
	for _, lead := range page.Items {
		submissions = append(submissions, leadToSubmission(lead))
	}

	pkghttp.WriteJSON(w, http.StatusOK, ListLeadsResponse{
		Submissions:   submissions,
		Total:         page.Total,
		Limit:         params.Limit,
		Offset:        params.Offset,
		SortField:     string(params.SortField),
		SortDirection: string(params.SortDirection),
		Search:        params.Search,
		Status:        statusEcho,
	})
}

// UpdateLeadStatus handles an admin status change
// @Summary Update lead status
// @Accept json
// @Param id path string true "Lead ID"
// @Param request body UpdateLeadStatusRequest true "New status"
// @Produce json
// @Success 200 {object} UpdateLeadStatusResponse
// @Failure 400 {object} pkghttp.ErrorResponse
// @Failure 404 {object} pkghttp.ErrorResponse
// @Router /leads/{id}/status [patch]
func (h *LeadHandler) UpdateLeadStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateLeadStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	adminID := ""
	if claims := auth.GetUserFromContext(r); claims != nil {
		adminID = claims.UserID
	}

	lead, err := h.service.UpdateStatus(r.Context(), adminID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidStatus):
			pkghttp.WriteBadRequest(w, msgInvalidLeadStatus)
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Lead not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, UpdateLeadStatusResponse{
		Success: true,
		Lead: LeadStatusSummary{
			ID:        lead.ID,
			Status:    string(lead.Status),
			UpdatedAt: isoTime(lead.UpdatedAt),
		},
	})
}

func leadToSubmission(lead *models.Lead) LeadSubmission {
	flags := models.FlagsForVisaType(lead.VisaType)
	return LeadSubmission{
		ID:        lead.ID,
		Timestamp: isoTime(lead.CreatedAt),
		Data: LeadData{
			FirstName:      lead.FirstName,
			LastName:       lead.LastName,
			Email:          lead.Email,
			LinkedIn:       lead.LinkedinURL,
			Country:        lead.Country,
			O1Visa:         flags.O1,
			EB1AVisa:       flags.EB1A,
			EB2NIWVisa:     flags.EB2NIW,
			DontKnowVisa:   flags.DontKnow,
			OpenInput:      lead.AdditionalInfo,
			ResumeFileName: lead.ResumeFileName,
		},
		Status: string(lead.Status),
	}
}

func parseNonNegative(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid non-negative integer %q", raw)
	}
	return n, nil
}

// isoTime formats t like JavaScript's Date.toISOString
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
