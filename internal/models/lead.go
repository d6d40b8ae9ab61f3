package models

import (
	"strings"
	"time"
)

// VisaType is the closed set of visa categories a lead can be filed under.
type VisaType string

const (
	VisaTypeO1       VisaType = "O1"
	VisaTypeEB1A     VisaType = "EB1A"
	VisaTypeEB2NIW   VisaType = "EB2_NIW"
	VisaTypeDontKnow VisaType = "DONT_KNOW"
)

// LeadStatus tracks whether someone has followed up on a lead.
type LeadStatus string

const (
	LeadStatusPending    LeadStatus = "PENDING"
	LeadStatusReachedOut LeadStatus = "REACHED_OUT"
)

// ParseLeadStatus returns the status for s, or ErrInvalidStatus.
func ParseLeadStatus(s string) (LeadStatus, error) {
	switch LeadStatus(s) {
	case LeadStatusPending, LeadStatusReachedOut:
		return LeadStatus(s), nil
	}
	return "", ErrInvalidStatus
}

type Lead struct {
	ID             string
	FirstName      string
	LastName       string
	Email          string
	LinkedinURL    string
	Country        string
	AdditionalInfo *string
	VisaType       VisaType
	Status         LeadStatus
	ResumePath     *string
	ResumeFileName *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VisaFlags are the checkbox values submitted by the public form.
type VisaFlags struct {
	O1       bool
	EB1A     bool
	EB2NIW   bool
	DontKnow bool
}

// Any reports whether at least one flag is set.
func (f VisaFlags) Any() bool {
	return f.O1 || f.EB1A || f.EB2NIW || f.DontKnow
}

// VisaType picks a single category from the flags.
// Precedence is O1 > EB1A > EB2_NIW > DONT_KNOW; the form allows several
// boxes to be ticked at once and only the first match is stored.
func (f VisaFlags) VisaType() (VisaType, bool) {
	switch {
	case f.O1:
		return VisaTypeO1, true
	case f.EB1A:
		return VisaTypeEB1A, true
	case f.EB2NIW:
		return VisaTypeEB2NIW, true
	case f.DontKnow:
		return VisaTypeDontKnow, true
	}
	return "", false
}

// FlagsForVisaType rebuilds the checkbox view of a stored visa type.
func FlagsForVisaType(v VisaType) VisaFlags {
	return VisaFlags{
		O1:       v == VisaTypeO1,
		EB1A:     v == VisaTypeEB1A,
		EB2NIW:   v == VisaTypeEB2NIW,
		DontKnow: v == VisaTypeDontKnow,
	}
}

// ResumeUpload is a resume file attached to a submission, not yet stored.
type ResumeUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// LeadSortField names a column the admin list can be ordered by.
type LeadSortField string

const (
	LeadSortCreatedAt LeadSortField = "createdAt"
	LeadSortName      LeadSortField = "name"
	LeadSortFirstName LeadSortField = "firstName"
	LeadSortLastName  LeadSortField = "lastName"
	LeadSortEmail     LeadSortField = "email"
	LeadSortCountry   LeadSortField = "country"
	LeadSortStatus    LeadSortField = "status"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseLeadSort maps the admin UI's sort parameters onto a known column and
// direction. Unknown values fall back to newest first.
func ParseLeadSort(field, direction string) (LeadSortField, SortDirection) {
	f := LeadSortCreatedAt
	switch LeadSortField(field) {
	case LeadSortName, LeadSortFirstName, LeadSortLastName,
		LeadSortEmail, LeadSortCountry, LeadSortStatus:
		f = LeadSortField(field)
	case "submitted", "timestamp":
		// the admin table labels the creation column "submitted"
		f = LeadSortCreatedAt
	}

	d := SortDesc
	if strings.EqualFold(direction, string(SortAsc)) {
		d = SortAsc
	}
	return f, d
}

// LeadListParams is a normalized admin list request.
// An empty Status means no status filter.
type LeadListParams struct {
	Limit         int
	Offset        int
	Search        string
	Status        LeadStatus
	SortField     LeadSortField
	SortDirection SortDirection
}

const (
	DefaultLeadLimit = 10
	MaxLeadLimit     = 100
)

// Normalized fills in the default page size, caps it, and resolves the sort.
func (p LeadListParams) Normalized() LeadListParams {
	if p.Limit <= 0 {
		p.Limit = DefaultLeadLimit
	}
	if p.Limit > MaxLeadLimit {
		p.Limit = MaxLeadLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	p.SortField, p.SortDirection = ParseLeadSort(string(p.SortField), string(p.SortDirection))
	return p
}

// LeadPage is one page of leads plus the count of all matching rows.
type LeadPage struct {
	Items []*Lead
	Total int
}

// RateLimitEntry is the per-email submission counter.
type RateLimitEntry struct {
	Count       int
	LastAttempt time.Time
}
