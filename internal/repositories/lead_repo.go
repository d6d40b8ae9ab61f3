package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/leadintake/internal/database"
	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewLeadRepository(db *database.DB) *LeadRepository {
	return &LeadRepository{db: db, pool: db.Pool}
}

func scanLeadRow(scanner rowScanner) (*models.Lead, error) {
	var lead models.Lead
	var visaType, status string

	err := scanner.Scan(
		&lead.ID, &lead.FirstName, &lead.LastName, &lead.Email,
		&lead.LinkedinURL, &lead.Country, &lead.AdditionalInfo,
		&visaType, &status, &lead.ResumePath, &lead.ResumeFileName,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	lead.VisaType = models.VisaType(visaType)
	lead.Status = models.LeadStatus(status)
	return &lead, nil
}

func scanLeadRows(rows pgx.Rows) ([]*models.Lead, error) {
	defer rows.Close()

	leads := make([]*models.Lead, 0)
	for rows.Next() {
		lead, err := scanLeadRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return leads, nil
}

// Create inserts a new lead. ID and timestamps are assigned here.
func (r *LeadRepository) Create(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	lead.ID = uuid.New().String()

	now := time.Now().UTC()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	if lead.Status == "" {
		lead.Status = models.LeadStatusPending
	}

	query := `
		INSERT INTO leads (id, first_name, last_name, email, linkedin_url, country, additional_info,
			visa_type, status, resume_path, resume_file_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + leadColumns

	return scanLeadRow(r.pool.QueryRow(ctx, query,
		lead.ID, lead.FirstName, lead.LastName, lead.Email,
		lead.LinkedinURL, lead.Country, lead.AdditionalInfo,
		string(lead.VisaType), string(lead.Status), lead.ResumePath, lead.ResumeFileName,
		lead.CreatedAt, lead.UpdatedAt,
	))
}

// List returns one page of leads and the count of every matching row. Both
// queries share a snapshot so the total agrees with the page.
func (r *LeadRepository) List(ctx context.Context, params models.LeadListParams) (*models.LeadPage, error) {
	where, args := buildLeadWhere(params)
	page := &models.LeadPage{Items: make([]*models.Lead, 0)}

	err := r.db.WithReadOnlySnapshot(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM leads`+where, args...).Scan(&page.Total); err != nil {
			return fmt.Errorf("failed to count leads: %w", err)
		}

		if page.Total == 0 || params.Offset >= page.Total {
			return nil
		}

		query := fmt.Sprintf(`SELECT %s FROM leads%s ORDER BY %s LIMIT $%d OFFSET $%d`,
			leadColumns, where, leadOrderBy(params.SortField, params.SortDirection),
			len(args)+1, len(args)+2,
		)

		pageArgs := make([]any, 0, len(args)+2)
		pageArgs = append(pageArgs, args...)
		pageArgs = append(pageArgs, params.Limit, params.Offset)

		rows, err := tx.Query(ctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query leads: %w", err)
		}

		items, err := scanLeadRows(rows)
		if err != nil {
			return err
		}
		page.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	return page, nil
}

// UpdateStatus sets a lead's status and bumps updated_at. The row is locked
// while the previous status is read so the pair reported back belongs to
// this change. A missing or malformed id returns ErrNotFound.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status models.LeadStatus) (*models.Lead, models.LeadStatus, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, "", models.ErrNotFound
	}

	var (
		updated  *models.Lead
		previous models.LeadStatus
	)

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		var current string
		if err := tx.QueryRow(ctx, `SELECT status FROM leads WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
			return database.MapPostgresError(err)
		}
		previous = models.LeadStatus(current)

		query := `
			UPDATE leads SET status = $2, updated_at = $3
			WHERE id = $1
			RETURNING ` + leadColumns

		lead, err := scanLeadRow(tx.QueryRow(ctx, query, id, string(status), time.Now().UTC()))
		if err != nil {
			return err
		}
		updated = lead
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return updated, previous, nil
}
