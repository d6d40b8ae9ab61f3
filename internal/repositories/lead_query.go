package repositories

import (
	"fmt"
	"strings"

	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/lib/pq"
)

const leadColumns = `id, first_name, last_name, email, linkedin_url, country, additional_info,
	visa_type, status, resume_path, resume_file_name, created_at, updated_at`

// sortColumns whitelists what the admin list may be ordered by. Anything
// else never reaches the SQL text.
var sortColumns = map[models.LeadSortField][]string{
	models.LeadSortCreatedAt: {"created_at"},
	models.LeadSortName:      {"first_name", "last_name"},
	models.LeadSortFirstName: {"first_name"},
	models.LeadSortLastName:  {"last_name"},
	models.LeadSortEmail:     {"email"},
	models.LeadSortCountry:   {"country"},
	models.LeadSortStatus:    {"status"},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// buildLeadWhere returns the WHERE clause (with a leading space, or empty)
// and its positional arguments.
func buildLeadWhere(p models.LeadListParams) (string, []any) {
	var (
		conds []string
		args  []any
	)

	if p.Search != "" {
		args = append(args, "%"+escapeLike(p.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(first_name ILIKE $%[1]d OR last_name ILIKE $%[1]d OR email ILIKE $%[1]d OR country ILIKE $%[1]d)", n))
	}

	if p.Status != "" {
		args = append(args, string(p.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// leadOrderBy builds the ORDER BY list. id breaks ties so pages don't
// overlap when many rows share a sort value.
func leadOrderBy(field models.LeadSortField, dir models.SortDirection) string {
	cols, ok := sortColumns[field]
	if !ok {
		cols = sortColumns[models.LeadSortCreatedAt]
	}

	d := "DESC"
	if dir == models.SortAsc {
		d = "ASC"
	}

	parts := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		parts = append(parts, pq.QuoteIdentifier(c)+" "+d)
	}
	parts = append(parts, pq.QuoteIdentifier("id")+" "+d)
	return strings.Join(parts, ", ")
}
