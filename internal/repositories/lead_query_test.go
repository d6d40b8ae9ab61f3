package repositories

import (
	"testing"

	"github.com/BradenHooton/leadintake/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestBuildLeadWhere(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		where, args := buildLeadWhere(models.LeadListParams{})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("search only", func(t *testing.T) {
		where, args := buildLeadWhere(models.LeadListParams{Search: "john"})
		assert.Equal(t,
			" WHERE (first_name ILIKE $1 OR last_name ILIKE $1 OR email ILIKE $1 OR country ILIKE $1)", where)
		assert.Equal(t, []any{"%john%"}, args)
	})

	t.Run("status only", func(t *testing.T) {
		where, args := buildLeadWhere(models.LeadListParams{Status: models.LeadStatusPending})
		assert.Equal(t, " WHERE status = $1", where)
		assert.Equal(t, []any{"PENDING"}, args)
	})

	t.Run("search and status", func(t *testing.T) {
		where, args := buildLeadWhere(models.LeadListParams{
			Search: "us",
			Status: models.LeadStatusReachedOut,
		})
		assert.Contains(t, where, "ILIKE $1")
		assert.Contains(t, where, " AND status = $2")
		assert.Equal(t, []any{"%us%", "REACHED_OUT"}, args)
	})
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, escapeLike("100%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, escapeLike(`c:\dir`))
	assert.Equal(t, "plain", escapeLike("plain"))
}

func TestLeadOrderBy(t *testing.T) {
	tests := []struct {
		field models.LeadSortField
		dir   models.SortDirection
		want  string
	}{
		{models.LeadSortCreatedAt, models.SortDesc, `"created_at" DESC, "id" DESC`},
		{models.LeadSortName, models.SortAsc, `"first_name" ASC, "last_name" ASC, "id" ASC`},
		{models.LeadSortCountry, models.SortDesc, `"country" DESC, "id" DESC`},
		{"password_hash", models.SortAsc, `"created_at" ASC, "id" ASC`},
		{models.LeadSortStatus, "", `"status" DESC, "id" DESC`},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			assert.Equal(t, tt.want, leadOrderBy(tt.field, tt.dir))
		})
	}
}
