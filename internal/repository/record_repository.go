package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/negative-records-api/internal/models"
)

const recordColumns = `id, type, first_name, middle_name, last_name, company_name, case_number, plaintiff,
       case_type, court, branch, city, date_filed, details, source, is_scanned, created_at, updated_at`

const maxSearchResults = 50

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// RecordRepository reads negative records.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// FindByID fetches a record by identifier.
func (r *RecordRepository) FindByID(ctx context.Context, id int64) (*models.NegativeRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM negative_records WHERE id = $1`
	var record models.NegativeRecord
	if err := conn(ctx, r.db).GetContext(ctx, &record, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find negative record: %w", err)
	}
	return &record, nil
}

// Search returns records of the filter type whose name parts (or company name)
// contain every non-empty term, case-insensitively, ordered by id.
func (r *RecordRepository) Search(ctx context.Context, filter models.RecordSearchFilter) ([]models.NegativeRecord, error) {
	args := []interface{}{filter.Type}
	conditions := []string{"type = $1"}

	addLike := func(column, term string) {
		term = strings.TrimSpace(term)
		if term == "" {
			return
		}
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(term))+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(%s) LIKE $%d", column, len(args)))
	}
	if filter.Type == models.RecordTypeCompany {
		addLike("company_name", filter.Company)
	} else {
		addLike("first_name", filter.FirstName)
		addLike("middle_name", filter.MiddleName)
		addLike("last_name", filter.LastName)
	}
	if len(conditions) == 1 {
		return nil, fmt.Errorf("search negative records: no search term")
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxSearchResults {
		limit = maxSearchResults
	}
	query := fmt.Sprintf(`SELECT %s FROM negative_records WHERE %s ORDER BY id LIMIT %d`,
		recordColumns, strings.Join(conditions, " AND "), limit)

	var records []models.NegativeRecord
	if err := conn(ctx, r.db).SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("search negative records: %w", err)
	}
	return records, nil
}
