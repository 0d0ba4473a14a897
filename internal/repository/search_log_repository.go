package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/negative-records-api/internal/models"
)

const accessHistoryLimit = 50

// SearchLogRepository appends and queries search attempts.
type SearchLogRepository struct {
	db *sqlx.DB
}

// NewSearchLogRepository constructs the repository.
func NewSearchLogRepository(db *sqlx.DB) *SearchLogRepository {
	return &SearchLogRepository{db: db}
}

// Create appends a search log row.
func (r *SearchLogRepository) Create(ctx context.Context, entry *models.SearchLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO search_logs (user_id, client_id, search_type, search_term, result_count, is_billed, fee, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := conn(ctx, r.db).GetContext(ctx, &entry.ID, query,
		entry.UserID, entry.ClientID, entry.SearchType, entry.SearchTerm, entry.ResultCount, entry.IsBilled, entry.Fee, entry.CreatedAt); err != nil {
		return fmt.Errorf("create search log: %w", err)
	}
	return nil
}

// AccessHistory lists searches whose normalized term equals term, newest first.
// Records that normalize to the same term share their history.
func (r *SearchLogRepository) AccessHistory(ctx context.Context, term string) ([]models.AccessHistoryEntry, error) {
	query := fmt.Sprintf(`SELECT sl.created_at, sl.search_type, sl.user_id, u.full_name, COALESCE(c.name, '') AS client_name
	FROM search_logs sl
	JOIN users u ON u.id = sl.user_id
	LEFT JOIN clients c ON c.id = sl.client_id
	WHERE sl.search_term = $1
	ORDER BY sl.created_at DESC, sl.id DESC
	LIMIT %d`, accessHistoryLimit)
	var entries []models.AccessHistoryEntry
	if err := conn(ctx, r.db).SelectContext(ctx, &entries, query, term); err != nil {
		return nil, fmt.Errorf("list access history: %w", err)
	}
	return entries, nil
}
