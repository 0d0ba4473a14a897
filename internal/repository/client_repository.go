package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/negative-records-api/internal/models"
)

// ClientRepository manages client balances and the credit ledger.
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository constructs the repository.
func NewClientRepository(db *sqlx.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// FindByID fetches a client by identifier.
func (r *ClientRepository) FindByID(ctx context.Context, id int64) (*models.Client, error) {
	const query = `SELECT id, name, active, billing_type, credit_balance, credit_limit, created_at, updated_at FROM clients WHERE id = $1`
	var client models.Client
	if err := conn(ctx, r.db).GetContext(ctx, &client, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find client: %w", err)
	}
	return &client, nil
}

// DeductCredit atomically subtracts fee when the balance covers it and returns
// the new balance. It returns sql.ErrNoRows when the balance is insufficient.
func (r *ClientRepository) DeductCredit(ctx context.Context, clientID, fee int64) (int64, error) {
	const query = `UPDATE clients SET credit_balance = credit_balance - $2, updated_at = NOW()
	WHERE id = $1 AND credit_balance >= $2 RETURNING credit_balance`
	var balance int64
	if err := conn(ctx, r.db).GetContext(ctx, &balance, query, clientID, fee); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("deduct client credit: %w", err)
	}
	return balance, nil
}

// AddCredit atomically increases the balance while respecting the credit limit.
// It returns sql.ErrNoRows when the limit would be exceeded.
func (r *ClientRepository) AddCredit(ctx context.Context, clientID, amount int64) (int64, error) {
	const query = `UPDATE clients SET credit_balance = credit_balance + $2, updated_at = NOW()
	WHERE id = $1 AND (credit_limit IS NULL OR credit_balance + $2 <= credit_limit) RETURNING credit_balance`
	var balance int64
	if err := conn(ctx, r.db).GetContext(ctx, &balance, query, clientID, amount); err != nil {
		if err == sql.ErrNoRows {
			return 0, err
		}
		return 0, fmt.Errorf("add client credit: %w", err)
	}
	return balance, nil
}

// AppendTransaction records a balance movement.
func (r *ClientRepository) AppendTransaction(ctx context.Context, txn *models.CreditTransaction) error {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO credit_transactions (client_id, type, amount, balance_after, record_id, performed_by, description, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	if err := conn(ctx, r.db).GetContext(ctx, &txn.ID, query,
		txn.ClientID, txn.Type, txn.Amount, txn.BalanceAfter, txn.RecordID, txn.PerformedBy, txn.Description, txn.CreatedAt); err != nil {
		return fmt.Errorf("append credit transaction: %w", err)
	}
	return nil
}

// ListTransactions returns the ledger of a client, newest first.
func (r *ClientRepository) ListTransactions(ctx context.Context, clientID int64, limit, offset int) ([]models.CreditTransaction, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	q := conn(ctx, r.db)

	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM credit_transactions WHERE client_id = $1`, clientID); err != nil {
		return nil, 0, fmt.Errorf("count credit transactions: %w", err)
	}

	query := fmt.Sprintf(`SELECT id, client_id, type, amount, balance_after, record_id, performed_by, description, created_at
	FROM credit_transactions WHERE client_id = $1 ORDER BY id DESC LIMIT %d OFFSET %d`, limit, offset)
	var txns []models.CreditTransaction
	if err := q.SelectContext(ctx, &txns, query, clientID); err != nil {
		return nil, 0, fmt.Errorf("list credit transactions: %w", err)
	}
	return txns, total, nil
}
