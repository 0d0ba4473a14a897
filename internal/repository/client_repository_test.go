package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/negative-records-api/internal/models"
)

func TestClientRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM clients WHERE id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "active", "billing_type", "credit_balance", "credit_limit", "created_at", "updated_at"}).
			AddRow(4, "Acme Lending", true, "Prepaid", 5, nil, now, now))

	client, err := repo.FindByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, models.BillingPrepaid, client.BillingType)
	assert.Nil(t, client.CreditLimit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryDeductCredit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND credit_balance >= $2 RETURNING credit_balance")).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"credit_balance"}).AddRow(0))
	balance, err := repo.DeductCredit(context.Background(), 4, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	mock.ExpectQuery(regexp.QuoteMeta("credit_balance >= $2")).
		WithArgs(int64(4), int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"credit_balance"}))
	_, err = repo.DeductCredit(context.Background(), 4, 1)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryAddCreditRespectsLimit(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("credit_limit IS NULL OR credit_balance + $2 <= credit_limit")).
		WithArgs(int64(4), int64(100)).
		WillReturnRows(sqlmock.NewRows([]string{"credit_balance"}))

	_, err := repo.AddCredit(context.Background(), 4, 100)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepositoryTransactions(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClientRepository(db)
	now := time.Now()
	recordID := int64(3)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO credit_transactions")).
		WithArgs(int64(4), models.CreditDeduction, int64(1), int64(0), &recordID, int64(10), "print record 3", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(8))
	txn := &models.CreditTransaction{
		ClientID:     4,
		Type:         models.CreditDeduction,
		Amount:       1,
		BalanceAfter: 0,
		RecordID:     &recordID,
		PerformedBy:  10,
		Description:  "print record 3",
	}
	require.NoError(t, repo.AppendTransaction(context.Background(), txn))
	assert.Equal(t, int64(8), txn.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM credit_transactions WHERE client_id = $1")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY id DESC LIMIT 50 OFFSET 0")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "client_id", "type", "amount", "balance_after", "record_id", "performed_by", "description", "created_at"}).
			AddRow(8, 4, "deduction", 1, 0, 3, 10, "print record 3", now))

	txns, total, err := repo.ListTransactions(context.Background(), 4, 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, txns, 1)
	assert.Equal(t, models.CreditDeduction, txns[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}
