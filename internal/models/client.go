package models

import "time"

// BillingType selects how a client pays for privileged actions.
type BillingType string

const (
	BillingPrepaid  BillingType = "Prepaid"
	BillingPostpaid BillingType = "Postpaid"
)

// Client is the billing-bearing affiliate organisation.
type Client struct {
	ID            int64       `db:"id" json:"id"`
	Name          string      `db:"name" json:"name"`
	Active        bool        `db:"active" json:"active"`
	BillingType   BillingType `db:"billing_type" json:"billingType"`
	CreditBalance int64       `db:"credit_balance" json:"creditBalance"`
	CreditLimit   *int64      `db:"credit_limit" json:"creditLimit,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

// CreditTransactionType enumerates ledger entry kinds.
type CreditTransactionType string

const (
	CreditTopUp     CreditTransactionType = "topup"
	CreditDeduction CreditTransactionType = "deduction"
)

// CreditTransaction is an audit row for every balance movement.
type CreditTransaction struct {
	ID           int64                 `db:"id" json:"id"`
	ClientID     int64                 `db:"client_id" json:"clientId"`
	Type         CreditTransactionType `db:"type" json:"type"`
	Amount       int64                 `db:"amount" json:"amount"`
	BalanceAfter int64                 `db:"balance_after" json:"balanceAfter"`
	RecordID     *int64                `db:"record_id" json:"recordId,omitempty"`
	PerformedBy  int64                 `db:"performed_by" json:"performedBy"`
	Description  string                `db:"description" json:"description"`
	CreatedAt    time.Time             `db:"created_at" json:"createdAt"`
}
