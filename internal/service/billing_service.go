package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/negative-records-api/internal/dto"
	"github.com/noah-isme/negative-records-api/internal/models"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

type creditLedger interface {
	FindByID(ctx context.Context, id int64) (*models.Client, error)
	DeductCredit(ctx context.Context, clientID, fee int64) (int64, error)
	AddCredit(ctx context.Context, clientID, amount int64) (int64, error)
	AppendTransaction(ctx context.Context, txn *models.CreditTransaction) error
	ListTransactions(ctx context.Context, clientID int64, limit, offset int) ([]models.CreditTransaction, int, error)
}

type lockReader interface {
	FindByRecord(ctx context.Context, recordID int64) (*models.RecordLock, error)
}

// BillingDependencies groups the collaborators of BillingService.
type BillingDependencies struct {
	Tx      txRunner
	Records recordReader
	Locks   lockReader
	Clients creditLedger
	Users   userReader
	Metrics *MetricsService
}

// PrintResult is the outcome of an authorised print. The artifact is rendered
// by the caller from Record once the charge has committed.
type PrintResult struct {
	Record          *models.NegativeRecord
	Meta            dto.PrintMeta
	Billed          bool
	Fee             int64
	RemainingCredit int64
}

// BillingService gates privileged actions behind the client credit ledger.
type BillingService struct {
	deps     BillingDependencies
	printFee int64
	logger   *zap.Logger
	now      func() time.Time
}

// NewBillingService constructs the service.
func NewBillingService(deps BillingDependencies, printFee int64, logger *zap.Logger) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if printFee < 0 {
		printFee = 0
	}
	return &BillingService{deps: deps, printFee: printFee, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Print authorises the lock holder to print a record, charging prepaid clients
// the print fee with a single conditional decrement.
func (s *BillingService) Print(ctx context.Context, actor *models.JWTClaims, recordID int64) (*PrintResult, []models.Effect, error) {
	_, client, err := resolveAffiliation(ctx, actor, s.deps.Users, s.deps.Clients)
	if err != nil {
		return nil, nil, err
	}

	result := &PrintResult{
		Meta:            dto.PrintMeta{RecordID: recordID, PrintedBy: actor.UserID, ClientID: client.ID},
		RemainingCredit: client.CreditBalance,
	}
	err = s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		lock, err := s.deps.Locks.FindByRecord(ctx, recordID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if !lock.HeldBy(actor.UserID) {
			return appErrors.Clone(appErrors.ErrForbidden, "only the lock holder may print this record")
		}
		record, err := s.deps.Records.FindByID(ctx, recordID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "record not found")
			}
			return err
		}
		result.Record = record

		if client.BillingType != models.BillingPrepaid || s.printFee == 0 {
			return nil
		}
		balance, err := s.deps.Clients.DeductCredit(ctx, client.ID, s.printFee)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrPaymentRequired,
					fmt.Sprintf("insufficient credit balance: printing requires %d credit(s)", s.printFee))
			}
			return err
		}
		if err := s.deps.Clients.AppendTransaction(ctx, &models.CreditTransaction{
			ClientID:     client.ID,
			Type:         models.CreditDeduction,
			Amount:       s.printFee,
			BalanceAfter: balance,
			RecordID:     &recordID,
			PerformedBy:  actor.UserID,
			Description:  fmt.Sprintf("Print of record %d", recordID),
		}); err != nil {
			return err
		}
		result.Billed = true
		result.Fee = s.printFee
		result.RemainingCredit = balance
		return nil
	})
	if err != nil {
		if appErrors.Is(err, appErrors.ErrPaymentRequired) {
			s.deps.Metrics.RecordPaymentRequired()
		}
		return nil, nil, domainError(err, "failed to print record")
	}
	result.Meta.PrintedAt = s.now()
	s.deps.Metrics.RecordPrint(result.Billed)

	audit := lockAudit(actor.UserID, models.AuditActionRecordPrint, recordID)
	audit.NewValues = mustJSON(map[string]interface{}{
		"clientId":        client.ID,
		"billed":          result.Billed,
		"fee":             result.Fee,
		"remainingCredit": result.RemainingCredit,
	})
	return result, []models.Effect{models.AuditEffect(audit)}, nil
}

// TopUp adds credit to a client balance within its optional credit limit.
func (s *BillingService) TopUp(ctx context.Context, actor *models.JWTClaims, req dto.TopUpRequest) (*dto.TopUpResponse, []models.Effect, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators may top up credit")
	}
	if req.ClientID <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "clientId is required")
	}
	if req.Amount <= 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "amount must be greater than zero")
	}

	var balance int64
	err := s.deps.Tx.WithinTx(ctx, func(ctx context.Context) error {
		client, err := s.deps.Clients.FindByID(ctx, req.ClientID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "client not found")
			}
			return err
		}
		if !client.Active {
			return appErrors.Clone(appErrors.ErrForbidden, "client is inactive")
		}
		balance, err = s.deps.Clients.AddCredit(ctx, client.ID, req.Amount)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "top-up would exceed the client's credit limit")
			}
			return err
		}
		return s.deps.Clients.AppendTransaction(ctx, &models.CreditTransaction{
			ClientID:     client.ID,
			Type:         models.CreditTopUp,
			Amount:       req.Amount,
			BalanceAfter: balance,
			PerformedBy:  actor.UserID,
			Description:  "Credit top-up",
		})
	})
	if err != nil {
		return nil, nil, domainError(err, "failed to top up credit")
	}

	resp := &dto.TopUpResponse{ClientID: req.ClientID, CreditBalance: balance}
	audit := creditAudit(actor.UserID, models.AuditActionCreditTopUp, req.ClientID, map[string]int64{
		"amount":        req.Amount,
		"creditBalance": balance,
	})
	return resp, []models.Effect{models.AuditEffect(audit)}, nil
}

// CreditHistory lists a client's ledger to administrators and the client's own users.
func (s *BillingService) CreditHistory(ctx context.Context, actor *models.JWTClaims, clientID int64, limit, offset int) ([]models.CreditTransaction, int, error) {
	if actor == nil {
		return nil, 0, appErrors.ErrUnauthorized
	}
	if !actor.Role.IsAdmin() {
		user, err := s.deps.Users.FindByID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, 0, appErrors.ErrUnauthorized
			}
			return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
		}
		if user.ClientID == nil || *user.ClientID != clientID {
			return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "you may only view your own client's transactions")
		}
	}
	if _, err := s.deps.Clients.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "client not found")
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load client")
	}
	txns, total, err := s.deps.Clients.ListTransactions(ctx, clientID, limit, offset)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list credit transactions")
	}
	if txns == nil {
		txns = []models.CreditTransaction{}
	}
	return txns, total, nil
}
