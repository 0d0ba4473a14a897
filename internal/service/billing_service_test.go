package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/negative-records-api/internal/dto"
	"github.com/noah-isme/negative-records-api/internal/models"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

func newPrintFixture(t *testing.T, fee, balance int64) *accessFixture {
	t.Helper()
	fx := newAccessFixture(fee)
	fx.db.mu.Lock()
	fx.db.clients[fixtureClientOne].CreditBalance = balance
	fx.db.mu.Unlock()
	_, _, err := fx.access.ClaimOrView(context.Background(), affiliate(fixtureUserOne), juanSearch)
	require.NoError(t, err)
	return fx
}

func TestPrintDeductsPrepaidCredit(t *testing.T) {
	fx := newPrintFixture(t, 2, 5)

	result, effects, err := fx.billing.Print(context.Background(), affiliate(fixtureUserOne), 1)
	require.NoError(t, err)
	assert.True(t, result.Billed)
	assert.Equal(t, int64(2), result.Fee)
	assert.Equal(t, int64(3), result.RemainingCredit)
	assert.Equal(t, "Juan", result.Record.FirstName)
	assert.Equal(t, fixtureClientOne, result.Meta.ClientID)
	assert.Equal(t, fx.now, result.Meta.PrintedAt)
	assert.Equal(t, int64(3), fx.db.balance(fixtureClientOne))

	require.Len(t, fx.db.txns, 1)
	txn := fx.db.txns[0]
	assert.Equal(t, models.CreditDeduction, txn.Type)
	assert.Equal(t, int64(3), txn.BalanceAfter)
	require.NotNil(t, txn.RecordID)
	assert.Equal(t, int64(1), *txn.RecordID)

	require.Len(t, effects, 1)
	assert.Equal(t, models.AuditActionRecordPrint, effects[0].Audit.Action)
}

func TestPrintRejectsInsufficientCreditWithoutStateChange(t *testing.T) {
	fx := newPrintFixture(t, 10, 5)

	_, effects, err := fx.billing.Print(context.Background(), affiliate(fixtureUserOne), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPaymentRequired.Code, errCode(err))
	assert.Contains(t, err.Error(), "10 credit(s)")
	assert.Nil(t, effects)
	assert.Equal(t, int64(5), fx.db.balance(fixtureClientOne))
	assert.Empty(t, fx.db.txns)
}

func TestPrintExactBalanceReachesZero(t *testing.T) {
	fx := newPrintFixture(t, 5, 5)

	result, _, err := fx.billing.Print(context.Background(), affiliate(fixtureUserOne), 2)
	require.NoError(t, err)
	assert.Zero(t, result.RemainingCredit)

	_, _, err = fx.billing.Print(context.Background(), affiliate(fixtureUserOne), 2)
	assert.Equal(t, appErrors.ErrPaymentRequired.Code, errCode(err))
}

func TestPrintConcurrentChargesNeverOverdraw(t *testing.T) {
	fx := newPrintFixture(t, 3, 3)

	var (
		g       errgroup.Group
		mu      sync.Mutex
		success int
		refused int
	)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, _, err := fx.billing.Print(context.Background(), affiliate(fixtureUserOne), 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				success++
			case errCode(err) == appErrors.ErrPaymentRequired.Code:
				refused++
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, success)
	assert.Equal(t, 9, refused)
	assert.Zero(t, fx.db.balance(fixtureClientOne))
	assert.Len(t, fx.db.txns, 1)
}

func TestPrintAuthorization(t *testing.T) {
	fx := newPrintFixture(t, 1, 5)
	ctx := context.Background()

	_, _, err := fx.billing.Print(ctx, affiliate(fixtureUserTwo), 1)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(err))

	// unlocked record
	_, _, err = fx.billing.Print(ctx, affiliate(fixtureUserOne), 3)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(err))

	_, _, err = fx.billing.Print(ctx, affiliate(fixtureOrphan), 1)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(err))

	_, _, err = fx.billing.Print(ctx, claimsFor(fixtureAdmin, models.RoleAdmin), 1)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(err))

	assert.Equal(t, int64(5), fx.db.balance(fixtureClientOne))
}

func TestPrintPostpaidAndZeroFeeAreNotBilled(t *testing.T) {
	fx := newAccessFixture(4)
	ctx := context.Background()
	_, _, err := fx.access.ClaimOrView(ctx, affiliate(fixtureUserTwo), dto.SearchRecordsRequest{Type: "Company", Company: "acme"})
	require.NoError(t, err)

	result, _, err := fx.billing.Print(ctx, affiliate(fixtureUserTwo), 3)
	require.NoError(t, err)
	assert.False(t, result.Billed)
	assert.Zero(t, result.Fee)
	assert.Empty(t, fx.db.txns)

	free := newPrintFixture(t, 0, 0)
	result, _, err = free.billing.Print(ctx, affiliate(fixtureUserOne), 1)
	require.NoError(t, err)
	assert.False(t, result.Billed)
}

func TestTopUp(t *testing.T) {
	fx := newAccessFixture(1)
	ctx := context.Background()
	admin := claimsFor(fixtureAdmin, models.RoleAdmin)

	resp, effects, err := fx.billing.TopUp(ctx, admin, dto.TopUpRequest{ClientID: fixtureClientOne, Amount: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(25), resp.CreditBalance)
	assert.Equal(t, int64(25), fx.db.balance(fixtureClientOne))
	require.Len(t, fx.db.txns, 1)
	assert.Equal(t, models.CreditTopUp, fx.db.txns[0].Type)
	require.Len(t, effects, 1)
	assert.Equal(t, models.AuditActionCreditTopUp, effects[0].Audit.Action)

	limit := int64(30)
	fx.db.mu.Lock()
	fx.db.clients[fixtureClientOne].CreditLimit = &limit
	fx.db.mu.Unlock()

	cases := []struct {
		name  string
		actor *models.JWTClaims
		req   dto.TopUpRequest
		code  string
	}{
		{name: "affiliate", actor: affiliate(fixtureUserOne), req: dto.TopUpRequest{ClientID: fixtureClientOne, Amount: 1}, code: appErrors.ErrForbidden.Code},
		{name: "zero amount", actor: admin, req: dto.TopUpRequest{ClientID: fixtureClientOne}, code: appErrors.ErrValidation.Code},
		{name: "negative amount", actor: admin, req: dto.TopUpRequest{ClientID: fixtureClientOne, Amount: -5}, code: appErrors.ErrValidation.Code},
		{name: "missing client", actor: admin, req: dto.TopUpRequest{ClientID: 999, Amount: 1}, code: appErrors.ErrNotFound.Code},
		{name: "inactive client", actor: admin, req: dto.TopUpRequest{ClientID: fixtureClientOff, Amount: 1}, code: appErrors.ErrForbidden.Code},
		{name: "over limit", actor: admin, req: dto.TopUpRequest{ClientID: fixtureClientOne, Amount: 6}, code: appErrors.ErrValidation.Code},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := fx.billing.TopUp(ctx, tc.actor, tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.code, errCode(err))
		})
	}
	assert.Equal(t, int64(25), fx.db.balance(fixtureClientOne))

	resp, _, err = fx.billing.TopUp(ctx, claimsFor(fixtureAdmin, models.RoleSuperAdmin), dto.TopUpRequest{ClientID: fixtureClientOne, Amount: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(30), resp.CreditBalance)
}

func TestCreditHistoryAccess(t *testing.T) {
	fx := newPrintFixture(t, 1, 5)
	ctx := context.Background()
	_, _, err := fx.billing.Print(ctx, affiliate(fixtureUserOne), 1)
	require.NoError(t, err)

	txns, total, err := fx.billing.CreditHistory(ctx, affiliate(fixtureUserOne), fixtureClientOne, 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, txns, 1)

	_, _, err = fx.billing.CreditHistory(ctx, affiliate(fixtureUserTwo), fixtureClientOne, 20, 0)
	assert.Equal(t, appErrors.ErrForbidden.Code, errCode(err))

	txns, _, err = fx.billing.CreditHistory(ctx, claimsFor(fixtureAdmin, models.RoleAdmin), fixtureClientTwo, 20, 0)
	require.NoError(t, err)
	assert.NotNil(t, txns)
	assert.Empty(t, txns)

	_, _, err = fx.billing.CreditHistory(ctx, claimsFor(fixtureAdmin, models.RoleAdmin), 999, 20, 0)
	assert.Equal(t, appErrors.ErrNotFound.Code, errCode(err))
}
