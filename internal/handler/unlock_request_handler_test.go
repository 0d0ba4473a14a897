package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/negative-records-api/internal/dto"
	"github.com/noah-isme/negative-records-api/internal/models"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
)

type unlockServiceMock struct {
	createReq  dto.CreateUnlockRequest
	reviewReq  dto.ReviewUnlockRequest
	reviewID   int64
	query      dto.UnlockRequestQuery
	request    *models.UnlockRequest
	effects    []models.Effect
	err        error
	createCall bool
}

func (m *unlockServiceMock) CreateUnlockRequest(ctx context.Context, actor *models.JWTClaims, req dto.CreateUnlockRequest) (*models.UnlockRequest, []models.Effect, error) {
	m.createCall = true
	m.createReq = req
	return m.request, m.effects, m.err
}

func (m *unlockServiceMock) ReviewUnlockRequest(ctx context.Context, actor *models.JWTClaims, id int64, req dto.ReviewUnlockRequest) (*models.UnlockRequest, []models.Effect, error) {
	m.reviewID = id
	m.reviewReq = req
	return m.request, m.effects, m.err
}

func (m *unlockServiceMock) ListUnlockRequests(ctx context.Context, actor *models.JWTClaims, query dto.UnlockRequestQuery) ([]models.UnlockRequest, error) {
	m.query = query
	return []models.UnlockRequest{}, m.err
}

func TestUnlockRequestHandlerCreate(t *testing.T) {
	svc := &unlockServiceMock{
		request: &models.UnlockRequest{ID: 3, RecordID: 1, Status: models.UnlockStatusPending},
		effects: []models.Effect{models.NotifyAdmins(models.NotificationUnlockAlert, "t", "m", 3)},
	}
	effects := &dispatchRecorder{}
	h := NewUnlockRequestHandler(svc, effects, nil)

	c, w := newTestContext(http.MethodPost, "/unlock-requests", `{"recordId":1,"reason":"due diligence"}`, affiliateClaims)
	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(1), svc.createReq.RecordID)
	assert.Equal(t, "due diligence", svc.createReq.Reason)
	assert.Len(t, effects.effects, 1)
}

func TestUnlockRequestHandlerCreateValidation(t *testing.T) {
	svc := &unlockServiceMock{}
	h := NewUnlockRequestHandler(svc, &dispatchRecorder{}, nil)

	for _, body := range []string{`{"recordId":0}`, `{"recordId":"one"}`, `{`} {
		c, w := newTestContext(http.MethodPost, "/unlock-requests", body, affiliateClaims)
		h.Create(c)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
	assert.False(t, svc.createCall)
}

func TestUnlockRequestHandlerCreateConflict(t *testing.T) {
	svc := &unlockServiceMock{err: appErrors.Clone(appErrors.ErrConflict, "you already have a pending unlock request for this record")}
	effects := &dispatchRecorder{}
	h := NewUnlockRequestHandler(svc, effects, nil)

	c, w := newTestContext(http.MethodPost, "/unlock-requests", `{"recordId":1}`, affiliateClaims)
	h.Create(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Zero(t, effects.calls)
}

func TestUnlockRequestHandlerReview(t *testing.T) {
	svc := &unlockServiceMock{request: &models.UnlockRequest{ID: 3, Status: models.UnlockStatusDenied}}
	h := NewUnlockRequestHandler(svc, &dispatchRecorder{}, nil)

	c, w := newTestContext(http.MethodPatch, "/unlock-requests/3/review", `{"status":"denied","denialReason":"not yet"}`, affiliateClaims, gin.Param{Key: "id", Value: "3"})
	h.Review(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), svc.reviewID)
	assert.Equal(t, "not yet", svc.reviewReq.DenialReason)

	c, w = newTestContext(http.MethodPatch, "/unlock-requests/3/review", `{}`, affiliateClaims, gin.Param{Key: "id", Value: "3"})
	h.Review(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.err = appErrors.Clone(appErrors.ErrInvalidState, "unlock request has already been reviewed")
	c, w = newTestContext(http.MethodPatch, "/unlock-requests/3/review", `{"status":"approved"}`, affiliateClaims, gin.Param{Key: "id", Value: "3"})
	h.Review(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATE")
}

func TestUnlockRequestHandlerList(t *testing.T) {
	svc := &unlockServiceMock{}
	h := NewUnlockRequestHandler(svc, &dispatchRecorder{}, nil)

	c, w := newTestContext(http.MethodGet, "/unlock-requests?scope=Incoming&status=pending,denied", "", affiliateClaims)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.UnlockScopeIncoming, svc.query.Scope)
	assert.Equal(t, []models.UnlockRequestStatus{models.UnlockStatusPending, models.UnlockStatusDenied}, svc.query.Status)
	assert.Equal(t, 20, svc.query.Limit)
	assert.Zero(t, svc.query.Offset)

	c, w = newTestContext(http.MethodGet, "/unlock-requests?page=3&page_size=5", "", affiliateClaims)
	h.List(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, svc.query.Limit)
	assert.Equal(t, 10, svc.query.Offset)
	assert.Contains(t, w.Body.String(), `"page":3`)

	c, w = newTestContext(http.MethodGet, "/unlock-requests?status=lost", "", affiliateClaims)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
