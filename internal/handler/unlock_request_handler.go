package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/negative-records-api/internal/dto"
	"github.com/noah-isme/negative-records-api/internal/models"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
	"github.com/noah-isme/negative-records-api/pkg/response"
)

type unlockRequestService interface {
	CreateUnlockRequest(ctx context.Context, actor *models.JWTClaims, req dto.CreateUnlockRequest) (*models.UnlockRequest, []models.Effect, error)
	ReviewUnlockRequest(ctx context.Context, actor *models.JWTClaims, id int64, req dto.ReviewUnlockRequest) (*models.UnlockRequest, []models.Effect, error)
	ListUnlockRequests(ctx context.Context, actor *models.JWTClaims, query dto.UnlockRequestQuery) ([]models.UnlockRequest, error)
}

// UnlockRequestHandler exposes the unlock request workflow.
type UnlockRequestHandler struct {
	service   unlockRequestService
	effects   effectDispatcher
	validator *validator.Validate
}

// NewUnlockRequestHandler constructs the handler.
func NewUnlockRequestHandler(svc unlockRequestService, effects effectDispatcher, validate *validator.Validate) *UnlockRequestHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &UnlockRequestHandler{service: svc, effects: effects, validator: validate}
}

// Create godoc
// @Summary Request the lock on a record
// @Tags Unlock Requests
// @Accept json
// @Produce json
// @Param payload body dto.CreateUnlockRequest true "Unlock request"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /unlock-requests [post]
func (h *UnlockRequestHandler) Create(c *gin.Context) {
	var req dto.CreateUnlockRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	request, effects, err := h.service.CreateUnlockRequest(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.effects.Dispatch(c.Request.Context(), requestMeta(c), effects)
	response.Created(c, request)
}

// List godoc
// @Summary List unlock requests
// @Tags Unlock Requests
// @Produce json
// @Param scope query string false "mine (default) or incoming"
// @Param status query string false "Comma separated statuses"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /unlock-requests [get]
func (h *UnlockRequestHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	query := dto.UnlockRequestQuery{
		Scope:  strings.ToLower(strings.TrimSpace(c.Query("scope"))),
		Limit:  size,
		Offset: (page - 1) * size,
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status, ok := models.ParseUnlockStatus(part)
			if !ok {
				response.Error(c, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or denied"))
				return
			}
			query.Status = append(query.Status, status)
		}
	}
	requests, err := h.service.ListUnlockRequests(c.Request.Context(), claimsFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil, map[string]interface{}{"page": page, "page_size": size})
}

// Review godoc
// @Summary Approve or deny an unlock request
// @Tags Unlock Requests
// @Accept json
// @Produce json
// @Param id path int true "Unlock request ID"
// @Param payload body dto.ReviewUnlockRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /unlock-requests/{id}/review [patch]
func (h *UnlockRequestHandler) Review(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ReviewUnlockRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	request, effects, err := h.service.ReviewUnlockRequest(c.Request.Context(), claimsFromContext(c), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.effects.Dispatch(c.Request.Context(), requestMeta(c), effects)
	response.JSON(c, http.StatusOK, request, nil)
}
