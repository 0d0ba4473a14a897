package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/negative-records-api/internal/dto"
	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/pkg/response"
)

type creditService interface {
	TopUp(ctx context.Context, actor *models.JWTClaims, req dto.TopUpRequest) (*dto.TopUpResponse, []models.Effect, error)
	CreditHistory(ctx context.Context, actor *models.JWTClaims, clientID int64, limit, offset int) ([]models.CreditTransaction, int, error)
}

// CreditHandler exposes client credit operations.
type CreditHandler struct {
	service   creditService
	effects   effectDispatcher
	validator *validator.Validate
}

// NewCreditHandler constructs the handler.
func NewCreditHandler(svc creditService, effects effectDispatcher, validate *validator.Validate) *CreditHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &CreditHandler{service: svc, effects: effects, validator: validate}
}

// TopUp godoc
// @Summary Top up client credit
// @Tags Credits
// @Accept json
// @Produce json
// @Param payload body dto.TopUpRequest true "Top-up"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /credits/topup [post]
func (h *CreditHandler) TopUp(c *gin.Context) {
	var req dto.TopUpRequest
	if err := bindJSON(c, h.validator, &req); err != nil {
		response.Error(c, err)
		return
	}
	res, effects, err := h.service.TopUp(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.effects.Dispatch(c.Request.Context(), requestMeta(c), effects)
	response.JSON(c, http.StatusOK, res, nil)
}

// Transactions godoc
// @Summary Client credit ledger
// @Tags Credits
// @Produce json
// @Param clientId path int true "Client ID"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /credits/{clientId}/transactions [get]
func (h *CreditHandler) Transactions(c *gin.Context) {
	clientID, err := int64Param(c, "clientId")
	if err != nil {
		response.Error(c, err)
		return
	}
	page, size := pageParams(c)
	txns, total, err := h.service.CreditHistory(c.Request.Context(), claimsFromContext(c), clientID, size, (page-1)*size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, txns, &models.Pagination{Page: page, PageSize: size, TotalCount: total})
}
