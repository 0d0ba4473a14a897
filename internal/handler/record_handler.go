package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/negative-records-api/internal/dto"
	"github.com/noah-isme/negative-records-api/internal/middleware"
	"github.com/noah-isme/negative-records-api/internal/models"
	"github.com/noah-isme/negative-records-api/internal/service"
	appErrors "github.com/noah-isme/negative-records-api/pkg/errors"
	"github.com/noah-isme/negative-records-api/pkg/export"
	"github.com/noah-isme/negative-records-api/pkg/response"
)

type recordAccessService interface {
	ClaimOrView(ctx context.Context, actor *models.JWTClaims, req dto.SearchRecordsRequest) (*dto.SearchRecordsResponse, []models.Effect, error)
	LockInfo(ctx context.Context, actor *models.JWTClaims, recordID int64) (*dto.LockInfoResponse, error)
	LockHistory(ctx context.Context, actor *models.JWTClaims, recordID int64) ([]models.LockHistory, error)
}

type printService interface {
	Print(ctx context.Context, actor *models.JWTClaims, recordID int64) (*service.PrintResult, []models.Effect, error)
}

type effectDispatcher interface {
	Dispatch(ctx context.Context, meta service.RequestMeta, effects []models.Effect)
}

type sheetRenderer interface {
	Render(sheet export.Sheet) ([]byte, error)
}

// RecordHandler exposes record search, lock lookups and printing.
type RecordHandler struct {
	access   recordAccessService
	billing  printService
	effects  effectDispatcher
	renderer sheetRenderer
	logger   *zap.Logger
}

// NewRecordHandler constructs the handler.
func NewRecordHandler(access recordAccessService, billing printService, effects effectDispatcher, renderer sheetRenderer, logger *zap.Logger) *RecordHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordHandler{access: access, billing: billing, effects: effects, renderer: renderer, logger: logger}
}

// Search godoc
// @Summary Search negative records
// @Description Searches records by name or company. Unlocked matches are locked to the caller; matches held by others are returned without details.
// @Tags Records
// @Produce json
// @Param type query string true "Individual or Company"
// @Param firstName query string false "First name"
// @Param middleName query string false "Middle name"
// @Param lastName query string false "Last name"
// @Param company query string false "Company name"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /records/search [get]
func (h *RecordHandler) Search(c *gin.Context) {
	var req dto.SearchRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search parameters"))
		return
	}

	res, effects, err := h.access.ClaimOrView(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.effects.Dispatch(c.Request.Context(), requestMeta(c), effects)

	middleware.SetMeta(c, "remaining_credit", res.RemainingCredit)
	response.JSON(c, http.StatusOK, res, nil, middleware.ExtractMeta(c))
}

// LockInfo godoc
// @Summary Lock owner and access history
// @Tags Records
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /records/{id}/lock-info [get]
func (h *RecordHandler) LockInfo(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.access.LockInfo(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// LockHistory godoc
// @Summary Lock ownership trail
// @Tags Records
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /records/{id}/lock-history [get]
func (h *RecordHandler) LockHistory(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.access.LockHistory(c.Request.Context(), claimsFromContext(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Print godoc
// @Summary Print a locked record
// @Description Charges prepaid clients the print fee and returns the record sheet as PDF, or JSON metadata with format=json.
// @Tags Records
// @Produce application/pdf
// @Produce json
// @Param id path int true "Record ID"
// @Param format query string false "pdf (default) or json"
// @Success 200 {file} file
// @Failure 402 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /records/{id}/print [post]
func (h *RecordHandler) Print(c *gin.Context) {
	id, err := int64Param(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", "pdf"))
	if format != "pdf" && format != "json" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be pdf or json"))
		return
	}

	actor := claimsFromContext(c)
	result, effects, err := h.billing.Print(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.effects.Dispatch(c.Request.Context(), requestMeta(c), effects)

	printed := dto.PrintResponse{
		PrintMeta:       result.Meta,
		Billed:          result.Billed,
		Fee:             result.Fee,
		RemainingCredit: result.RemainingCredit,
	}
	if format == "json" {
		response.JSON(c, http.StatusOK, printed, nil)
		return
	}

	body, err := h.renderer.Render(service.PrintSheet(result, actor.FullName))
	if err != nil {
		// the charge has committed; send the receipt along with the error
		h.logger.Error("render print sheet failed", zap.Int64("record_id", id), zap.Bool("billed", result.Billed), zap.Error(err))
		response.ErrorWithData(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render print sheet"), printed)
		return
	}
	response.Attachment(c, "application/pdf", fmt.Sprintf("record-%d.pdf", id), body)
}
