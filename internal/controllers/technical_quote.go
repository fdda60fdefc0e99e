package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/dto"
	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

type TechnicalQuoteController struct {
	tqService services.TechnicalQuoteServiceInterface
	logger    *zap.Logger
}

func NewTechnicalQuoteController(tqService services.TechnicalQuoteServiceInterface, logger *zap.Logger) *TechnicalQuoteController {
	return &TechnicalQuoteController{tqService: tqService, logger: logger}
}

func (c *TechnicalQuoteController) CreateOrReplace(ctx echo.Context) error {
	var payload dto.CreateTechnicalQuoteDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.tqService.CreateOrReplace(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("Ошибка при сохранении технической котировки",
			zap.Uint64("quoteId", payload.QuoteID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Техническая котировка сохранена", http.StatusCreated)
}

func (c *TechnicalQuoteController) FindTechnicalQuote(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.tqService.FindTechnicalQuote(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Техническая котировка найдена", http.StatusOK)
}

func (c *TechnicalQuoteController) SendToClient(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.tqService.SendToClient(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("Ошибка при отправке котировки клиенту",
			zap.Uint64("technicalQuoteId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Котировка отправлена клиенту", http.StatusOK)
}

// ClientDecision - публичная точка решения клиента, вызывается по ссылке
// из письма без авторизации.
func (c *TechnicalQuoteController) ClientDecision(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.ClientDecisionDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.tqService.ClientDecision(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Решение принято", http.StatusOK)
}
