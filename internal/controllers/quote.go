package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/dto"
	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

type QuoteController struct {
	quoteService services.QuoteServiceInterface
	logger       *zap.Logger
}

func NewQuoteController(quoteService services.QuoteServiceInterface, logger *zap.Logger) *QuoteController {
	return &QuoteController{quoteService: quoteService, logger: logger}
}

func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID")
	}
	return id, nil
}

func parsePagination(ctx echo.Context) (uint64, uint64) {
	limit, _ := strconv.ParseUint(ctx.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseUint(ctx.QueryParam("offset"), 10, 64)
	return limit, offset
}

func (c *QuoteController) CreateQuote(ctx echo.Context) error {
	var payload dto.CreateQuoteDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.quoteService.CreateQuote(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("Ошибка при создании котировки", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Котировка успешно создана", http.StatusCreated)
}

func (c *QuoteController) GetQuotes(ctx echo.Context) error {
	limit, offset := parsePagination(ctx)
	res, totalCount, err := c.quoteService.GetQuotes(ctx.Request().Context(), limit, offset)
	if err != nil {
		c.logger.Error("Ошибка при получении списка котировок", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Котировки успешно получены", http.StatusOK, totalCount)
}

func (c *QuoteController) FindQuote(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.quoteService.FindQuote(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Котировка найдена", http.StatusOK)
}

func (c *QuoteController) TransitionQuote(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.TransitionQuoteDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.quoteService.TransitionQuote(ctx.Request().Context(), id, payload)
	if err != nil {
		c.logger.Error("Ошибка при переходе статуса котировки",
			zap.Uint64("quoteId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Статус котировки изменён", http.StatusOK)
}
