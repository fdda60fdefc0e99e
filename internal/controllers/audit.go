package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/dto"
	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

type AuditController struct {
	auditService services.AuditServiceInterface
	logger       *zap.Logger
}

func NewAuditController(auditService services.AuditServiceInterface, logger *zap.Logger) *AuditController {
	return &AuditController{auditService: auditService, logger: logger}
}

func (c *AuditController) List(ctx echo.Context) error {
	filter := dto.AuditFilterDTO{
		EntityType: ctx.QueryParam("entity_type"),
	}
	if v := ctx.QueryParam("entity_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректный entity_id"))
		}
		filter.EntityID = id
	}
	if v := ctx.QueryParam("performed_by"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректный performed_by"))
		}
		filter.PerformedBy = id
	}
	if v := ctx.QueryParam("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректная дата from"))
		}
		filter.From = &t
	}
	if v := ctx.QueryParam("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректная дата to"))
		}
		filter.To = &t
	}

	res, err := c.auditService.List(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("Ошибка при чтении аудита", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Записи аудита получены", http.StatusOK)
}
