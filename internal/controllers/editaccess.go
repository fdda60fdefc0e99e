package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/dto"
	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

// EditAccessController обслуживает протокол одноразового доступа для всех
// поддерживающих его сущностей: тип берётся из пути (:entityType).
type EditAccessController struct {
	editService services.EditAccessServiceInterface
	logger      *zap.Logger
}

func NewEditAccessController(editService services.EditAccessServiceInterface, logger *zap.Logger) *EditAccessController {
	return &EditAccessController{editService: editService, logger: logger}
}

func (c *EditAccessController) RequestEdit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	entityType := ctx.Param("entityType")

	var payload dto.RequestEditDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.editService.RequestEdit(ctx.Request().Context(), entityType, id, payload); err != nil {
		c.logger.Error("Ошибка при запросе доступа на редактирование",
			zap.String("entityType", entityType), zap.Uint64("entityId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Запрос на редактирование принят", http.StatusOK)
}

func (c *EditAccessController) ApproveEdit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	entityType := ctx.Param("entityType")

	if err := c.editService.ApproveEdit(ctx.Request().Context(), entityType, id); err != nil {
		c.logger.Error("Ошибка при одобрении доступа на редактирование",
			zap.String("entityType", entityType), zap.Uint64("entityId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Доступ на редактирование одобрен", http.StatusOK)
}
