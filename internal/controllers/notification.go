package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

type NotificationController struct {
	notificationService services.NotificationServiceInterface
	logger              *zap.Logger
}

func NewNotificationController(notificationService services.NotificationServiceInterface, logger *zap.Logger) *NotificationController {
	return &NotificationController{notificationService: notificationService, logger: logger}
}

func (c *NotificationController) GetFeed(ctx echo.Context) error {
	res, err := c.notificationService.GetFeed(ctx.Request().Context())
	if err != nil {
		c.logger.Error("Ошибка при получении ленты уведомлений", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Уведомления получены", http.StatusOK)
}

func (c *NotificationController) MarkRead(ctx echo.Context) error {
	notificationID := ctx.Param("id")
	if notificationID == "" {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Invalid ID"))
	}

	if err := c.notificationService.MarkRead(ctx.Request().Context(), notificationID); err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Уведомление отмечено прочитанным", http.StatusOK)
}
