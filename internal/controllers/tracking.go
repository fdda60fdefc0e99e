package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/dto"
	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

type TrackingController struct {
	trackingService services.TrackingServiceInterface
	logger          *zap.Logger
}

func NewTrackingController(trackingService services.TrackingServiceInterface, logger *zap.Logger) *TrackingController {
	return &TrackingController{trackingService: trackingService, logger: logger}
}

func (c *TrackingController) AppendEvent(ctx echo.Context) error {
	jobID, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.AppendTrackingEventDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.trackingService.AppendEvent(ctx.Request().Context(), jobID, payload)
	if err != nil {
		c.logger.Error("Ошибка при записи события трекинга",
			zap.Uint64("jobId", jobID),
			zap.String("container", payload.ContainerNumber),
			zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Событие трекинга записано", http.StatusCreated)
}

func (c *TrackingController) ListByJob(ctx echo.Context) error {
	jobID, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.trackingService.ListByJob(ctx.Request().Context(), jobID)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "История трекинга получена", http.StatusOK)
}
