package controllers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

type ReportController struct {
	reportService services.ReportServiceInterface
	logger        *zap.Logger
}

func NewReportController(reportService services.ReportServiceInterface, logger *zap.Logger) *ReportController {
	return &ReportController{reportService: reportService, logger: logger}
}

func (c *ReportController) DownloadTrackingReport(ctx echo.Context) error {
	jobID, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	file, filename, err := c.reportService.BuildTrackingReport(ctx.Request().Context(), jobID)
	if err != nil {
		c.logger.Error("Ошибка при сборке отчёта трекинга",
			zap.Uint64("jobId", jobID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().WriteHeader(http.StatusOK)
	return file.Write(ctx.Response().Writer)
}
