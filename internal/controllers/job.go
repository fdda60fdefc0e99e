package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"freight-system/internal/dto"
	"freight-system/internal/services"
	"freight-system/pkg/utils"
)

type JobController struct {
	jobService services.JobServiceInterface
	logger     *zap.Logger
}

func NewJobController(jobService services.JobServiceInterface, logger *zap.Logger) *JobController {
	return &JobController{jobService: jobService, logger: logger}
}

func (c *JobController) CreateJob(ctx echo.Context) error {
	var payload dto.CreateJobDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.jobService.CreateJob(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("Ошибка при создании джоба",
			zap.Uint64("technicalQuoteId", payload.TechnicalQuoteID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Джоб успешно создан", http.StatusCreated)
}

func (c *JobController) GetJobs(ctx echo.Context) error {
	limit, offset := parsePagination(ctx)
	res, totalCount, err := c.jobService.GetJobs(ctx.Request().Context(), limit, offset)
	if err != nil {
		c.logger.Error("Ошибка при получении списка джобов", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Джобы успешно получены", http.StatusOK, totalCount)
}

func (c *JobController) FindJob(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.jobService.FindJob(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Джоб найден", http.StatusOK)
}

func (c *JobController) InitiateJob(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.jobService.InitiateJob(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("Ошибка при запуске джоба", zap.Uint64("jobId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Джоб переведён в работу", http.StatusOK)
}

func (c *JobController) AdvanceStage(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.jobService.AdvanceStage(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("Ошибка при смене этапа джоба", zap.Uint64("jobId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Этап джоба изменён", http.StatusOK)
}

func (c *JobController) CompleteJob(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.jobService.CompleteJob(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("Ошибка при завершении джоба", zap.Uint64("jobId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Джоб завершён", http.StatusOK)
}

func (c *JobController) UpdateDocument(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.ConfirmDocumentDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, echo.NewHTTPError(http.StatusBadRequest, "Некорректное тело запроса"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	res, err := c.jobService.UpdateDocument(ctx.Request().Context(), id, payload)
	if err != nil {
		c.logger.Error("Ошибка при обновлении документа джоба",
			zap.Uint64("jobId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, res, "Документ обновлён", http.StatusOK)
}

func (c *JobController) DeleteJob(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.jobService.DeleteJob(ctx.Request().Context(), id); err != nil {
		c.logger.Error("Ошибка при удалении джоба", zap.Uint64("jobId", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, nil, "Джоб удалён", http.StatusOK)
}
