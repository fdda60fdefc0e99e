package services

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/repositories"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/utils"
)

type ReportServiceInterface interface {
	// BuildTrackingReport собирает Excel-отчёт по истории трекинга джоба:
	// лист на джоб, строка на событие.
	BuildTrackingReport(ctx context.Context, jobID uint64) (*excelize.File, string, error)
}

type ReportService struct {
	jobRepo       repositories.JobRepositoryInterface
	containerRepo repositories.ContainerRepositoryInterface
	gate          *authz.Gatekeeper
	logger        *zap.Logger
}

func NewReportService(
	jobRepo repositories.JobRepositoryInterface,
	containerRepo repositories.ContainerRepositoryInterface,
	gate *authz.Gatekeeper,
	logger *zap.Logger,
) ReportServiceInterface {
	return &ReportService{
		jobRepo:       jobRepo,
		containerRepo: containerRepo,
		gate:          gate,
		logger:        logger,
	}
}

const trackingSheet = "Tracking"

func (s *ReportService) BuildTrackingReport(ctx context.Context, jobID uint64) (*excelize.File, string, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, "", err
	}
	if !s.gate.Can(perms, authz.ReportsView) {
		return nil, "", apperrors.ErrPermissionDenied
	}

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, "", err
	}
	containers, eventsByContainer, err := s.containerRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", trackingSheet)

	headers := []string{"Container", "Size/Type", "Status", "Location", "Remark", "Event Date"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(trackingSheet, cell, header); err != nil {
			return nil, "", err
		}
	}

	row := 2
	for _, c := range containers {
		for _, e := range eventsByContainer[c.ID] {
			values := []interface{}{
				c.Number,
				c.SizeType,
				constants.ContainerStatusLabel(e.Status),
				deref(e.Location),
				deref(e.Remark),
				e.EventDate.Format("2006-01-02 15:04"),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				if err := f.SetCellValue(trackingSheet, cell, v); err != nil {
					return nil, "", err
				}
			}
			row++
		}
	}

	filename := fmt.Sprintf("tracking_%s.xlsx", job.Number)
	return f, filename, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
