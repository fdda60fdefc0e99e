package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/internal/repositories"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/utils"
)

type TrackingServiceInterface interface {
	// AppendEvent дописывает событие в forward-only журнал контейнера.
	// Первая запись по номеру создаёт контейнер; повтор статуса -
	// DuplicateStatus, откат по рангу - OutOfOrder. Все проверки идут
	// в транзакции против заблокированной строки контейнера.
	AppendEvent(ctx context.Context, jobID uint64, data dto.AppendTrackingEventDTO) (*dto.TrackingEventDTO, error)
	ListByJob(ctx context.Context, jobID uint64) ([]dto.ContainerDTO, error)
}

type TrackingService struct {
	txManager     repositories.TxManagerInterface
	jobRepo       repositories.JobRepositoryInterface
	containerRepo repositories.ContainerRepositoryInterface
	gate          *authz.Gatekeeper
	audit         AuditServiceInterface
	logger        *zap.Logger
}

func NewTrackingService(
	txManager repositories.TxManagerInterface,
	jobRepo repositories.JobRepositoryInterface,
	containerRepo repositories.ContainerRepositoryInterface,
	gate *authz.Gatekeeper,
	audit AuditServiceInterface,
	logger *zap.Logger,
) TrackingServiceInterface {
	return &TrackingService{
		txManager:     txManager,
		jobRepo:       jobRepo,
		containerRepo: containerRepo,
		gate:          gate,
		audit:         audit,
		logger:        logger,
	}
}

func (s *TrackingService) AppendEvent(ctx context.Context, jobID uint64, data dto.AppendTrackingEventDTO) (*dto.TrackingEventDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.TrackingCreate) {
		return nil, apperrors.ErrPermissionDenied
	}

	rank, known := constants.ContainerStatusRank(data.Status)
	if !known {
		return nil, apperrors.NewValidationError("Неизвестный статус трекинга: %s", data.Status)
	}

	if _, err := s.jobRepo.FindByID(ctx, jobID); err != nil {
		return nil, err
	}

	eventDate := time.Now()
	if data.EventDate.Valid {
		eventDate = data.EventDate.Time
	}

	event := &entities.TrackingEvent{
		Status:     data.Status,
		StatusRank: rank,
		Location:   data.Location.Ptr(),
		Remark:     data.Remark.Ptr(),
		EventDate:  eventDate,
	}

	var containerID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		container, err := s.containerRepo.GetOrCreateForUpdateInTx(ctx, tx, jobID, data.ContainerNumber, data.SizeType)
		if err != nil {
			return err
		}
		containerID = container.ID

		exists, err := s.containerRepo.HasStatusInTx(ctx, tx, container.ID, data.Status)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrDuplicateStatus
		}

		last, err := s.containerRepo.FindLastEventInTx(ctx, tx, container.ID)
		if err != nil {
			return err
		}
		if last != nil && rank < last.StatusRank {
			return apperrors.ErrOutOfOrder
		}

		event.ContainerID = container.ID
		eventID, err := s.containerRepo.InsertEventInTx(ctx, tx, event)
		if err != nil {
			return err
		}
		event.ID = eventID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, constants.EntityTypeContainer, containerID, constants.AuditActionTrackingEvent,
		constants.ContainerStatusLabel(data.Status), actorID,
		map[string]interface{}{
			"job_id":           jobID,
			"container_number": data.ContainerNumber,
			"status":           data.Status,
		})

	return toTrackingEventDTO(event), nil
}

func (s *TrackingService) ListByJob(ctx context.Context, jobID uint64) ([]dto.ContainerDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.TrackingView) {
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.jobRepo.FindByID(ctx, jobID); err != nil {
		return nil, err
	}

	containers, eventsByContainer, err := s.containerRepo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ContainerDTO, 0, len(containers))
	for _, c := range containers {
		events := eventsByContainer[c.ID]
		eventDTOs := make([]dto.TrackingEventDTO, 0, len(events))
		for i := range events {
			eventDTOs = append(eventDTOs, *toTrackingEventDTO(&events[i]))
		}
		result = append(result, dto.ContainerDTO{
			Number:   c.Number,
			SizeType: c.SizeType,
			Events:   eventDTOs,
		})
	}
	return result, nil
}

func toTrackingEventDTO(e *entities.TrackingEvent) *dto.TrackingEventDTO {
	return &dto.TrackingEventDTO{
		Status:      e.Status,
		StatusLabel: constants.ContainerStatusLabel(e.Status),
		Location:    e.Location,
		Remark:      e.Remark,
		EventDate:   e.EventDate,
		CreatedAt:   e.CreatedAt,
	}
}
