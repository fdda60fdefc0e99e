package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/internal/events"
	"freight-system/internal/repositories"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/eventbus"
	"freight-system/pkg/utils"
)

type AuditServiceInterface interface {
	// Record дописывает запись аудита. Отказ записи не фатален для
	// основного перехода: он логируется, вызывающий продолжает работу.
	Record(ctx context.Context, entityType string, entityID uint64, action, description string, performedBy uint64, metadata map[string]interface{})
	List(ctx context.Context, filter dto.AuditFilterDTO) ([]dto.AuditLogEntryDTO, error)
}

type AuditService struct {
	auditRepo repositories.AuditLogRepositoryInterface
	gate      *authz.Gatekeeper
	bus       *eventbus.Bus
	logger    *zap.Logger
}

func NewAuditService(
	auditRepo repositories.AuditLogRepositoryInterface,
	gate *authz.Gatekeeper,
	bus *eventbus.Bus,
	logger *zap.Logger,
) AuditServiceInterface {
	return &AuditService{auditRepo: auditRepo, gate: gate, bus: bus, logger: logger}
}

func (s *AuditService) Record(ctx context.Context, entityType string, entityID uint64, action, description string, performedBy uint64, metadata map[string]interface{}) {
	entry := &entities.AuditLogEntry{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		PerformedBy: performedBy,
		Metadata:    metadata,
		CreatedAt:   time.Now(),
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		// Полнота аудита - вторичная гарантия: переход уже состоялся,
		// поэтому поверхность отказа - лог, а не откат.
		s.logger.Error("Не удалось записать аудит",
			zap.String("entityType", entityType),
			zap.Uint64("entityId", entityID),
			zap.String("action", action),
			zap.Error(err),
		)
		return
	}

	s.bus.Publish(ctx, events.AuditRecordedEvent{Entry: *entry})
}

func (s *AuditService) List(ctx context.Context, filter dto.AuditFilterDTO) ([]dto.AuditLogEntryDTO, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.AuditView) {
		return nil, apperrors.ErrPermissionDenied
	}

	entries, err := s.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AuditLogEntryDTO, 0, len(entries))
	for _, e := range entries {
		result = append(result, dto.AuditLogEntryDTO{
			ID:          e.ID,
			EntityType:  e.EntityType,
			EntityID:    e.EntityID,
			Action:      e.Action,
			Description: e.Description,
			PerformedBy: e.PerformedBy,
			Metadata:    e.Metadata,
			CreatedAt:   e.CreatedAt,
		})
	}
	return result, nil
}
