package services

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/events"
	"freight-system/internal/repositories"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/eventbus"
	"freight-system/pkg/utils"
)

// EditAccessServiceInterface - протокол одноразового доступа на
// редактирование. Один и тот же цикл запрос -> одобрение -> расход
// обслуживает и техкотировки, и джобы.
type EditAccessServiceInterface interface {
	RequestEdit(ctx context.Context, entityType string, entityID uint64, data dto.RequestEditDTO) error
	// ApproveEdit выдаёт одобрение на имя заявителя, а не одобряющего:
	// редактировать сможет только тот, кто просил.
	ApproveEdit(ctx context.Context, entityType string, entityID uint64) error
}

type EditAccessService struct {
	txManager     repositories.TxManagerInterface
	stores        map[string]GrantStore
	gate          *authz.Gatekeeper
	notifications NotificationServiceInterface
	audit         AuditServiceInterface
	bus           *eventbus.Bus
	logger        *zap.Logger
}

func NewEditAccessService(
	txManager repositories.TxManagerInterface,
	stores map[string]GrantStore,
	gate *authz.Gatekeeper,
	notifications NotificationServiceInterface,
	audit AuditServiceInterface,
	bus *eventbus.Bus,
	logger *zap.Logger,
) EditAccessServiceInterface {
	return &EditAccessService{
		txManager:     txManager,
		stores:        stores,
		gate:          gate,
		notifications: notifications,
		audit:         audit,
		bus:           bus,
		logger:        logger,
	}
}

func (s *EditAccessService) storeFor(entityType string) (GrantStore, error) {
	store, ok := s.stores[entityType]
	if !ok {
		return nil, apperrors.NewValidationError("Тип сущности не поддерживает протокол редактирования: %s", entityType)
	}
	return store, nil
}

func (s *EditAccessService) RequestEdit(ctx context.Context, entityType string, entityID uint64, data dto.RequestEditDTO) error {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return err
	}
	if !s.gate.Can(perms, authz.EditRequestsCreate) {
		return apperrors.ErrPermissionDenied
	}

	remarks := strings.TrimSpace(data.Remarks)
	if remarks == "" {
		return apperrors.NewValidationError("Обоснование запроса на редактирование обязательно")
	}

	store, err := s.storeFor(entityType)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		grant, isLocked, err := store.LoadForUpdateInTx(ctx, tx, entityID)
		if err != nil {
			return err
		}
		if isLocked {
			return apperrors.ErrLocked
		}
		// Не более одного незакрытого запроса и не более одного
		// неизрасходованного одобрения на сущность.
		if grant.HasOutstandingRequest() || grant.HasUnusedApproval() {
			return apperrors.ErrConflict
		}

		now := time.Now()
		grant.RequestedBy = &actorID
		grant.RequestedAt = &now
		grant.Remarks = &remarks
		grant.Used = false
		return store.SaveGrantInTx(ctx, tx, entityID, grant)
	})
	if err != nil {
		return err
	}

	if err := s.notifications.NotifyEditRequested(ctx, entityType, entityID, actorID, remarks); err != nil {
		s.logger.Error("Не удалось создать уведомление о запросе редактирования",
			zap.String("entityType", entityType),
			zap.Uint64("entityId", entityID),
			zap.Error(err))
	}

	s.audit.Record(ctx, entityType, entityID, constants.AuditActionEditRequested,
		"Запрошен одноразовый доступ на редактирование", actorID,
		map[string]interface{}{"remarks": remarks})

	s.bus.Publish(ctx, events.EditRequestedEvent{
		EntityType:  entityType,
		EntityID:    entityID,
		RequesterID: actorID,
		Remarks:     remarks,
	})
	return nil
}

func (s *EditAccessService) ApproveEdit(ctx context.Context, entityType string, entityID uint64) error {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return err
	}
	// Одобрение доступно только суперпривилегированным актёрам либо
	// актёрам с явной способностью одобрять.
	if !s.gate.IsSuperPrivileged(perms) && !s.gate.Can(perms, authz.EditRequestsApprove) {
		return apperrors.ErrPermissionDenied
	}

	store, err := s.storeFor(entityType)
	if err != nil {
		return err
	}

	var requesterID uint64
	err = s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		grant, isLocked, err := store.LoadForUpdateInTx(ctx, tx, entityID)
		if err != nil {
			return err
		}
		if isLocked {
			return apperrors.ErrLocked
		}
		if !grant.HasOutstandingRequest() {
			return apperrors.ErrNotFound
		}
		if grant.HasUnusedApproval() {
			return apperrors.ErrConflict
		}

		requesterID = *grant.RequestedBy
		now := time.Now()
		grant.ApprovedBy = &requesterID
		grant.ApprovedAt = &now
		grant.RequestedBy = nil
		grant.RequestedAt = nil
		grant.Used = false
		return store.SaveGrantInTx(ctx, tx, entityID, grant)
	})
	if err != nil {
		return err
	}

	if err := s.notifications.NotifyEditApproved(ctx, entityType, entityID, requesterID); err != nil {
		s.logger.Error("Не удалось создать уведомление об одобрении редактирования",
			zap.String("entityType", entityType),
			zap.Uint64("entityId", entityID),
			zap.Error(err))
	}

	s.audit.Record(ctx, entityType, entityID, constants.AuditActionEditApproved,
		"Одобрен одноразовый доступ на редактирование", actorID,
		map[string]interface{}{"requester_id": requesterID})

	s.bus.Publish(ctx, events.EditApprovedEvent{
		EntityType:  entityType,
		EntityID:    entityID,
		RequesterID: requesterID,
		ApproverID:  actorID,
	})
	return nil
}
