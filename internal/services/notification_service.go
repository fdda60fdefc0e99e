package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/internal/repositories"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/utils"
)

type NotificationServiceInterface interface {
	// NotifyEditRequested рассылает уведомление всем актёрам, способным
	// одобрить запрос на одноразовое редактирование.
	NotifyEditRequested(ctx context.Context, subjectKind string, subjectID uint64, requesterID uint64, remarks string) error
	// NotifyEditApproved закрывает PENDING-уведомления по сущности и
	// уведомляет заявителя о выданном одобрении.
	NotifyEditApproved(ctx context.Context, subjectKind string, subjectID uint64, requesterID uint64) error
	// MarkRead идемпотентна: повторная отметка того же уведомления тем же
	// актёром возвращает успех без изменений.
	MarkRead(ctx context.Context, notificationID string) error
	GetFeed(ctx context.Context) (*dto.NotificationFeedDTO, error)
}

type NotificationService struct {
	notificationRepo repositories.NotificationRepositoryInterface
	userRepo         repositories.UserRepositoryInterface
	gate             *authz.Gatekeeper
	logger           *zap.Logger
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	gate *authz.Gatekeeper,
	logger *zap.Logger,
) NotificationServiceInterface {
	return &NotificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		gate:             gate,
		logger:           logger,
	}
}

func (s *NotificationService) NotifyEditRequested(ctx context.Context, subjectKind string, subjectID uint64, requesterID uint64, remarks string) error {
	// Получатели - все, кто может одобрить: суперпользователи и актёры
	// с правом обхода блокировки.
	recipients, err := s.userRepo.FindIDsWithAnyPermission(ctx, []string{authz.Superuser, authz.BypassEditLock, authz.EditRequestsApprove})
	if err != nil {
		return fmt.Errorf("не удалось определить получателей уведомления: %w", err)
	}
	if len(recipients) == 0 {
		s.logger.Warn("Запрос на редактирование без получателей уведомления",
			zap.String("subjectKind", subjectKind),
			zap.Uint64("subjectId", subjectID))
		return nil
	}

	n := &entities.Notification{
		ID:          uuid.New().String(),
		Type:        constants.NotificationTypeEditRequested,
		Subject:     entities.SubjectRef{Kind: subjectKind, ID: subjectID},
		RequesterID: requesterID,
		Message:     fmt.Sprintf("Запрошен одноразовый доступ на редактирование (%s #%d): %s", subjectKind, subjectID, remarks),
		Recipients:  recipients,
		Status:      constants.NotificationStatusPending,
	}
	return s.notificationRepo.Create(ctx, n)
}

func (s *NotificationService) NotifyEditApproved(ctx context.Context, subjectKind string, subjectID uint64, requesterID uint64) error {
	if err := s.notificationRepo.MarkStatusBySubject(ctx, subjectKind, subjectID,
		constants.NotificationTypeEditRequested, constants.NotificationStatusApproved); err != nil {
		return err
	}

	n := &entities.Notification{
		ID:          uuid.New().String(),
		Type:        constants.NotificationTypeEditApproved,
		Subject:     entities.SubjectRef{Kind: subjectKind, ID: subjectID},
		RequesterID: requesterID,
		Message:     fmt.Sprintf("Одобрен одноразовый доступ на редактирование (%s #%d)", subjectKind, subjectID),
		Recipients:  []uint64{requesterID},
		Status:      constants.NotificationStatusApproved,
	}
	return s.notificationRepo.Create(ctx, n)
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return err
	}

	exists, err := s.notificationRepo.Exists(ctx, notificationID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.ErrNotFound
	}

	return s.notificationRepo.InsertReadReceipt(ctx, notificationID, actorID)
}

func (s *NotificationService) GetFeed(ctx context.Context) (*dto.NotificationFeedDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.NotificationsView) {
		return nil, apperrors.ErrPermissionDenied
	}

	list, err := s.notificationRepo.ListByRecipient(ctx, actorID)
	if err != nil {
		return nil, err
	}
	unread, err := s.notificationRepo.UnreadCount(ctx, actorID)
	if err != nil {
		return nil, err
	}

	feed := &dto.NotificationFeedDTO{List: make([]dto.NotificationDTO, 0, len(list)), UnreadCount: unread}
	for i := range list {
		n := &list[i]
		feed.List = append(feed.List, dto.NotificationDTO{
			ID:          n.ID,
			Type:        n.Type,
			Subject:     dto.SubjectRefDTO{Kind: n.Subject.Kind, ID: n.Subject.ID},
			RequesterID: n.RequesterID,
			Message:     n.Message,
			Status:      n.Status,
			IsRead:      n.IsReadBy(actorID),
			CreatedAt:   n.CreatedAt,
		})
	}
	return feed, nil
}
