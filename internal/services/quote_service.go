package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/internal/repositories"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/utils"
)

type QuoteServiceInterface interface {
	CreateQuote(ctx context.Context, data dto.CreateQuoteDTO) (*dto.QuoteDTO, error)
	FindQuote(ctx context.Context, id uint64) (*dto.QuoteDTO, error)
	GetQuotes(ctx context.Context, limit, offset uint64) ([]dto.QuoteDTO, uint64, error)
	// TransitionQuote переводит котировку по карте допустимых переходов.
	// Предусловие проверяется условным UPDATE: при гонке двух переходов
	// выигрывает ровно один.
	TransitionQuote(ctx context.Context, id uint64, data dto.TransitionQuoteDTO) (*dto.QuoteDTO, error)
}

type QuoteService struct {
	quoteRepo     repositories.QuoteRepositoryInterface
	referenceRepo repositories.ReferenceRepositoryInterface
	gate          *authz.Gatekeeper
	audit         AuditServiceInterface
	logger        *zap.Logger
}

func NewQuoteService(
	quoteRepo repositories.QuoteRepositoryInterface,
	referenceRepo repositories.ReferenceRepositoryInterface,
	gate *authz.Gatekeeper,
	audit AuditServiceInterface,
	logger *zap.Logger,
) QuoteServiceInterface {
	return &QuoteService{
		quoteRepo:     quoteRepo,
		referenceRepo: referenceRepo,
		gate:          gate,
		audit:         audit,
		logger:        logger,
	}
}

var knownQuoteStatuses = map[string]bool{
	constants.QuoteStatusPending:        true,
	constants.QuoteStatusReviewing:      true,
	constants.QuoteStatusIndicativeSent: true,
	constants.QuoteStatusApproved:       true,
	constants.QuoteStatusRejected:       true,
}

func (s *QuoteService) CreateQuote(ctx context.Context, data dto.CreateQuoteDTO) (*dto.QuoteDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.QuotesCreate) {
		return nil, apperrors.ErrPermissionDenied
	}

	id, err := s.quoteRepo.Create(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать котировку: %w", err)
	}

	s.audit.Record(ctx, constants.EntityTypeQuote, id, constants.AuditActionCreate,
		fmt.Sprintf("Создана котировка для клиента %s", data.ClientName), actorID, nil)

	return s.FindQuote(ctx, id)
}

func (s *QuoteService) FindQuote(ctx context.Context, id uint64) (*dto.QuoteDTO, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toDTO(ctx, quote), nil
}

func (s *QuoteService) GetQuotes(ctx context.Context, limit, offset uint64) ([]dto.QuoteDTO, uint64, error) {
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, 0, err
	}
	if !s.gate.Can(perms, authz.QuotesView) {
		return nil, 0, apperrors.ErrPermissionDenied
	}

	if limit == 0 || limit > 100 {
		limit = 20
	}
	quotes, total, err := s.quoteRepo.GetQuotes(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.QuoteDTO, 0, len(quotes))
	for i := range quotes {
		result = append(result, *s.toDTO(ctx, &quotes[i]))
	}
	return result, total, nil
}

func (s *QuoteService) TransitionQuote(ctx context.Context, id uint64, data dto.TransitionQuoteDTO) (*dto.QuoteDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.QuotesTransition) {
		return nil, apperrors.ErrPermissionDenied
	}

	target := data.TargetStatus
	if !knownQuoteStatuses[target] {
		return nil, apperrors.NewValidationError("Неизвестный статус котировки: %s", target)
	}

	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !constants.IsQuoteTransitionAllowed(quote.Status, target) {
		return nil, apperrors.NewInvalidTransitionError(quote.Status, target)
	}

	ok, err := s.quoteRepo.UpdateStatusConditional(ctx, id, quote.Status, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Статус изменился между чтением и записью: перечитываем и
		// отвечаем по актуальному состоянию.
		fresh, err := s.quoteRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, apperrors.NewInvalidTransitionError(fresh.Status, target)
	}

	s.audit.Record(ctx, constants.EntityTypeQuote, id, constants.AuditActionStatusChange,
		fmt.Sprintf("Статус котировки: %s -> %s", quote.Status, target), actorID,
		map[string]interface{}{"from": quote.Status, "to": target})

	return s.FindQuote(ctx, id)
}

func (s *QuoteService) toDTO(ctx context.Context, q *entities.Quote) *dto.QuoteDTO {
	result := &dto.QuoteDTO{
		ID:            q.ID,
		ClientName:    q.ClientName,
		Origin:        q.Origin,
		Destination:   q.Destination,
		Mode:          q.Mode,
		Direction:     q.Direction,
		ContainerType: q.ContainerType,
		GoodsDesc:     q.GoodsDesc,
		Status:        q.Status,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}

	// Имена локаций - обогащение для чтения, их отсутствие не ошибка.
	if name, err := s.referenceRepo.GetLocationName(ctx, q.Origin); err == nil {
		result.OriginName = name
	}
	if name, err := s.referenceRepo.GetLocationName(ctx, q.Destination); err == nil {
		result.DestName = name
	}
	return result
}
