package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/internal/repositories"
	"freight-system/pkg/config"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/utils"
)

type TechnicalQuoteServiceInterface interface {
	// CreateOrReplace создаёт техкотировку по котировке либо перезаписывает
	// существующую. Перезапись закрытой записи требует одноразового
	// одобрения; его расход и запись прайсинга - одна запись в БД.
	CreateOrReplace(ctx context.Context, data dto.CreateTechnicalQuoteDTO) (*dto.TechnicalQuoteDTO, error)
	FindTechnicalQuote(ctx context.Context, id uint64) (*dto.TechnicalQuoteDTO, error)
	// SendToClient сначала генерирует клиентский документ, затем меняет
	// статус. Повторная отправка уже отправленной котировки - Conflict.
	SendToClient(ctx context.Context, id uint64) (*dto.TechnicalQuoteDTO, error)
	// ClientDecision идемпотентна: повторный вызов после вынесенного
	// решения возвращает AlreadyProcessed, а не ошибку.
	ClientDecision(ctx context.Context, id uint64, data dto.ClientDecisionDTO) (*dto.ClientDecisionResultDTO, error)
}

type TechnicalQuoteService struct {
	txManager     repositories.TxManagerInterface
	quoteRepo     repositories.QuoteRepositoryInterface
	tqRepo        repositories.TechnicalQuoteRepositoryInterface
	referenceRepo repositories.ReferenceRepositoryInterface
	artifacts     ArtifactGeneratorInterface
	delivery      DeliveryServiceInterface
	gate          *authz.Gatekeeper
	audit         AuditServiceInterface
	quoteCfg      config.QuoteConfig
	logger        *zap.Logger
}

func NewTechnicalQuoteService(
	txManager repositories.TxManagerInterface,
	quoteRepo repositories.QuoteRepositoryInterface,
	tqRepo repositories.TechnicalQuoteRepositoryInterface,
	referenceRepo repositories.ReferenceRepositoryInterface,
	artifacts ArtifactGeneratorInterface,
	delivery DeliveryServiceInterface,
	gate *authz.Gatekeeper,
	audit AuditServiceInterface,
	quoteCfg config.QuoteConfig,
	logger *zap.Logger,
) TechnicalQuoteServiceInterface {
	return &TechnicalQuoteService{
		txManager:     txManager,
		quoteRepo:     quoteRepo,
		tqRepo:        tqRepo,
		referenceRepo: referenceRepo,
		artifacts:     artifacts,
		delivery:      delivery,
		gate:          gate,
		audit:         audit,
		quoteCfg:      quoteCfg,
		logger:        logger,
	}
}

// roundMoney округляет денежную сумму до двух знаков.
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// computePricing пересчитывает строки и итоги. Суммы на входе игнорируются:
// base = rate * quantity * fx, tax = base * percent/100 по каждой категории,
// total = base + tax. Общий итог - сумма total всех строк в референсной валюте.
func (s *TechnicalQuoteService) computePricing(ctx context.Context, items []dto.CreateLineItemDTO) ([]entities.LineItem, []entities.CurrencySummary, float64, error) {
	lineItems := make([]entities.LineItem, 0, len(items))
	perCurrency := make(map[string]float64)
	var grandTotal float64

	for _, item := range items {
		fx, err := s.referenceRepo.GetFxRate(ctx, item.Currency)
		if err != nil {
			return nil, nil, 0, err
		}

		base := roundMoney(item.UnitRate * item.Quantity * fx)
		var tax float64
		for _, percent := range item.TaxPercents {
			tax += base * percent / 100
		}
		tax = roundMoney(tax)
		total := roundMoney(base + tax)

		lineItems = append(lineItems, entities.LineItem{
			Category:     item.Category,
			Quantity:     item.Quantity,
			UnitRate:     item.UnitRate,
			Currency:     item.Currency,
			ExchangeRate: fx,
			TaxPercents:  item.TaxPercents,
			BaseAmount:   base,
			TaxAmount:    tax,
			TotalAmount:  total,
		})
		perCurrency[item.Currency] += total
		grandTotal += total
	}

	currencies := make([]string, 0, len(perCurrency))
	for currency := range perCurrency {
		currencies = append(currencies, currency)
	}
	sort.Strings(currencies)

	summary := make([]entities.CurrencySummary, 0, len(currencies))
	for _, currency := range currencies {
		summary = append(summary, entities.CurrencySummary{
			Currency: currency,
			Total:    roundMoney(perCurrency[currency]),
		})
	}
	return lineItems, summary, roundMoney(grandTotal), nil
}

func (s *TechnicalQuoteService) CreateOrReplace(ctx context.Context, data dto.CreateTechnicalQuoteDTO) (*dto.TechnicalQuoteDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.TechnicalQuotesCreate) {
		return nil, apperrors.ErrPermissionDenied
	}

	if _, err := s.quoteRepo.FindByID(ctx, data.QuoteID); err != nil {
		return nil, err
	}

	lineItems, summary, grandTotal, err := s.computePricing(ctx, data.LineItems)
	if err != nil {
		return nil, err
	}

	existing, err := s.tqRepo.FindByQuoteID(ctx, data.QuoteID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		return s.create(ctx, actorID, data.QuoteID, lineItems, summary, grandTotal)
	}
	return s.replace(ctx, actorID, perms, existing.ID, lineItems, summary, grandTotal)
}

func (s *TechnicalQuoteService) create(ctx context.Context, actorID, quoteID uint64, lineItems []entities.LineItem, summary []entities.CurrencySummary, grandTotal float64) (*dto.TechnicalQuoteDTO, error) {
	tq := &entities.TechnicalQuote{
		QuoteID:           quoteID,
		LineItems:         lineItems,
		Summary:           summary,
		GrandTotal:        grandTotal,
		ReferenceCurrency: s.quoteCfg.ReferenceCurrency,
		Status:            constants.TechnicalQuoteStatusDraft,
	}

	var id uint64
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		createdID, err := s.tqRepo.CreateInTx(ctx, tx, tq)
		if err != nil {
			return err
		}
		id = createdID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, constants.EntityTypeTechnicalQuote, id, constants.AuditActionCreate,
		"Создана техническая котировка", actorID,
		map[string]interface{}{"quote_id": quoteID, "grand_total": grandTotal})

	return s.FindTechnicalQuote(ctx, id)
}

func (s *TechnicalQuoteService) replace(ctx context.Context, actorID uint64, perms map[string]bool, id uint64, lineItems []entities.LineItem, summary []entities.CurrencySummary, grandTotal float64) (*dto.TechnicalQuoteDTO, error) {
	super := s.gate.IsSuperPrivileged(perms)
	consumed := false

	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		tq, err := s.tqRepo.FindForUpdateInTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if tq.IsLocked {
			return apperrors.ErrLocked
		}

		// Черновик правится свободно, всё прочее - закрыто: нужен
		// одноразовый грант либо суперпривилегия. Проверка и расход
		// идут против заблокированной строки.
		if tq.Status != constants.TechnicalQuoteStatusDraft && !super {
			if !tq.Grant.IsHeldBy(actorID) {
				return apperrors.NewEditApprovalRequiredError(constants.EntityTypeTechnicalQuote, id)
			}
			tq.Grant.Consume()
			consumed = true
		}

		tq.LineItems = lineItems
		tq.Summary = summary
		tq.GrandTotal = grandTotal
		tq.Status = constants.TechnicalQuoteStatusDraft
		return s.tqRepo.UpdatePricingInTx(ctx, tx, tq)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, constants.EntityTypeTechnicalQuote, id, constants.AuditActionUpdate,
		"Пересчитан прайсинг технической котировки", actorID,
		map[string]interface{}{"grand_total": grandTotal})
	if consumed {
		s.audit.Record(ctx, constants.EntityTypeTechnicalQuote, id, constants.AuditActionEditConsumed,
			"Израсходован одноразовый доступ на редактирование", actorID, nil)
	}

	return s.FindTechnicalQuote(ctx, id)
}

func (s *TechnicalQuoteService) FindTechnicalQuote(ctx context.Context, id uint64) (*dto.TechnicalQuoteDTO, error) {
	tq, err := s.tqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toTechnicalQuoteDTO(tq), nil
}

func (s *TechnicalQuoteService) SendToClient(ctx context.Context, id uint64) (*dto.TechnicalQuoteDTO, error) {
	actorID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	perms, err := utils.GetPermissionsMapFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	if !s.gate.Can(perms, authz.TechnicalQuotesSend) {
		return nil, apperrors.ErrPermissionDenied
	}

	tq, err := s.tqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch tq.Status {
	case constants.TechnicalQuoteStatusSentToClient:
		return nil, apperrors.ErrConflict
	case constants.TechnicalQuoteStatusClientApproved, constants.TechnicalQuoteStatusClientRejected:
		return nil, apperrors.ErrInvalidState
	}

	quote, err := s.quoteRepo.FindByID(ctx, tq.QuoteID)
	if err != nil {
		return nil, err
	}

	// Сначала документ, потом статус: если генерация упала, отправка
	// не состоялась и статус не изменился.
	artifact, err := s.artifacts.GenerateQuoteArtifact(ctx, quote, tq)
	if err != nil {
		return nil, fmt.Errorf("не удалось сгенерировать документ котировки: %w", err)
	}

	ok, err := s.tqRepo.UpdateStatusConditional(ctx, id, tq.Status, constants.TechnicalQuoteStatusSentToClient)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrConflict
	}

	if err := s.delivery.DeliverQuote(ctx, quote, artifact); err != nil {
		s.logger.Error("Не удалось доставить документ котировки клиенту",
			zap.Uint64("technicalQuoteId", id), zap.Error(err))
	}

	s.audit.Record(ctx, constants.EntityTypeTechnicalQuote, id, constants.AuditActionSentToClient,
		"Котировка отправлена клиенту", actorID, nil)

	return s.FindTechnicalQuote(ctx, id)
}

func (s *TechnicalQuoteService) ClientDecision(ctx context.Context, id uint64, data dto.ClientDecisionDTO) (*dto.ClientDecisionResultDTO, error) {
	tq, err := s.tqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if tq.Status == constants.TechnicalQuoteStatusClientApproved ||
		tq.Status == constants.TechnicalQuoteStatusClientRejected {
		if s.decisionLinkExpired(tq.DecidedAt) {
			return nil, apperrors.ErrNotFound
		}
		return &dto.ClientDecisionResultDTO{Status: tq.Status, AlreadyProcessed: true}, nil
	}
	if tq.Status != constants.TechnicalQuoteStatusSentToClient {
		return nil, apperrors.ErrInvalidState
	}

	target := constants.TechnicalQuoteStatusClientApproved
	if data.Decision == "reject" {
		target = constants.TechnicalQuoteStatusClientRejected
	}

	ok, err := s.tqRepo.SetClientDecisionConditional(ctx, id, target, data.Remarks.Ptr(), time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Решение успело зафиксироваться конкурентно - отвечаем по факту.
		fresh, err := s.tqRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if fresh.Status == constants.TechnicalQuoteStatusClientApproved ||
			fresh.Status == constants.TechnicalQuoteStatusClientRejected {
			return &dto.ClientDecisionResultDTO{Status: fresh.Status, AlreadyProcessed: true}, nil
		}
		return nil, apperrors.ErrInvalidState
	}

	s.propagateDecisionToQuote(ctx, tq.QuoteID, target)

	s.audit.Record(ctx, constants.EntityTypeTechnicalQuote, id, constants.AuditActionClientDecision,
		fmt.Sprintf("Решение клиента: %s", data.Decision), 0,
		map[string]interface{}{"decision": data.Decision, "remarks": data.Remarks.Ptr()})

	return &dto.ClientDecisionResultDTO{Status: target, AlreadyProcessed: false}, nil
}

func (s *TechnicalQuoteService) decisionLinkExpired(decidedAt *time.Time) bool {
	ttl := s.quoteCfg.DecisionLinkTTL
	return ttl > 0 && decidedAt != nil && time.Since(*decidedAt) > ttl
}

// propagateDecisionToQuote переводит родительскую котировку вслед за
// решением клиента. Best-effort: если котировка ушла из INDICATIVE_SENT,
// расхождение только логируется.
func (s *TechnicalQuoteService) propagateDecisionToQuote(ctx context.Context, quoteID uint64, tqStatus string) {
	target := constants.QuoteStatusApproved
	if tqStatus == constants.TechnicalQuoteStatusClientRejected {
		target = constants.QuoteStatusRejected
	}

	ok, err := s.quoteRepo.UpdateStatusConditional(ctx, quoteID, constants.QuoteStatusIndicativeSent, target)
	if err != nil {
		s.logger.Error("Не удалось обновить статус котировки по решению клиента",
			zap.Uint64("quoteId", quoteID), zap.Error(err))
		return
	}
	if !ok {
		s.logger.Warn("Котировка не в INDICATIVE_SENT при решении клиента",
			zap.Uint64("quoteId", quoteID), zap.String("target", target))
	}
}

func toTechnicalQuoteDTO(tq *entities.TechnicalQuote) *dto.TechnicalQuoteDTO {
	lineItems := make([]dto.LineItemDTO, 0, len(tq.LineItems))
	for _, item := range tq.LineItems {
		lineItems = append(lineItems, dto.LineItemDTO{
			Category:     item.Category,
			Quantity:     item.Quantity,
			UnitRate:     item.UnitRate,
			Currency:     item.Currency,
			ExchangeRate: item.ExchangeRate,
			TaxPercents:  item.TaxPercents,
			BaseAmount:   item.BaseAmount,
			TaxAmount:    item.TaxAmount,
			TotalAmount:  item.TotalAmount,
		})
	}

	summary := make([]dto.CurrencySummaryDTO, 0, len(tq.Summary))
	for _, s := range tq.Summary {
		summary = append(summary, dto.CurrencySummaryDTO{Currency: s.Currency, Total: s.Total})
	}

	return &dto.TechnicalQuoteDTO{
		ID:                tq.ID,
		QuoteID:           tq.QuoteID,
		LineItems:         lineItems,
		Summary:           summary,
		GrandTotal:        tq.GrandTotal,
		ReferenceCurrency: tq.ReferenceCurrency,
		Status:            tq.Status,
		DecisionRemarks:   tq.DecisionRemarks,
		IsLocked:          tq.IsLocked,
		Grant:             toGrantDTO(&tq.Grant),
		CreatedAt:         tq.CreatedAt,
		UpdatedAt:         tq.UpdatedAt,
	}
}

func toGrantDTO(g *entities.EditAccessGrant) dto.EditAccessGrantDTO {
	return dto.EditAccessGrantDTO{
		RequestedBy: g.RequestedBy,
		RequestedAt: g.RequestedAt,
		ApprovedBy:  g.ApprovedBy,
		ApprovedAt:  g.ApprovedAt,
		Used:        g.Used,
		Remarks:     g.Remarks,
	}
}
