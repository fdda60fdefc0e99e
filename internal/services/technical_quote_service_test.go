package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/pkg/config"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
)

type failingArtifactGenerator struct{}

func (failingArtifactGenerator) GenerateQuoteArtifact(ctx context.Context, quote *entities.Quote, tq *entities.TechnicalQuote) ([]byte, error) {
	return nil, errors.New("рендерер недоступен")
}

type tqFixture struct {
	svc       TechnicalQuoteServiceInterface
	quoteRepo *fakeQuoteRepo
	tqRepo    *fakeTechnicalQuoteRepo
	audit     *fakeAuditService
}

func newTQFixture(t *testing.T, artifacts ArtifactGeneratorInterface, quoteCfg config.QuoteConfig) *tqFixture {
	t.Helper()
	quoteRepo := newFakeQuoteRepo()
	quoteRepo.add(entities.Quote{
		ID:         10,
		ClientName: "ООО Карго",
		Origin:     "CNSHA",
		Destination: "TJDYU",
		Mode:       constants.ModeSea,
		Direction:  constants.DirectionImport,
		Status:     constants.QuoteStatusIndicativeSent,
	})
	tqRepo := &fakeTechnicalQuoteRepo{}
	audit := &fakeAuditService{}
	if artifacts == nil {
		artifacts = NewMockArtifactGenerator(zap.NewNop())
	}
	if quoteCfg.ReferenceCurrency == "" {
		quoteCfg.ReferenceCurrency = "USD"
	}
	svc := NewTechnicalQuoteService(
		fakeTxManager{},
		quoteRepo,
		tqRepo,
		&fakeReferenceRepo{rates: map[string]float64{"USD": 1, "EUR": 1.1}},
		artifacts,
		NewMockDeliveryService(zap.NewNop()),
		authz.NewGatekeeper(),
		audit,
		quoteCfg,
		zap.NewNop(),
	)
	return &tqFixture{svc: svc, quoteRepo: quoteRepo, tqRepo: tqRepo, audit: audit}
}

func pricingPayload() dto.CreateTechnicalQuoteDTO {
	return dto.CreateTechnicalQuoteDTO{
		QuoteID: 10,
		LineItems: []dto.CreateLineItemDTO{
			{Category: "Freight", Quantity: 2, UnitRate: 100, Currency: "USD", TaxPercents: []float64{10}},
			{Category: "Handling", Quantity: 1, UnitRate: 100, Currency: "EUR"},
		},
	}
}

func TestCreateTechnicalQuotePricing(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate)

	res, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)

	require.Len(t, res.LineItems, 2)
	freight := res.LineItems[0]
	assert.Equal(t, 200.0, freight.BaseAmount)
	assert.Equal(t, 20.0, freight.TaxAmount)
	assert.Equal(t, 220.0, freight.TotalAmount)

	handling := res.LineItems[1]
	assert.Equal(t, 110.0, handling.BaseAmount)
	assert.Equal(t, 0.0, handling.TaxAmount)
	assert.Equal(t, 110.0, handling.TotalAmount)

	// Общий итог сходится с суммой строк.
	var sum float64
	for _, item := range res.LineItems {
		sum += item.TotalAmount
	}
	assert.Equal(t, sum, res.GrandTotal)
	assert.Equal(t, 330.0, res.GrandTotal)

	require.Len(t, res.Summary, 2)
	assert.Equal(t, "EUR", res.Summary[0].Currency)
	assert.Equal(t, 110.0, res.Summary[0].Total)
	assert.Equal(t, "USD", res.Summary[1].Currency)
	assert.Equal(t, 220.0, res.Summary[1].Total)

	assert.Equal(t, constants.TechnicalQuoteStatusDraft, res.Status)
	assert.Equal(t, "USD", res.ReferenceCurrency)
}

func TestCreateTechnicalQuoteUnknownCurrency(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	payload := pricingPayload()
	payload.LineItems[0].Currency = "XXX"

	_, err := f.svc.CreateOrReplace(newActorCtx(3, authz.TechnicalQuotesCreate), payload)
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}

func TestReplaceDraftIsFree(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)

	// Черновик перезаписывается без гранта.
	_, err = f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)
}

func TestReplaceAfterSendRequiresGrant(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)
	f.tqRepo.tq.Status = constants.TechnicalQuoteStatusSentToClient

	_, err = f.svc.CreateOrReplace(ctx, pricingPayload())
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, true, httpErr.Details["needs_approval"])
	assert.Equal(t, constants.EntityTypeTechnicalQuote, httpErr.Details["entity_type"])
}

func TestReplaceConsumesGrant(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate, authz.TechnicalQuotesSend)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)

	now := time.Now()
	actorID := uint64(3)
	f.tqRepo.tq.Status = constants.TechnicalQuoteStatusSentToClient
	f.tqRepo.tq.Grant = entities.EditAccessGrant{ApprovedBy: &actorID, ApprovedAt: &now}

	res, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)

	// Грант одноразовый: расходуется той же записью, что и прайсинг.
	assert.True(t, res.Grant.Used)
	assert.Nil(t, res.Grant.ApprovedBy)
	assert.Equal(t, constants.TechnicalQuoteStatusDraft, res.Status)

	// После повторной отправки запись снова закрыта: израсходованный
	// грант второй раз не работает.
	_, err = f.svc.SendToClient(ctx, 1)
	require.NoError(t, err)
	_, err = f.svc.CreateOrReplace(ctx, pricingPayload())
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestReplaceSuperuserBypassesGrant(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	staffCtx := newActorCtx(3, authz.TechnicalQuotesCreate)

	_, err := f.svc.CreateOrReplace(staffCtx, pricingPayload())
	require.NoError(t, err)
	f.tqRepo.tq.Status = constants.TechnicalQuoteStatusSentToClient

	superCtx := newActorCtx(9, authz.Superuser)
	res, err := f.svc.CreateOrReplace(superCtx, pricingPayload())
	require.NoError(t, err)
	assert.False(t, res.Grant.Used)
}

func TestSendToClient(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate, authz.TechnicalQuotesSend)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)

	res, err := f.svc.SendToClient(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, constants.TechnicalQuoteStatusSentToClient, res.Status)

	// Повторная отправка - конфликт.
	_, err = f.svc.SendToClient(ctx, 1)
	require.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSendToClientArtifactFailureKeepsStatus(t *testing.T) {
	f := newTQFixture(t, failingArtifactGenerator{}, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate, authz.TechnicalQuotesSend)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)

	_, err = f.svc.SendToClient(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, constants.TechnicalQuoteStatusDraft, f.tqRepo.tq.Status)
}

func TestClientDecisionIdempotent(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate, authz.TechnicalQuotesSend)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)
	_, err = f.svc.SendToClient(ctx, 1)
	require.NoError(t, err)

	res, err := f.svc.ClientDecision(context.Background(), 1, dto.ClientDecisionDTO{Decision: "approve"})
	require.NoError(t, err)
	assert.Equal(t, constants.TechnicalQuoteStatusClientApproved, res.Status)
	assert.False(t, res.AlreadyProcessed)

	// Родительская котировка следует за решением клиента.
	quote, err := f.quoteRepo.FindByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, constants.QuoteStatusApproved, quote.Status)

	// Повторный вызов по той же ссылке - не ошибка.
	res, err = f.svc.ClientDecision(context.Background(), 1, dto.ClientDecisionDTO{Decision: "approve"})
	require.NoError(t, err)
	assert.True(t, res.AlreadyProcessed)
	assert.Equal(t, constants.TechnicalQuoteStatusClientApproved, res.Status)
}

func TestClientDecisionRejectKeepsRemarks(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate, authz.TechnicalQuotesSend)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)
	_, err = f.svc.SendToClient(ctx, 1)
	require.NoError(t, err)

	res, err := f.svc.ClientDecision(context.Background(), 1, dto.ClientDecisionDTO{
		Decision: "reject",
		Remarks:  null.StringFrom("дорого"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.TechnicalQuoteStatusClientRejected, res.Status)
	require.NotNil(t, f.tqRepo.tq.DecisionRemarks)
	assert.Equal(t, "дорого", *f.tqRepo.tq.DecisionRemarks)
}

func TestClientDecisionBeforeSendIsInvalid(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)

	_, err = f.svc.ClientDecision(context.Background(), 1, dto.ClientDecisionDTO{Decision: "approve"})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestClientDecisionLinkExpires(t *testing.T) {
	f := newTQFixture(t, nil, config.QuoteConfig{DecisionLinkTTL: time.Minute})
	ctx := newActorCtx(3, authz.TechnicalQuotesCreate, authz.TechnicalQuotesSend)

	_, err := f.svc.CreateOrReplace(ctx, pricingPayload())
	require.NoError(t, err)
	_, err = f.svc.SendToClient(ctx, 1)
	require.NoError(t, err)

	_, err = f.svc.ClientDecision(context.Background(), 1, dto.ClientDecisionDTO{Decision: "approve"})
	require.NoError(t, err)

	// Состарим решение за пределы TTL ссылки.
	old := time.Now().Add(-2 * time.Minute)
	f.tqRepo.tq.DecidedAt = &old

	_, err = f.svc.ClientDecision(context.Background(), 1, dto.ClientDecisionDTO{Decision: "approve"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
