package services

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
)

func newQuoteFixture(t *testing.T) (QuoteServiceInterface, *fakeQuoteRepo, *fakeAuditService) {
	t.Helper()
	quoteRepo := newFakeQuoteRepo()
	audit := &fakeAuditService{}
	svc := NewQuoteService(
		quoteRepo,
		&fakeReferenceRepo{rates: map[string]float64{"USD": 1}},
		authz.NewGatekeeper(),
		audit,
		zap.NewNop(),
	)
	return svc, quoteRepo, audit
}

func TestCreateQuote(t *testing.T) {
	svc, _, audit := newQuoteFixture(t)
	ctx := newActorCtx(3, authz.QuotesCreate)

	res, err := svc.CreateQuote(ctx, dto.CreateQuoteDTO{
		ClientName:    "ООО Карго",
		Origin:        "CNSHA",
		Destination:   "TJDYU",
		Mode:          constants.ModeSea,
		Direction:     constants.DirectionImport,
		ContainerType: "40HC",
		GoodsDesc:     null.StringFrom("бытовая техника"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.QuoteStatusPending, res.Status)
	assert.Equal(t, []string{constants.AuditActionCreate}, audit.actions())
}

func TestTransitionQuoteAllowedPath(t *testing.T) {
	svc, quoteRepo, _ := newQuoteFixture(t)
	quoteRepo.add(entities.Quote{ID: 1, Status: constants.QuoteStatusPending})
	ctx := newActorCtx(3, authz.QuotesTransition)

	res, err := svc.TransitionQuote(ctx, 1, dto.TransitionQuoteDTO{TargetStatus: constants.QuoteStatusReviewing})
	require.NoError(t, err)
	assert.Equal(t, constants.QuoteStatusReviewing, res.Status)

	res, err = svc.TransitionQuote(ctx, 1, dto.TransitionQuoteDTO{TargetStatus: constants.QuoteStatusIndicativeSent})
	require.NoError(t, err)
	assert.Equal(t, constants.QuoteStatusIndicativeSent, res.Status)
}

func TestTransitionQuoteRejectsJump(t *testing.T) {
	svc, quoteRepo, _ := newQuoteFixture(t)
	quoteRepo.add(entities.Quote{ID: 1, Status: constants.QuoteStatusPending})
	ctx := newActorCtx(3, authz.QuotesTransition)

	// PENDING -> APPROVED минует обязательные шаги.
	_, err := svc.TransitionQuote(ctx, 1, dto.TransitionQuoteDTO{TargetStatus: constants.QuoteStatusApproved})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestTransitionQuoteTerminalState(t *testing.T) {
	svc, quoteRepo, _ := newQuoteFixture(t)
	quoteRepo.add(entities.Quote{ID: 1, Status: constants.QuoteStatusRejected})
	ctx := newActorCtx(3, authz.QuotesTransition)

	_, err := svc.TransitionQuote(ctx, 1, dto.TransitionQuoteDTO{TargetStatus: constants.QuoteStatusReviewing})
	require.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestTransitionQuoteUnknownStatus(t *testing.T) {
	svc, quoteRepo, _ := newQuoteFixture(t)
	quoteRepo.add(entities.Quote{ID: 1, Status: constants.QuoteStatusPending})
	ctx := newActorCtx(3, authz.QuotesTransition)

	_, err := svc.TransitionQuote(ctx, 1, dto.TransitionQuoteDTO{TargetStatus: "ARCHIVED"})
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}

func TestTransitionQuoteNotFound(t *testing.T) {
	svc, _, _ := newQuoteFixture(t)
	ctx := newActorCtx(3, authz.QuotesTransition)

	_, err := svc.TransitionQuote(ctx, 404, dto.TransitionQuoteDTO{TargetStatus: constants.QuoteStatusReviewing})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestTransitionQuoteRequiresPermission(t *testing.T) {
	svc, quoteRepo, _ := newQuoteFixture(t)
	quoteRepo.add(entities.Quote{ID: 1, Status: constants.QuoteStatusPending})

	_, err := svc.TransitionQuote(newActorCtx(3, authz.QuotesView), 1,
		dto.TransitionQuoteDTO{TargetStatus: constants.QuoteStatusReviewing})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
