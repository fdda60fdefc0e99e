package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
	"freight-system/pkg/eventbus"
)

func newEditAccessFixture(tqRepo *fakeTechnicalQuoteRepo, jobRepo *fakeJobRepo) (EditAccessServiceInterface, *fakeNotificationService, *fakeAuditService) {
	notifications := &fakeNotificationService{}
	audit := &fakeAuditService{}
	svc := NewEditAccessService(
		fakeTxManager{},
		NewGrantStores(tqRepo, jobRepo),
		authz.NewGatekeeper(),
		notifications,
		audit,
		eventbus.New(zap.NewNop()),
		zap.NewNop(),
	)
	return svc, notifications, audit
}

func sentTechnicalQuote() *fakeTechnicalQuoteRepo {
	return &fakeTechnicalQuoteRepo{tq: &entities.TechnicalQuote{
		ID:      1,
		QuoteID: 10,
		Status:  constants.TechnicalQuoteStatusSentToClient,
	}}
}

func TestEditAccessLifecycle(t *testing.T) {
	tqRepo := sentTechnicalQuote()
	svc, notifications, audit := newEditAccessFixture(tqRepo, &fakeJobRepo{})

	requesterCtx := newActorCtx(5, authz.EditRequestsCreate)
	approverCtx := newActorCtx(9, authz.EditRequestsApprove)

	// Запрос принимается и уведомляет одобряющих.
	err := svc.RequestEdit(requesterCtx, constants.EntityTypeTechnicalQuote, 1, dto.RequestEditDTO{Remarks: "исправить ставку фрахта"})
	require.NoError(t, err)
	require.NotNil(t, tqRepo.tq.Grant.RequestedBy)
	assert.Equal(t, uint64(5), *tqRepo.tq.Grant.RequestedBy)
	assert.Equal(t, 1, notifications.requested)

	// Второй запрос при незакрытом первом - конфликт.
	err = svc.RequestEdit(requesterCtx, constants.EntityTypeTechnicalQuote, 1, dto.RequestEditDTO{Remarks: "ещё раз"})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	// Одобрение выписывается на заявителя, а не на одобряющего.
	err = svc.ApproveEdit(approverCtx, constants.EntityTypeTechnicalQuote, 1)
	require.NoError(t, err)
	require.NotNil(t, tqRepo.tq.Grant.ApprovedBy)
	assert.Equal(t, uint64(5), *tqRepo.tq.Grant.ApprovedBy)
	assert.Nil(t, tqRepo.tq.Grant.RequestedBy)
	assert.False(t, tqRepo.tq.Grant.Used)
	assert.Equal(t, 1, notifications.approved)

	// Повторное одобрение без нового запроса - NotFound.
	err = svc.ApproveEdit(approverCtx, constants.EntityTypeTechnicalQuote, 1)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	// Новый запрос при неизрасходованном одобрении - конфликт.
	err = svc.RequestEdit(requesterCtx, constants.EntityTypeTechnicalQuote, 1, dto.RequestEditDTO{Remarks: "снова"})
	require.ErrorIs(t, err, apperrors.ErrConflict)

	assert.Equal(t, []string{constants.AuditActionEditRequested, constants.AuditActionEditApproved}, audit.actions())
}

func TestRequestEditRequiresPermission(t *testing.T) {
	svc, _, _ := newEditAccessFixture(sentTechnicalQuote(), &fakeJobRepo{})

	err := svc.RequestEdit(newActorCtx(5), constants.EntityTypeTechnicalQuote, 1, dto.RequestEditDTO{Remarks: "нет прав"})
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}

func TestRequestEditLockedEntity(t *testing.T) {
	tqRepo := sentTechnicalQuote()
	tqRepo.tq.IsLocked = true
	svc, _, _ := newEditAccessFixture(tqRepo, &fakeJobRepo{})

	err := svc.RequestEdit(newActorCtx(5, authz.EditRequestsCreate), constants.EntityTypeTechnicalQuote, 1, dto.RequestEditDTO{Remarks: "поздно"})
	require.ErrorIs(t, err, apperrors.ErrLocked)
}

func TestRequestEditEmptyRemarks(t *testing.T) {
	svc, _, _ := newEditAccessFixture(sentTechnicalQuote(), &fakeJobRepo{})

	err := svc.RequestEdit(newActorCtx(5, authz.EditRequestsCreate), constants.EntityTypeTechnicalQuote, 1, dto.RequestEditDTO{Remarks: "   "})
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}

func TestRequestEditUnknownEntityType(t *testing.T) {
	svc, _, _ := newEditAccessFixture(sentTechnicalQuote(), &fakeJobRepo{})

	err := svc.RequestEdit(newActorCtx(5, authz.EditRequestsCreate), "container", 1, dto.RequestEditDTO{Remarks: "не поддерживается"})
	var httpErr *apperrors.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 400, httpErr.Code)
}

func TestApproveEditRequiresPrivilege(t *testing.T) {
	tqRepo := sentTechnicalQuote()
	svc, _, _ := newEditAccessFixture(tqRepo, &fakeJobRepo{})

	require.NoError(t, svc.RequestEdit(newActorCtx(5, authz.EditRequestsCreate),
		constants.EntityTypeTechnicalQuote, 1, dto.RequestEditDTO{Remarks: "исправить"}))

	err := svc.ApproveEdit(newActorCtx(7, authz.EditRequestsCreate), constants.EntityTypeTechnicalQuote, 1)
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)

	// Суперпользователь одобряет без явного пермишена.
	err = svc.ApproveEdit(newActorCtx(8, authz.Superuser), constants.EntityTypeTechnicalQuote, 1)
	require.NoError(t, err)
}

func TestEditAccessWorksForJobs(t *testing.T) {
	jobRepo := &fakeJobRepo{job: &entities.Job{
		ID:      1,
		QuoteID: 10,
		Status:  constants.JobStatusActive,
	}}
	svc, _, _ := newEditAccessFixture(&fakeTechnicalQuoteRepo{}, jobRepo)

	err := svc.RequestEdit(newActorCtx(5, authz.EditRequestsCreate), constants.EntityTypeJob, 1, dto.RequestEditDTO{Remarks: "дозагрузить документ"})
	require.NoError(t, err)
	require.NotNil(t, jobRepo.job.Grant.RequestedBy)

	err = svc.ApproveEdit(newActorCtx(9, authz.Superuser), constants.EntityTypeJob, 1)
	require.NoError(t, err)
	require.NotNil(t, jobRepo.job.Grant.ApprovedBy)
	assert.Equal(t, uint64(5), *jobRepo.job.Grant.ApprovedBy)
}

func TestRequestEditMissingEntity(t *testing.T) {
	svc, _, _ := newEditAccessFixture(&fakeTechnicalQuoteRepo{}, &fakeJobRepo{})

	err := svc.RequestEdit(newActorCtx(5, authz.EditRequestsCreate), constants.EntityTypeTechnicalQuote, 404, dto.RequestEditDTO{Remarks: "нет такой"})
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
