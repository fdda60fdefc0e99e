package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"freight-system/internal/authz"
	"freight-system/internal/entities"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
)

func newNotificationFixture(approvers ...uint64) (NotificationServiceInterface, *fakeNotificationRepo) {
	notificationRepo := newFakeNotificationRepo()
	userRepo := newFakeUserRepo()
	userRepo.permitted = approvers
	svc := NewNotificationService(notificationRepo, userRepo, authz.NewGatekeeper(), zap.NewNop())
	return svc, notificationRepo
}

func firstNotification(repo *fakeNotificationRepo) *entities.Notification {
	for _, n := range repo.notifications {
		return n
	}
	return nil
}

func TestNotifyEditRequestedFanOut(t *testing.T) {
	svc, repo := newNotificationFixture(9, 11)
	ctx := newActorCtx(5)

	err := svc.NotifyEditRequested(ctx, constants.EntityTypeTechnicalQuote, 1, 5, "исправить ставку")
	require.NoError(t, err)

	n := firstNotification(repo)
	require.NotNil(t, n)
	assert.Equal(t, constants.NotificationTypeEditRequested, n.Type)
	assert.Equal(t, constants.NotificationStatusPending, n.Status)
	assert.Equal(t, []uint64{9, 11}, n.Recipients)
	assert.Equal(t, uint64(5), n.RequesterID)
	assert.Equal(t, constants.EntityTypeTechnicalQuote, n.Subject.Kind)
}

func TestNotifyEditRequestedNoRecipients(t *testing.T) {
	svc, repo := newNotificationFixture()

	// Без получателей рассылка тихо пропускается.
	err := svc.NotifyEditRequested(newActorCtx(5), constants.EntityTypeJob, 2, 5, "дозагрузить документ")
	require.NoError(t, err)
	assert.Empty(t, repo.notifications)
}

func TestNotifyEditApprovedClosesPending(t *testing.T) {
	svc, repo := newNotificationFixture(9)
	ctx := newActorCtx(5)

	require.NoError(t, svc.NotifyEditRequested(ctx, constants.EntityTypeTechnicalQuote, 1, 5, "исправить"))
	pending := firstNotification(repo)
	require.NotNil(t, pending)

	require.NoError(t, svc.NotifyEditApproved(ctx, constants.EntityTypeTechnicalQuote, 1, 5))

	// Исходное уведомление закрыто, заявителю ушло новое.
	assert.Equal(t, constants.NotificationStatusApproved, pending.Status)
	require.Len(t, repo.notifications, 2)
	for _, n := range repo.notifications {
		if n.ID == pending.ID {
			continue
		}
		assert.Equal(t, constants.NotificationTypeEditApproved, n.Type)
		assert.Equal(t, []uint64{5}, n.Recipients)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	svc, repo := newNotificationFixture(9)
	require.NoError(t, svc.NotifyEditRequested(newActorCtx(5), constants.EntityTypeTechnicalQuote, 1, 5, "исправить"))
	n := firstNotification(repo)

	readerCtx := newActorCtx(9, authz.NotificationsView)
	require.NoError(t, svc.MarkRead(readerCtx, n.ID))
	require.NoError(t, svc.MarkRead(readerCtx, n.ID))
	assert.Len(t, n.Reads, 1)
}

func TestMarkReadUnknownNotification(t *testing.T) {
	svc, _ := newNotificationFixture(9)

	err := svc.MarkRead(newActorCtx(9), "нет-такого-id")
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetFeedUnreadCount(t *testing.T) {
	svc, repo := newNotificationFixture(9)
	ctx := newActorCtx(5)

	require.NoError(t, svc.NotifyEditRequested(ctx, constants.EntityTypeTechnicalQuote, 1, 5, "первый"))
	require.NoError(t, svc.NotifyEditRequested(ctx, constants.EntityTypeJob, 2, 5, "второй"))

	readerCtx := newActorCtx(9, authz.NotificationsView)
	feed, err := svc.GetFeed(readerCtx)
	require.NoError(t, err)
	require.Len(t, feed.List, 2)
	assert.Equal(t, 2, feed.UnreadCount)

	// Отметка о прочтении уменьшает счётчик и проставляет флаг.
	require.NoError(t, svc.MarkRead(readerCtx, firstNotification(repo).ID))
	feed, err = svc.GetFeed(readerCtx)
	require.NoError(t, err)
	assert.Equal(t, 1, feed.UnreadCount)

	read := 0
	for _, n := range feed.List {
		if n.IsRead {
			read++
		}
	}
	assert.Equal(t, 1, read)
}

func TestGetFeedRequiresPermission(t *testing.T) {
	svc, _ := newNotificationFixture(9)

	_, err := svc.GetFeed(newActorCtx(9))
	require.ErrorIs(t, err, apperrors.ErrPermissionDenied)
}
