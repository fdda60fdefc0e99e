package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"freight-system/internal/dto"
	"freight-system/internal/entities"
	"freight-system/pkg/constants"
	"freight-system/pkg/contextkeys"
	apperrors "freight-system/pkg/errors"
)

// newActorCtx собирает контекст запроса так, как его собирает auth middleware.
func newActorCtx(userID uint64, perms ...string) context.Context {
	permsMap := make(map[string]bool, len(perms))
	for _, p := range perms {
		permsMap[p] = true
	}
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, userID)
	return context.WithValue(ctx, contextkeys.UserPermissionsMapKey, permsMap)
}

// fakeTxManager исполняет fn без настоящей транзакции: репозитории-фейки
// tx не используют.
type fakeTxManager struct{}

func (fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

type recordedAudit struct {
	EntityType string
	EntityID   uint64
	Action     string
}

type fakeAuditService struct {
	records []recordedAudit
}

func (s *fakeAuditService) Record(ctx context.Context, entityType string, entityID uint64, action, description string, performedBy uint64, metadata map[string]interface{}) {
	s.records = append(s.records, recordedAudit{EntityType: entityType, EntityID: entityID, Action: action})
}

func (s *fakeAuditService) List(ctx context.Context, filter dto.AuditFilterDTO) ([]dto.AuditLogEntryDTO, error) {
	return nil, nil
}

func (s *fakeAuditService) actions() []string {
	actions := make([]string, 0, len(s.records))
	for _, r := range s.records {
		actions = append(actions, r.Action)
	}
	return actions
}

type fakeNotificationService struct {
	requested int
	approved  int
}

func (s *fakeNotificationService) NotifyEditRequested(ctx context.Context, subjectKind string, subjectID uint64, requesterID uint64, remarks string) error {
	s.requested++
	return nil
}

func (s *fakeNotificationService) NotifyEditApproved(ctx context.Context, subjectKind string, subjectID uint64, requesterID uint64) error {
	s.approved++
	return nil
}

func (s *fakeNotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return nil
}

func (s *fakeNotificationService) GetFeed(ctx context.Context) (*dto.NotificationFeedDTO, error) {
	return &dto.NotificationFeedDTO{}, nil
}

// --- репозитории ---

type fakeQuoteRepo struct {
	quotes map[uint64]*entities.Quote
	nextID uint64
}

func newFakeQuoteRepo() *fakeQuoteRepo {
	return &fakeQuoteRepo{quotes: make(map[uint64]*entities.Quote), nextID: 1}
}

func (r *fakeQuoteRepo) add(q entities.Quote) *entities.Quote {
	if q.ID == 0 {
		q.ID = r.nextID
	}
	r.nextID = q.ID + 1
	stored := q
	r.quotes[q.ID] = &stored
	return &stored
}

func (r *fakeQuoteRepo) Create(ctx context.Context, data dto.CreateQuoteDTO) (uint64, error) {
	q := r.add(entities.Quote{
		ClientName:    data.ClientName,
		Origin:        data.Origin,
		Destination:   data.Destination,
		Mode:          data.Mode,
		Direction:     data.Direction,
		ContainerType: data.ContainerType,
		GoodsDesc:     data.GoodsDesc.Ptr(),
		Status:        constants.QuoteStatusPending,
		CreatedAt:     time.Now(),
	})
	return q.ID, nil
}

func (r *fakeQuoteRepo) FindByID(ctx context.Context, id uint64) (*entities.Quote, error) {
	q, ok := r.quotes[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *q
	return &copied, nil
}

func (r *fakeQuoteRepo) FindByIDInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Quote, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeQuoteRepo) UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error) {
	q, ok := r.quotes[id]
	if !ok || q.Status != from {
		return false, nil
	}
	q.Status = to
	return true, nil
}

func (r *fakeQuoteRepo) GetQuotes(ctx context.Context, limit, offset uint64) ([]entities.Quote, uint64, error) {
	var list []entities.Quote
	for _, q := range r.quotes {
		list = append(list, *q)
	}
	return list, uint64(len(list)), nil
}

type fakeTechnicalQuoteRepo struct {
	tq *entities.TechnicalQuote
}

func (r *fakeTechnicalQuoteRepo) CreateInTx(ctx context.Context, tx pgx.Tx, tq *entities.TechnicalQuote) (uint64, error) {
	if r.tq != nil && r.tq.QuoteID == tq.QuoteID {
		return 0, apperrors.ErrConflict
	}
	stored := *tq
	stored.ID = 1
	r.tq = &stored
	return stored.ID, nil
}

func (r *fakeTechnicalQuoteRepo) FindByID(ctx context.Context, id uint64) (*entities.TechnicalQuote, error) {
	if r.tq == nil || r.tq.ID != id {
		return nil, apperrors.ErrNotFound
	}
	copied := *r.tq
	return &copied, nil
}

func (r *fakeTechnicalQuoteRepo) FindByQuoteID(ctx context.Context, quoteID uint64) (*entities.TechnicalQuote, error) {
	if r.tq == nil || r.tq.QuoteID != quoteID {
		return nil, apperrors.ErrNotFound
	}
	copied := *r.tq
	return &copied, nil
}

func (r *fakeTechnicalQuoteRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.TechnicalQuote, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeTechnicalQuoteRepo) UpdatePricingInTx(ctx context.Context, tx pgx.Tx, tq *entities.TechnicalQuote) error {
	copied := *tq
	r.tq = &copied
	return nil
}

func (r *fakeTechnicalQuoteRepo) UpdateGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error {
	r.tq.Grant = *grant
	return nil
}

func (r *fakeTechnicalQuoteRepo) UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error) {
	if r.tq == nil || r.tq.ID != id || r.tq.Status != from {
		return false, nil
	}
	r.tq.Status = to
	return true, nil
}

func (r *fakeTechnicalQuoteRepo) SetClientDecisionConditional(ctx context.Context, id uint64, to string, remarks *string, decidedAt time.Time) (bool, error) {
	if r.tq == nil || r.tq.ID != id || r.tq.Status != constants.TechnicalQuoteStatusSentToClient {
		return false, nil
	}
	r.tq.Status = to
	r.tq.DecisionRemarks = remarks
	r.tq.DecidedAt = &decidedAt
	return true, nil
}

func (r *fakeTechnicalQuoteRepo) SetLocked(ctx context.Context, id uint64, locked bool) error {
	if r.tq == nil || r.tq.ID != id {
		return apperrors.ErrNotFound
	}
	r.tq.IsLocked = locked
	return nil
}

type fakeJobRepo struct {
	job *entities.Job
}

func (r *fakeJobRepo) CreateInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) (uint64, error) {
	if r.job != nil && r.job.QuoteID == job.QuoteID {
		return 0, apperrors.ErrConflict
	}
	stored := *job
	stored.ID = 1
	r.job = &stored
	return stored.ID, nil
}

func (r *fakeJobRepo) FindByID(ctx context.Context, id uint64) (*entities.Job, error) {
	if r.job == nil || r.job.ID != id {
		return nil, apperrors.ErrNotFound
	}
	copied := *r.job
	copied.Stages = append([]entities.Stage(nil), r.job.Stages...)
	copied.Documents = append([]entities.Document(nil), r.job.Documents...)
	return &copied, nil
}

func (r *fakeJobRepo) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Job, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeJobRepo) UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error) {
	if r.job == nil || r.job.ID != id || r.job.Status != from {
		return false, nil
	}
	r.job.Status = to
	return true, nil
}

func (r *fakeJobRepo) UpdateStagesInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) error {
	r.job.CurrentStage = job.CurrentStage
	r.job.Stages = append([]entities.Stage(nil), job.Stages...)
	return nil
}

func (r *fakeJobRepo) UpdateDocumentsInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) error {
	r.job.Documents = append([]entities.Document(nil), job.Documents...)
	r.job.Grant = job.Grant
	return nil
}

func (r *fakeJobRepo) UpdateGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error {
	r.job.Grant = *grant
	return nil
}

func (r *fakeJobRepo) DeleteConditional(ctx context.Context, tx pgx.Tx, id uint64) (bool, error) {
	if r.job == nil || r.job.ID != id || r.job.Status != constants.JobStatusNew {
		return false, nil
	}
	r.job = nil
	return true, nil
}

func (r *fakeJobRepo) GetJobs(ctx context.Context, limit, offset uint64) ([]entities.Job, uint64, error) {
	if r.job == nil {
		return nil, 0, nil
	}
	return []entities.Job{*r.job}, 1, nil
}

type fakeSequenceRepo struct {
	counters map[string]uint64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: make(map[string]uint64)}
}

func (r *fakeSequenceRepo) NextInTx(ctx context.Context, tx pgx.Tx, scope string) (uint64, error) {
	r.counters[scope]++
	return r.counters[scope], nil
}

type fakeContainer struct {
	container entities.Container
	events    []entities.TrackingEvent
}

type fakeContainerRepo struct {
	containers map[string]*fakeContainer
	nextID     uint64
}

func newFakeContainerRepo() *fakeContainerRepo {
	return &fakeContainerRepo{containers: make(map[string]*fakeContainer), nextID: 1}
}

func (r *fakeContainerRepo) GetOrCreateForUpdateInTx(ctx context.Context, tx pgx.Tx, jobID uint64, number, sizeType string) (*entities.Container, error) {
	if c, ok := r.containers[number]; ok {
		copied := c.container
		return &copied, nil
	}
	c := &fakeContainer{container: entities.Container{ID: r.nextID, JobID: jobID, Number: number, SizeType: sizeType}}
	r.nextID++
	r.containers[number] = c
	copied := c.container
	return &copied, nil
}

func (r *fakeContainerRepo) byID(containerID uint64) *fakeContainer {
	for _, c := range r.containers {
		if c.container.ID == containerID {
			return c
		}
	}
	return nil
}

func (r *fakeContainerRepo) FindLastEventInTx(ctx context.Context, tx pgx.Tx, containerID uint64) (*entities.TrackingEvent, error) {
	c := r.byID(containerID)
	if c == nil || len(c.events) == 0 {
		return nil, nil
	}
	copied := c.events[len(c.events)-1]
	return &copied, nil
}

func (r *fakeContainerRepo) HasStatusInTx(ctx context.Context, tx pgx.Tx, containerID uint64, status string) (bool, error) {
	c := r.byID(containerID)
	if c == nil {
		return false, nil
	}
	for _, e := range c.events {
		if e.Status == status {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeContainerRepo) InsertEventInTx(ctx context.Context, tx pgx.Tx, event *entities.TrackingEvent) (uint64, error) {
	c := r.byID(event.ContainerID)
	stored := *event
	stored.ID = uint64(len(c.events) + 1)
	c.events = append(c.events, stored)
	return stored.ID, nil
}

func (r *fakeContainerRepo) ListByJob(ctx context.Context, jobID uint64) ([]entities.Container, map[uint64][]entities.TrackingEvent, error) {
	var containers []entities.Container
	events := make(map[uint64][]entities.TrackingEvent)
	for _, c := range r.containers {
		if c.container.JobID != jobID {
			continue
		}
		containers = append(containers, c.container)
		events[c.container.ID] = append([]entities.TrackingEvent(nil), c.events...)
	}
	return containers, events, nil
}

type fakeReferenceRepo struct {
	rates map[string]float64
}

func (r *fakeReferenceRepo) GetFxRate(ctx context.Context, currency string) (float64, error) {
	rate, ok := r.rates[currency]
	if !ok {
		return 0, apperrors.NewValidationError("Неизвестный код валюты: %s", currency)
	}
	return rate, nil
}

func (r *fakeReferenceRepo) GetCurrencyName(ctx context.Context, code string) (string, error) {
	return code, nil
}

func (r *fakeReferenceRepo) GetLocationName(ctx context.Context, code string) (string, error) {
	return code, nil
}

type fakeNotificationRepo struct {
	notifications map[string]*entities.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{notifications: make(map[string]*entities.Notification)}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *entities.Notification) error {
	stored := *n
	stored.Recipients = append([]uint64(nil), n.Recipients...)
	stored.CreatedAt = time.Now()
	r.notifications[n.ID] = &stored
	return nil
}

func (r *fakeNotificationRepo) MarkStatusBySubject(ctx context.Context, subjectKind string, subjectID uint64, notifType, status string) error {
	for _, n := range r.notifications {
		if n.Subject.Kind == subjectKind && n.Subject.ID == subjectID &&
			n.Type == notifType && n.Status == constants.NotificationStatusPending {
			n.Status = status
		}
	}
	return nil
}

func (r *fakeNotificationRepo) InsertReadReceipt(ctx context.Context, notificationID string, recipientID uint64) error {
	n, ok := r.notifications[notificationID]
	if !ok {
		return apperrors.ErrNotFound
	}
	for _, receipt := range n.Reads {
		if receipt.RecipientID == recipientID {
			return nil
		}
	}
	n.Reads = append(n.Reads, entities.ReadReceipt{RecipientID: recipientID, ReadAt: time.Now()})
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, recipientID uint64) ([]entities.Notification, error) {
	var list []entities.Notification
	for _, n := range r.notifications {
		for _, recipient := range n.Recipients {
			if recipient == recipientID {
				copied := *n
				copied.Reads = append([]entities.ReadReceipt(nil), n.Reads...)
				list = append(list, copied)
				break
			}
		}
	}
	return list, nil
}

func (r *fakeNotificationRepo) UnreadCount(ctx context.Context, recipientID uint64) (int, error) {
	list, _ := r.ListByRecipient(ctx, recipientID)
	count := 0
	for i := range list {
		if !list[i].IsReadBy(recipientID) {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) Exists(ctx context.Context, notificationID string) (bool, error) {
	_, ok := r.notifications[notificationID]
	return ok, nil
}

type fakeUserRepo struct {
	users      map[uint64]*entities.User
	permitted  []uint64
	permsByIDs map[uint64]map[string]bool
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint64]*entities.User), permsByIDs: make(map[uint64]map[string]bool)}
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint64) (*entities.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByLogin(ctx context.Context, login string) (*entities.User, error) {
	for _, u := range r.users {
		if u.Login == login {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeUserRepo) GetPermissionsMap(ctx context.Context, userID uint64) (map[string]bool, error) {
	return r.permsByIDs[userID], nil
}

func (r *fakeUserRepo) FindIDsWithAnyPermission(ctx context.Context, permissions []string) ([]uint64, error) {
	return r.permitted, nil
}
