package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"freight-system/internal/entities"
	"freight-system/pkg/constants"
)

type NotificationRepositoryInterface interface {
	Create(ctx context.Context, n *entities.Notification) error
	// MarkStatusBySubject переводит все PENDING-уведомления по сущности в
	// новый статус (используется при одобрении запроса на редактирование).
	MarkStatusBySubject(ctx context.Context, subjectKind string, subjectID uint64, notifType, status string) error
	// InsertReadReceipt идемпотентна: повторная отметка о прочтении - no-op.
	InsertReadReceipt(ctx context.Context, notificationID string, recipientID uint64) error
	ListByRecipient(ctx context.Context, recipientID uint64) ([]entities.Notification, error)
	UnreadCount(ctx context.Context, recipientID uint64) (int, error)
	Exists(ctx context.Context, notificationID string) (bool, error)
}

type NotificationRepository struct {
	storage *pgxpool.Pool
}

func NewNotificationRepository(storage *pgxpool.Pool) NotificationRepositoryInterface {
	return &NotificationRepository{storage: storage}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	query := `
		INSERT INTO notifications (id, type, subject_kind, subject_id, requester_id, message, recipients, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.storage.Exec(ctx, query,
		n.ID, n.Type, n.Subject.Kind, n.Subject.ID, n.RequesterID, n.Message, n.Recipients, n.Status)
	return err
}

func (r *NotificationRepository) MarkStatusBySubject(ctx context.Context, subjectKind string, subjectID uint64, notifType, status string) error {
	_, err := r.storage.Exec(ctx, `
		UPDATE notifications SET status = $1
		WHERE subject_kind = $2 AND subject_id = $3 AND type = $4 AND status = $5`,
		status, subjectKind, subjectID, notifType, constants.NotificationStatusPending)
	return err
}

func (r *NotificationRepository) InsertReadReceipt(ctx context.Context, notificationID string, recipientID uint64) error {
	_, err := r.storage.Exec(ctx, `
		INSERT INTO notification_reads (notification_id, recipient_id)
		VALUES ($1, $2)
		ON CONFLICT (notification_id, recipient_id) DO NOTHING`,
		notificationID, recipientID)
	return err
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uint64) ([]entities.Notification, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT n.id, n.type, n.subject_kind, n.subject_id, n.requester_id, n.message, n.recipients, n.status, n.created_at,
			r.recipient_id, r.read_at
		FROM notifications n
		LEFT JOIN notification_reads r ON r.notification_id = n.id AND r.recipient_id = $1
		WHERE $1 = ANY(n.recipients)
		ORDER BY n.created_at DESC`,
		recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []entities.Notification
	for rows.Next() {
		var n entities.Notification
		var readerID *uint64
		var readAt *time.Time
		if err := rows.Scan(
			&n.ID, &n.Type, &n.Subject.Kind, &n.Subject.ID, &n.RequesterID, &n.Message, &n.Recipients, &n.Status, &n.CreatedAt,
			&readerID, &readAt,
		); err != nil {
			return nil, err
		}
		if readerID != nil && readAt != nil {
			n.Reads = append(n.Reads, entities.ReadReceipt{RecipientID: *readerID, ReadAt: *readAt})
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID uint64) (int, error) {
	var count int
	err := r.storage.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM notifications n
		WHERE $1 = ANY(n.recipients)
			AND NOT EXISTS (
				SELECT 1 FROM notification_reads r
				WHERE r.notification_id = n.id AND r.recipient_id = $1
			)`,
		recipientID,
	).Scan(&count)
	return count, err
}

func (r *NotificationRepository) Exists(ctx context.Context, notificationID string) (bool, error) {
	var exists bool
	err := r.storage.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM notifications WHERE id = $1)`, notificationID,
	).Scan(&exists)
	return exists, err
}
