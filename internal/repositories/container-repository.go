package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freight-system/internal/entities"
	apperrors "freight-system/pkg/errors"
)

type ContainerRepositoryInterface interface {
	// GetOrCreateForUpdateInTx реализует семантику "первая запись создаёт
	// контейнер" и возвращает строку, заблокированную FOR UPDATE: все
	// проверки порядка событий идут против состояния на момент записи.
	GetOrCreateForUpdateInTx(ctx context.Context, tx pgx.Tx, jobID uint64, number, sizeType string) (*entities.Container, error)
	FindLastEventInTx(ctx context.Context, tx pgx.Tx, containerID uint64) (*entities.TrackingEvent, error)
	HasStatusInTx(ctx context.Context, tx pgx.Tx, containerID uint64, status string) (bool, error)
	InsertEventInTx(ctx context.Context, tx pgx.Tx, event *entities.TrackingEvent) (uint64, error)
	ListByJob(ctx context.Context, jobID uint64) ([]entities.Container, map[uint64][]entities.TrackingEvent, error)
}

type ContainerRepository struct {
	storage *pgxpool.Pool
}

func NewContainerRepository(storage *pgxpool.Pool) ContainerRepositoryInterface {
	return &ContainerRepository{storage: storage}
}

func (r *ContainerRepository) GetOrCreateForUpdateInTx(ctx context.Context, tx pgx.Tx, jobID uint64, number, sizeType string) (*entities.Container, error) {
	// ON CONFLICT DO NOTHING: при гонке двух первых событий выживает одна
	// строка, обе транзакции дальше сериализуются на FOR UPDATE.
	_, err := tx.Exec(ctx, `
		INSERT INTO containers (job_id, number, size_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_id, number) DO NOTHING`,
		jobID, number, sizeType)
	if err != nil {
		return nil, err
	}

	var c entities.Container
	err = tx.QueryRow(ctx, `
		SELECT id, job_id, number, size_type, created_at
		FROM containers WHERE job_id = $1 AND number = $2 FOR UPDATE`,
		jobID, number,
	).Scan(&c.ID, &c.JobID, &c.Number, &c.SizeType, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ContainerRepository) FindLastEventInTx(ctx context.Context, tx pgx.Tx, containerID uint64) (*entities.TrackingEvent, error) {
	var e entities.TrackingEvent
	err := tx.QueryRow(ctx, `
		SELECT id, container_id, status, status_rank, location, remark, event_date, created_at
		FROM tracking_events
		WHERE container_id = $1
		ORDER BY id DESC
		LIMIT 1`,
		containerID,
	).Scan(&e.ID, &e.ContainerID, &e.Status, &e.StatusRank, &e.Location, &e.Remark, &e.EventDate, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (r *ContainerRepository) HasStatusInTx(ctx context.Context, tx pgx.Tx, containerID uint64, status string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM tracking_events WHERE container_id = $1 AND status = $2)`,
		containerID, status,
	).Scan(&exists)
	return exists, err
}

func (r *ContainerRepository) InsertEventInTx(ctx context.Context, tx pgx.Tx, event *entities.TrackingEvent) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, `
		INSERT INTO tracking_events (container_id, status, status_rank, location, remark, event_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		event.ContainerID, event.Status, event.StatusRank, event.Location, event.Remark, event.EventDate,
	).Scan(&id)
	if err != nil {
		// Подстраховка уникальным индексом (container_id, status).
		if isUniqueViolation(err) {
			return 0, apperrors.ErrDuplicateStatus
		}
		return 0, err
	}
	return id, nil
}

func (r *ContainerRepository) ListByJob(ctx context.Context, jobID uint64) ([]entities.Container, map[uint64][]entities.TrackingEvent, error) {
	rows, err := r.storage.Query(ctx, `
		SELECT id, job_id, number, size_type, created_at
		FROM containers WHERE job_id = $1 ORDER BY number`, jobID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var containers []entities.Container
	for rows.Next() {
		var c entities.Container
		if err := rows.Scan(&c.ID, &c.JobID, &c.Number, &c.SizeType, &c.CreatedAt); err != nil {
			return nil, nil, err
		}
		containers = append(containers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	events := make(map[uint64][]entities.TrackingEvent)
	evRows, err := r.storage.Query(ctx, `
		SELECT e.id, e.container_id, e.status, e.status_rank, e.location, e.remark, e.event_date, e.created_at
		FROM tracking_events e
		JOIN containers c ON c.id = e.container_id
		WHERE c.job_id = $1
		ORDER BY e.container_id, e.id`, jobID)
	if err != nil {
		return nil, nil, err
	}
	defer evRows.Close()

	for evRows.Next() {
		var e entities.TrackingEvent
		if err := evRows.Scan(&e.ID, &e.ContainerID, &e.Status, &e.StatusRank, &e.Location, &e.Remark, &e.EventDate, &e.CreatedAt); err != nil {
			return nil, nil, err
		}
		events[e.ContainerID] = append(events[e.ContainerID], e)
	}
	return containers, events, evRows.Err()
}
