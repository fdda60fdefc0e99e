package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freight-system/internal/entities"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
)

type JobRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Job, error)
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Job, error)
	UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error)
	UpdateStagesInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) error
	UpdateDocumentsInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) error
	UpdateGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error
	// DeleteConditional удаляет джоб только в статусе NEW - единственный
	// случай, когда управляемая сущность может быть уничтожена.
	DeleteConditional(ctx context.Context, tx pgx.Tx, id uint64) (bool, error)
	GetJobs(ctx context.Context, limit, offset uint64) ([]entities.Job, uint64, error)
}

type JobRepository struct {
	storage *pgxpool.Pool
}

func NewJobRepository(storage *pgxpool.Pool) JobRepositoryInterface {
	return &JobRepository{storage: storage}
}

const jobColumns = `
	id, number, quote_id, status, current_stage, stages, documents, is_locked,
	edit_requested_by, edit_requested_at, edit_approved_by, edit_approved_at, edit_used, edit_remarks,
	created_at, updated_at`

func scanJob(row pgx.Row) (*entities.Job, error) {
	var j entities.Job
	err := row.Scan(
		&j.ID, &j.Number, &j.QuoteID, &j.Status, &j.CurrentStage, &j.Stages, &j.Documents, &j.IsLocked,
		&j.Grant.RequestedBy, &j.Grant.RequestedAt, &j.Grant.ApprovedBy, &j.Grant.ApprovedAt, &j.Grant.Used, &j.Grant.Remarks,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

func (r *JobRepository) CreateInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) (uint64, error) {
	query := `
		INSERT INTO jobs (number, quote_id, status, current_stage, stages, documents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	var id uint64
	err := tx.QueryRow(ctx, query,
		job.Number, job.QuoteID, job.Status, job.CurrentStage, job.Stages, job.Documents,
	).Scan(&id)
	if err != nil {
		// Уникальный индекс по quote_id: не более одного джоба на котировку.
		if isUniqueViolation(err) {
			return 0, apperrors.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *JobRepository) FindByID(ctx context.Context, id uint64) (*entities.Job, error) {
	row := r.storage.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (r *JobRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Job, error) {
	row := tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1 FOR UPDATE`, id)
	return scanJob(row)
}

func (r *JobRepository) UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error) {
	tag, err := r.storage.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *JobRepository) UpdateStagesInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) error {
	_, err := tx.Exec(ctx,
		`UPDATE jobs SET current_stage = $1, stages = $2, updated_at = now() WHERE id = $3`,
		job.CurrentStage, job.Stages, job.ID)
	return err
}

// UpdateDocumentsInTx пишет чек-лист вместе с полями гранта: подтверждение
// документов держателем одноразового доступа расходует грант той же записью.
func (r *JobRepository) UpdateDocumentsInTx(ctx context.Context, tx pgx.Tx, job *entities.Job) error {
	_, err := tx.Exec(ctx, `
		UPDATE jobs
		SET documents = $1,
			edit_requested_by = $2, edit_requested_at = $3,
			edit_approved_by = $4, edit_approved_at = $5,
			edit_used = $6, edit_remarks = $7,
			updated_at = now()
		WHERE id = $8`,
		job.Documents,
		job.Grant.RequestedBy, job.Grant.RequestedAt,
		job.Grant.ApprovedBy, job.Grant.ApprovedAt,
		job.Grant.Used, job.Grant.Remarks,
		job.ID)
	return err
}

func (r *JobRepository) UpdateGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error {
	query := `
		UPDATE jobs
		SET edit_requested_by = $1, edit_requested_at = $2,
			edit_approved_by = $3, edit_approved_at = $4,
			edit_used = $5, edit_remarks = $6,
			updated_at = now()
		WHERE id = $7`
	_, err := tx.Exec(ctx, query,
		grant.RequestedBy, grant.RequestedAt, grant.ApprovedBy, grant.ApprovedAt,
		grant.Used, grant.Remarks, id)
	return err
}

func (r *JobRepository) DeleteConditional(ctx context.Context, tx pgx.Tx, id uint64) (bool, error) {
	tag, err := tx.Exec(ctx,
		`DELETE FROM jobs WHERE id = $1 AND status = $2`, id, constants.JobStatusNew)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *JobRepository) GetJobs(ctx context.Context, limit, offset uint64) ([]entities.Job, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM jobs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var jobs []entities.Job
	for rows.Next() {
		var j entities.Job
		if err := rows.Scan(
			&j.ID, &j.Number, &j.QuoteID, &j.Status, &j.CurrentStage, &j.Stages, &j.Documents, &j.IsLocked,
			&j.Grant.RequestedBy, &j.Grant.RequestedAt, &j.Grant.ApprovedBy, &j.Grant.ApprovedAt, &j.Grant.Used, &j.Grant.Remarks,
			&j.CreatedAt, &j.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, j)
	}
	return jobs, total, rows.Err()
}
