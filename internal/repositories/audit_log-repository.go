package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"freight-system/internal/dto"
	"freight-system/internal/entities"
)

type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, entry *entities.AuditLogEntry) error
	// List возвращает записи по фильтру (сущность, исполнитель, диапазон
	// дат) в порядке возрастания времени создания.
	List(ctx context.Context, filter dto.AuditFilterDTO) ([]entities.AuditLogEntry, error)
}

type AuditLogRepository struct {
	storage *pgxpool.Pool
}

func NewAuditLogRepository(storage *pgxpool.Pool) AuditLogRepositoryInterface {
	return &AuditLogRepository{storage: storage}
}

func (r *AuditLogRepository) Create(ctx context.Context, entry *entities.AuditLogEntry) error {
	query := `
		INSERT INTO audit_log (entity_type, entity_id, action, description, performed_by, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.storage.Exec(ctx, query,
		entry.EntityType, entry.EntityID, entry.Action, entry.Description, entry.PerformedBy, entry.Metadata)
	return err
}

func (r *AuditLogRepository) List(ctx context.Context, filter dto.AuditFilterDTO) ([]entities.AuditLogEntry, error) {
	builder := sq.Select("id", "entity_type", "entity_id", "action", "description", "performed_by", "metadata", "created_at").
		From("audit_log").
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(sq.Dollar)

	if filter.EntityType != "" {
		builder = builder.Where(sq.Eq{"entity_type": filter.EntityType})
	}
	if filter.EntityID != 0 {
		builder = builder.Where(sq.Eq{"entity_id": filter.EntityID})
	}
	if filter.PerformedBy != 0 {
		builder = builder.Where(sq.Eq{"performed_by": filter.PerformedBy})
	}
	if filter.From != nil {
		builder = builder.Where(sq.GtOrEq{"created_at": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(sq.LtOrEq{"created_at": *filter.To})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []entities.AuditLogEntry
	for rows.Next() {
		var e entities.AuditLogEntry
		if err := rows.Scan(&e.ID, &e.EntityType, &e.EntityID, &e.Action, &e.Description, &e.PerformedBy, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
