package repositories

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freight-system/internal/dto"
	"freight-system/internal/entities"
	apperrors "freight-system/pkg/errors"
)

type QuoteRepositoryInterface interface {
	Create(ctx context.Context, data dto.CreateQuoteDTO) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.Quote, error)
	FindByIDInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Quote, error)
	// UpdateStatusConditional переводит статус только если текущий статус
	// равен ожидаемому. Возвращает false, если условие не сработало -
	// предусловие проверяется состоянием на момент записи, а не чтения.
	UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error)
	GetQuotes(ctx context.Context, limit, offset uint64) ([]entities.Quote, uint64, error)
}

type QuoteRepository struct {
	storage *pgxpool.Pool
}

func NewQuoteRepository(storage *pgxpool.Pool) QuoteRepositoryInterface {
	return &QuoteRepository{storage: storage}
}

const quoteColumns = `id, client_name, origin, destination, mode, direction, container_type, goods_desc, status, created_at, updated_at`

func scanQuote(row pgx.Row) (*entities.Quote, error) {
	var q entities.Quote
	err := row.Scan(
		&q.ID, &q.ClientName, &q.Origin, &q.Destination, &q.Mode, &q.Direction,
		&q.ContainerType, &q.GoodsDesc, &q.Status, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *QuoteRepository) Create(ctx context.Context, data dto.CreateQuoteDTO) (uint64, error) {
	query := `
		INSERT INTO quotes (client_name, origin, destination, mode, direction, container_type, goods_desc)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var id uint64
	err := r.storage.QueryRow(ctx, query,
		data.ClientName, data.Origin, data.Destination, data.Mode,
		data.Direction, data.ContainerType, data.GoodsDesc.Ptr(),
	).Scan(&id)
	return id, err
}

func (r *QuoteRepository) FindByID(ctx context.Context, id uint64) (*entities.Quote, error) {
	row := r.storage.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1`, id)
	return scanQuote(row)
}

func (r *QuoteRepository) FindByIDInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Quote, error) {
	row := tx.QueryRow(ctx, `SELECT `+quoteColumns+` FROM quotes WHERE id = $1 FOR UPDATE`, id)
	return scanQuote(row)
}

func (r *QuoteRepository) UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error) {
	tag, err := r.storage.Exec(ctx,
		`UPDATE quotes SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *QuoteRepository) GetQuotes(ctx context.Context, limit, offset uint64) ([]entities.Quote, uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.storage.Query(ctx,
		`SELECT `+quoteColumns+` FROM quotes ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotes []entities.Quote
	for rows.Next() {
		var q entities.Quote
		if err := rows.Scan(
			&q.ID, &q.ClientName, &q.Origin, &q.Destination, &q.Mode, &q.Direction,
			&q.ContainerType, &q.GoodsDesc, &q.Status, &q.CreatedAt, &q.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		quotes = append(quotes, q)
	}
	return quotes, total, rows.Err()
}
