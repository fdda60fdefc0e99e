package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"freight-system/internal/entities"
	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
)

type TechnicalQuoteRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, tq *entities.TechnicalQuote) (uint64, error)
	FindByID(ctx context.Context, id uint64) (*entities.TechnicalQuote, error)
	FindByQuoteID(ctx context.Context, quoteID uint64) (*entities.TechnicalQuote, error)
	// FindForUpdateInTx читает строку с блокировкой FOR UPDATE: все guard-проверки
	// протокола доступа и прайсинга выполняются против состояния на момент записи.
	FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.TechnicalQuote, error)
	UpdatePricingInTx(ctx context.Context, tx pgx.Tx, tq *entities.TechnicalQuote) error
	UpdateGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error
	UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error)
	// SetClientDecisionConditional фиксирует решение клиента, только если
	// котировка всё ещё в SENT_TO_CLIENT. false означает "уже обработано".
	SetClientDecisionConditional(ctx context.Context, id uint64, to string, remarks *string, decidedAt time.Time) (bool, error)
	SetLocked(ctx context.Context, id uint64, locked bool) error
}

type TechnicalQuoteRepository struct {
	storage *pgxpool.Pool
}

func NewTechnicalQuoteRepository(storage *pgxpool.Pool) TechnicalQuoteRepositoryInterface {
	return &TechnicalQuoteRepository{storage: storage}
}

const technicalQuoteColumns = `
	id, quote_id, line_items, summary, grand_total, reference_currency, status,
	decision_remarks, decided_at, is_locked,
	edit_requested_by, edit_requested_at, edit_approved_by, edit_approved_at, edit_used, edit_remarks,
	created_at, updated_at`

func scanTechnicalQuote(row pgx.Row) (*entities.TechnicalQuote, error) {
	var tq entities.TechnicalQuote
	err := row.Scan(
		&tq.ID, &tq.QuoteID, &tq.LineItems, &tq.Summary, &tq.GrandTotal, &tq.ReferenceCurrency, &tq.Status,
		&tq.DecisionRemarks, &tq.DecidedAt, &tq.IsLocked,
		&tq.Grant.RequestedBy, &tq.Grant.RequestedAt, &tq.Grant.ApprovedBy, &tq.Grant.ApprovedAt, &tq.Grant.Used, &tq.Grant.Remarks,
		&tq.CreatedAt, &tq.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &tq, nil
}

func (r *TechnicalQuoteRepository) CreateInTx(ctx context.Context, tx pgx.Tx, tq *entities.TechnicalQuote) (uint64, error) {
	query := `
		INSERT INTO technical_quotes (quote_id, line_items, summary, grand_total, reference_currency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	var id uint64
	err := tx.QueryRow(ctx, query,
		tq.QuoteID, tq.LineItems, tq.Summary, tq.GrandTotal, tq.ReferenceCurrency, tq.Status,
	).Scan(&id)
	if err != nil {
		// Уникальный индекс по quote_id: вторая конкурентная попытка
		// создания получает Conflict, а не вторую строку.
		if isUniqueViolation(err) {
			return 0, apperrors.ErrConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *TechnicalQuoteRepository) FindByID(ctx context.Context, id uint64) (*entities.TechnicalQuote, error) {
	row := r.storage.QueryRow(ctx, `SELECT `+technicalQuoteColumns+` FROM technical_quotes WHERE id = $1`, id)
	return scanTechnicalQuote(row)
}

func (r *TechnicalQuoteRepository) FindByQuoteID(ctx context.Context, quoteID uint64) (*entities.TechnicalQuote, error) {
	row := r.storage.QueryRow(ctx, `SELECT `+technicalQuoteColumns+` FROM technical_quotes WHERE quote_id = $1`, quoteID)
	return scanTechnicalQuote(row)
}

func (r *TechnicalQuoteRepository) FindForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.TechnicalQuote, error) {
	row := tx.QueryRow(ctx, `SELECT `+technicalQuoteColumns+` FROM technical_quotes WHERE id = $1 FOR UPDATE`, id)
	return scanTechnicalQuote(row)
}

// UpdatePricingInTx перезаписывает строки, сводку и итог вместе с полями
// гранта: расход одноразового доступа и запись прайсинга - одна запись.
func (r *TechnicalQuoteRepository) UpdatePricingInTx(ctx context.Context, tx pgx.Tx, tq *entities.TechnicalQuote) error {
	query := `
		UPDATE technical_quotes
		SET line_items = $1, summary = $2, grand_total = $3, status = $4,
			edit_requested_by = $5, edit_requested_at = $6,
			edit_approved_by = $7, edit_approved_at = $8,
			edit_used = $9, edit_remarks = $10,
			updated_at = now()
		WHERE id = $11`
	_, err := tx.Exec(ctx, query,
		tq.LineItems, tq.Summary, tq.GrandTotal, tq.Status,
		tq.Grant.RequestedBy, tq.Grant.RequestedAt,
		tq.Grant.ApprovedBy, tq.Grant.ApprovedAt,
		tq.Grant.Used, tq.Grant.Remarks,
		tq.ID)
	return err
}

func (r *TechnicalQuoteRepository) UpdateGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error {
	query := `
		UPDATE technical_quotes
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

func (r *TechnicalQuoteRepository) UpdateStatusConditional(ctx context.Context, id uint64, from, to string) (bool, error) {
	tag, err := r.storage.Exec(ctx,
		`UPDATE technical_quotes SET status = $1, updated_at = now() WHERE id = $2 AND status = $3`,
		to, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TechnicalQuoteRepository) SetClientDecisionConditional(ctx context.Context, id uint64, to string, remarks *string, decidedAt time.Time) (bool, error) {
	tag, err := r.storage.Exec(ctx, `
		UPDATE technical_quotes
		SET status = $1, decision_remarks = $2, decided_at = $3, updated_at = now()
		WHERE id = $4 AND status = $5`,
		to, remarks, decidedAt, id, constants.TechnicalQuoteStatusSentToClient)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TechnicalQuoteRepository) SetLocked(ctx context.Context, id uint64, locked bool) error {
	tag, err := r.storage.Exec(ctx,
		`UPDATE technical_quotes SET is_locked = $1, updated_at = now() WHERE id = $2`, locked, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
