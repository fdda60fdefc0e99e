package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// SequenceRepositoryInterface - аллокатор классифицированных счётчиков для
// номеров джобов. Upsert атомарен: два конкурентных вызова в одном scope
// никогда не получат одно значение.
type SequenceRepositoryInterface interface {
	NextInTx(ctx context.Context, tx pgx.Tx, scope string) (uint64, error)
}

type SequenceRepository struct{}

func NewSequenceRepository() SequenceRepositoryInterface {
	return &SequenceRepository{}
}

func (r *SequenceRepository) NextInTx(ctx context.Context, tx pgx.Tx, scope string) (uint64, error) {
	var value uint64
	err := tx.QueryRow(ctx, `
		INSERT INTO sequence_counters (scope, value)
		VALUES ($1, 1)
		ON CONFLICT (scope) DO UPDATE SET value = sequence_counters.value + 1
		RETURNING value`,
		scope,
	).Scan(&value)
	return value, err
}
