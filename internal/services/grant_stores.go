package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"freight-system/internal/entities"
	"freight-system/internal/repositories"
	"freight-system/pkg/constants"
)

// GrantStore - узкий контракт хранения суб-рекорда одноразового доступа.
// Протокол запрос/одобрение/расход одинаков для всех управляемых сущностей,
// отличается только строка, в которой живут поля гранта.
type GrantStore interface {
	// LoadForUpdateInTx читает грант с блокировкой FOR UPDATE и признак
	// вечной блокировки записи.
	LoadForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EditAccessGrant, bool, error)
	SaveGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error
}

type technicalQuoteGrantStore struct {
	repo repositories.TechnicalQuoteRepositoryInterface
}

func (s technicalQuoteGrantStore) LoadForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EditAccessGrant, bool, error) {
	tq, err := s.repo.FindForUpdateInTx(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	grant := tq.Grant
	return &grant, tq.IsLocked, nil
}

func (s technicalQuoteGrantStore) SaveGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error {
	return s.repo.UpdateGrantInTx(ctx, tx, id, grant)
}

type jobGrantStore struct {
	repo repositories.JobRepositoryInterface
}

func (s jobGrantStore) LoadForUpdateInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.EditAccessGrant, bool, error) {
	job, err := s.repo.FindForUpdateInTx(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}
	grant := job.Grant
	return &grant, job.IsLocked, nil
}

func (s jobGrantStore) SaveGrantInTx(ctx context.Context, tx pgx.Tx, id uint64, grant *entities.EditAccessGrant) error {
	return s.repo.UpdateGrantInTx(ctx, tx, id, grant)
}

// NewGrantStores собирает реестр хранилищ грантов по типу сущности.
func NewGrantStores(
	tqRepo repositories.TechnicalQuoteRepositoryInterface,
	jobRepo repositories.JobRepositoryInterface,
) map[string]GrantStore {
	return map[string]GrantStore{
		constants.EntityTypeTechnicalQuote: technicalQuoteGrantStore{repo: tqRepo},
		constants.EntityTypeJob:            jobGrantStore{repo: jobRepo},
	}
}
