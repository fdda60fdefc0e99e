package repositories

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"freight-system/pkg/constants"
	apperrors "freight-system/pkg/errors"
)

// ReferenceRepositoryInterface - коллаборатор справочных данных: курсы валют
// и отображаемые имена кодов. Только чтение, ядро эти данные не меняет.
type ReferenceRepositoryInterface interface {
	GetFxRate(ctx context.Context, currency string) (float64, error)
	GetCurrencyName(ctx context.Context, code string) (string, error)
	GetLocationName(ctx context.Context, code string) (string, error)
}

type ReferenceRepository struct {
	storage *pgxpool.Pool
	cache   CacheRepositoryInterface
	logger  *zap.Logger
}

func NewReferenceRepository(storage *pgxpool.Pool, cache CacheRepositoryInterface, logger *zap.Logger) ReferenceRepositoryInterface {
	return &ReferenceRepository{storage: storage, cache: cache, logger: logger}
}

const referenceCacheTTL = 10 * time.Minute

// GetFxRate - курс валюты к референсной, cache-aside через Redis.
// Недоступность кеша не фатальна: идём в БД и только логируем.
func (r *ReferenceRepository) GetFxRate(ctx context.Context, currency string) (float64, error) {
	cacheKey := fmt.Sprintf(constants.CacheKeyFxRate, currency)
	if cached, err := r.cache.Get(ctx, cacheKey); err == nil {
		if rate, parseErr := strconv.ParseFloat(cached, 64); parseErr == nil {
			return rate, nil
		}
	}

	var rate float64
	err := r.storage.QueryRow(ctx,
		`SELECT fx_rate FROM reference_currencies WHERE code = $1`, currency,
	).Scan(&rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.NewValidationError("Неизвестный код валюты: %s", currency)
		}
		return 0, err
	}

	if err := r.cache.Set(ctx, cacheKey, strconv.FormatFloat(rate, 'f', -1, 64), referenceCacheTTL); err != nil {
		r.logger.Warn("Не удалось записать курс валюты в кеш", zap.String("currency", currency), zap.Error(err))
	}
	return rate, nil
}

func (r *ReferenceRepository) GetCurrencyName(ctx context.Context, code string) (string, error) {
	return r.lookupName(ctx, fmt.Sprintf(constants.CacheKeyCurrencyName, code),
		`SELECT name FROM reference_currencies WHERE code = $1`, code)
}

func (r *ReferenceRepository) GetLocationName(ctx context.Context, code string) (string, error) {
	return r.lookupName(ctx, fmt.Sprintf(constants.CacheKeyLocationName, code),
		`SELECT name FROM reference_locations WHERE code = $1`, code)
}

func (r *ReferenceRepository) lookupName(ctx context.Context, cacheKey, query, code string) (string, error) {
	if cached, err := r.cache.Get(ctx, cacheKey); err == nil && cached != "" {
		return cached, nil
	}

	var name string
	err := r.storage.QueryRow(ctx, query, code).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Код без записи в справочнике показываем как есть.
			return code, nil
		}
		return "", err
	}

	if err := r.cache.Set(ctx, cacheKey, name, referenceCacheTTL); err != nil {
		r.logger.Warn("Не удалось записать имя кода в кеш", zap.String("code", code), zap.Error(err))
	}
	return name, nil
}
