package repositories

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freight-system/internal/dto"
	"freight-system/pkg/constants"
	"freight-system/pkg/database/postgresql"
	apperrors "freight-system/pkg/errors"
)

var testPool *pgxpool.Pool

// TestMain подключается к тестовой БД из TEST_DATABASE_URL и накатывает
// миграции. Без переменной окружения интеграционные тесты пропускаются.
func TestMain(m *testing.M) {
	testDbUrl := os.Getenv("TEST_DATABASE_URL")
	if testDbUrl == "" {
		os.Exit(m.Run())
	}

	var err error
	testPool, err = pgxpool.New(context.Background(), testDbUrl)
	if err != nil {
		log.Fatalf("Не удалось подключиться к тестовой БД: %v", err)
	}
	defer testPool.Close()

	if err := postgresql.RunMigrations(testPool, "../../migrations"); err != nil {
		log.Fatalf("Не удалось применить миграции: %v", err)
	}

	os.Exit(m.Run())
}

func requireTestDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DATABASE_URL не задан, интеграционный тест пропущен")
	}
}

// cleanupTables очищает таблицы для изоляции тестов.
func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		`TRUNCATE TABLE tracking_events, containers, jobs, technical_quotes, quotes,
		 notifications, notification_reads, audit_log, sequence_counters RESTART IDENTITY CASCADE;`)
	require.NoError(t, err, "Не удалось очистить таблицы")
}

func seedQuote(t *testing.T) uint64 {
	t.Helper()
	repo := NewQuoteRepository(testPool)
	id, err := repo.Create(context.Background(), dto.CreateQuoteDTO{
		ClientName:    "ООО Тестовый Клиент",
		Origin:        "CNSHA",
		Destination:   "TJDYU",
		Mode:          constants.ModeSea,
		Direction:     constants.DirectionImport,
		ContainerType: "40HC",
		GoodsDesc:     null.StringFrom("тестовый груз"),
	})
	require.NoError(t, err)
	return id
}

func TestQuoteRepository_Integration_CreateAndFind(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	ctx := context.Background()
	repo := NewQuoteRepository(testPool)

	id := seedQuote(t)
	require.NotZero(t, id)

	q, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "ООО Тестовый Клиент", q.ClientName)
	assert.Equal(t, constants.QuoteStatusPending, q.Status)
	require.NotNil(t, q.GoodsDesc)
	assert.Equal(t, "тестовый груз", *q.GoodsDesc)

	_, err = repo.FindByID(ctx, id+1000)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestQuoteRepository_Integration_ConditionalStatus(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	ctx := context.Background()
	repo := NewQuoteRepository(testPool)
	id := seedQuote(t)

	ok, err := repo.UpdateStatusConditional(ctx, id, constants.QuoteStatusPending, constants.QuoteStatusReviewing)
	require.NoError(t, err)
	assert.True(t, ok)

	// Повтор с устаревшим предусловием не срабатывает.
	ok, err = repo.UpdateStatusConditional(ctx, id, constants.QuoteStatusPending, constants.QuoteStatusReviewing)
	require.NoError(t, err)
	assert.False(t, ok)

	q, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, constants.QuoteStatusReviewing, q.Status)
}

func TestQuoteRepository_Integration_Pagination(t *testing.T) {
	requireTestDB(t)
	cleanupTables(t)
	ctx := context.Background()
	repo := NewQuoteRepository(testPool)

	for i := 0; i < 3; i++ {
		seedQuote(t)
	}

	list, total, err := repo.GetQuotes(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Len(t, list, 2)

	list, _, err = repo.GetQuotes(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
