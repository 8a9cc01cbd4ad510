package repository

import (
	"context"
	"testing"
	"time"

	"golang-stock-advisor/internal/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestStockRecommendationRepositoryCreate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRecommendationRepository(db)

	mock.ExpectQuery(`INSERT INTO "stock_recommendations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	rec := &entity.StockRecommendation{UserID: "u1", Ticker: "AAPL", Decision: "BUY"}
	require.NoError(t, repo.Create(context.Background(), rec))
	assert.Equal(t, uint(7), rec.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRecommendationRepositoryFindByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRecommendationRepository(db)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "stock_recommendations"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .+ FROM "stock_recommendations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "ticker", "decision", "created_at"}).
			AddRow(2, "u1", "MSFT", "HOLD", time.Now()).
			AddRow(1, "u1", "AAPL", "BUY", time.Now()))

	recs, total, err := repo.FindByUser(context.Background(), "u1", 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, recs, 2)
	assert.Equal(t, "MSFT", recs[0].Ticker)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRecommendationRepositoryFindLatestNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRecommendationRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "stock_recommendations"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	rec, err := repo.FindLatest(context.Background(), "u1", "AAPL")
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockRecommendationRepositoryDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewStockRecommendationRepository(db)

	mock.ExpectExec(`UPDATE "stock_recommendations" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "stock_recommendations" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Delete(context.Background(), "u1", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(context.Background(), "u2", 1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinancialHealthRepositoryGetLatest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewFinancialHealthRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "financial_health_assessments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "overall_score", "savings_rate", "priority_actions"}).
			AddRow(3, "u1", 72.5, 40.0, `{"Build an emergency fund","Reduce dining out"}`))

	a, err := repo.GetLatest(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, 72.5, a.OverallScore)
	assert.Equal(t, []string{"Build an emergency fund", "Reduce dining out"}, []string(a.PriorityActions))

	mock.ExpectQuery(`SELECT \* FROM "financial_health_assessments"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	a, err = repo.GetLatest(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, a)
	assert.NoError(t, mock.ExpectationsWereMet())
}
