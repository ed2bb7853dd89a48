package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockBatchRepository creates a GormBatchRepository with a mocked SQL connection
func newMockBatchRepository(t *testing.T) (*GormBatchRepository, *gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBatchRepository(gormDB), gormDB, mock, mockDB
}

func TestDecrementAvailableQuantitySQL(t *testing.T) {
	t.Run("guards on version and remaining quantity in one update", func(t *testing.T) {
		_, gormDB, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()

		mock.ExpectExec(`UPDATE "batches" SET .* WHERE id = \$\d+ AND version = \$\d+ AND available_quantity_kg >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := decrementAvailableQuantity(gormDB, batchID, decimal.NewFromInt(100), 3)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("checks current row state when no rows match", func(t *testing.T) {
		_, gormDB, mock, mockDB := newMockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()

		mock.ExpectExec(`UPDATE "batches" SET .* WHERE id = \$\d+ AND version = \$\d+ AND available_quantity_kg >= \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT "version","available_quantity_kg" FROM "batches" WHERE id = \$\d+`).
			WillReturnRows(sqlmock.NewRows([]string{"version", "available_quantity_kg"}).
				AddRow(3, decimal.NewFromInt(50)))

		err := decrementAvailableQuantity(gormDB, batchID, decimal.NewFromInt(100), 3)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBatchRepository_ExistsByBatchNumberSQL(t *testing.T) {
	repo, _, mock, mockDB := newMockBatchRepository(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "batches" WHERE batch_number = \$1`).
		WithArgs("KN-2026-000001").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByBatchNumber(context.Background(), "KN-2026-000001")

	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
