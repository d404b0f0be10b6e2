package db

import (
	"errors"
	"testing"

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

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	return gdb, mock
}

func TestRunRetentionOnceSweepsAllEventTables(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM "auth_metrics"`).WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec(`DELETE FROM "session_events"`).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(`DELETE FROM "auth_errors"`).WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, runRetentionOnce(gdb, 30))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRetentionOnceStopsOnFirstFailure(t *testing.T) {
	gdb, mock := newMockDB(t)

	mock.ExpectExec(`DELETE FROM "auth_metrics"`).WillReturnError(errors.New("deadlock"))

	err := runRetentionOnce(gdb, 30)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
