package monitor

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestMonitor wires a Monitor to a sqlmock-backed GORM connection
// and a null logger whose entries can be inspected through the hook.
func newTestMonitor(t *testing.T) (*Monitor, sqlmock.Sqlmock, *test.Hook) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		// Single-statement writes only; keeps the scripted statement
		// stream free of Begin/Commit pairs.
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	return New(gdb, logger), mock, hook
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func ptrInt64(v int64) *int64 { return &v }
