package monitor

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbpkg "authpulse/internal/db"
)

func TestInstrumentSuccessPassesThrough(t *testing.T) {
	mon, mock, _ := newTestMonitor(t)

	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnResult(sqlmock.NewResult(0, 1))

	called := false
	err := mon.Instrument(context.Background(), "login", func(context.Context) error {
		called = true
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstrumentReturnsOriginalError(t *testing.T) {
	mon, mock, _ := newTestMonitor(t)

	// Failure path: the performance metric, then the dual write.
	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "auth_errors"`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnResult(sqlmock.NewResult(0, 1))

	failure := NewFailure(KindProviderError, "auth_callback", errors.New("upstream down"))
	err := mon.Instrument(context.Background(), "auth_callback", func(context.Context) error {
		return failure
	})

	// Identity, not equivalence: the wrapper must not rewrap.
	require.Same(t, failure, err.(*Failure))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInstrumentErrorSurvivesRecordingFailure(t *testing.T) {
	mon, mock, hook := newTestMonitor(t)

	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnError(errors.New("store down"))
	mock.ExpectExec(`INSERT INTO "auth_errors"`).WillReturnError(errors.New("store down"))
	mock.ExpectExec(`INSERT INTO "auth_metrics"`).WillReturnError(errors.New("store down"))

	original := errors.New("operation failed")
	err := mon.Instrument(context.Background(), "signup", func(context.Context) error {
		return original
	})

	assert.Equal(t, original, err)
	assert.NotEmpty(t, hook.Entries)
}

func TestEventForOperation(t *testing.T) {
	assert.Equal(t, dbpkg.EventSignup, eventForOperation("signup"))
	assert.Equal(t, dbpkg.EventLogout, eventForOperation("logout"))
	assert.Equal(t, dbpkg.EventSessionRefresh, eventForOperation("session_refresh"))
	assert.Equal(t, dbpkg.EventLogin, eventForOperation("login"))
	assert.Equal(t, dbpkg.EventLogin, eventForOperation("oauth_token_exchange"))
}
