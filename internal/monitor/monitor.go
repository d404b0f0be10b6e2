// Package monitor is the authentication monitoring core: it records
// auth events (metrics, session transitions, errors) into append-only
// tables and aggregates them into range analytics and real-time
// dashboard metrics.
package monitor

import (
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Monitor is the single write path into the auth event tables and the
// query engine over them. Writes are fail-open: a persistence failure
// is logged through the injected logger and never surfaced to the
// business operation being instrumented. Reads propagate their errors.
type Monitor struct {
	db  *gorm.DB
	log logrus.FieldLogger

	// now is the clock used for recorder timestamps and the real-time
	// trailing windows. Overridden in tests.
	now func() time.Time
}

func New(gdb *gorm.DB, log logrus.FieldLogger) *Monitor {
	return &Monitor{
		db:  gdb,
		log: log,
		now: time.Now,
	}
}
