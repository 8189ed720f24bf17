package orm

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger направляет журнал GORM в logrus.
type gormLogger struct {
	entry         *log.Entry
	level         logger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(entry *log.Entry, slowThreshold time.Duration) *gormLogger {
	level := logger.Warn
	if entry.Logger.IsLevelEnabled(log.DebugLevel) {
		level = logger.Info
	}
	return &gormLogger{entry: entry, level: level, slowThreshold: slowThreshold}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.entry.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.entry.Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.entry.Errorf(msg, args...)
	}
}

// Trace вызывается GORM после каждого запроса.
// ErrRecordNotFound не считается ошибкой: промахи обрабатывают репозитории.
func (l *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		query, rows := fc()
		l.entry.WithError(err).WithFields(log.Fields{
			"sql":        query,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		}).Warn("sql query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		query, rows := fc()
		l.entry.WithFields(log.Fields{
			"sql":        query,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		}).Warn("slow sql query")
	case l.level >= logger.Info:
		query, rows := fc()
		l.entry.WithFields(log.Fields{
			"sql":        query,
			"rows":       rows,
			"elapsed_ms": elapsed.Milliseconds(),
		}).Debug("sql query")
	}
}
