package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/origen-putumayo/storefront/pkg/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// queryLogger sends GORM output through the request-scoped structured logger. Only failed
// and slow statements are reported; record-not-found is a normal outcome here.
type queryLogger struct {
	logg      *logger.Logger
	slow      time.Duration
	level     gormlogger.LogLevel
	withQuery bool
}

func newQueryLogger(logg *logger.Logger, slow time.Duration, withQuery bool) *queryLogger {
	if slow <= 0 {
		slow = defaultSlowQuery
	}
	return &queryLogger{logg: logg, slow: slow, level: gormlogger.Warn, withQuery: withQuery}
}

func (q *queryLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *q
	clone.level = level
	return &clone
}

func (q *queryLogger) Info(ctx context.Context, msg string, args ...any) {
	if q.level >= gormlogger.Info {
		q.logg.Info(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Warn(ctx context.Context, msg string, args ...any) {
	if q.level >= gormlogger.Warn {
		q.logg.Warn(ctx, fmt.Sprintf(msg, args...))
	}
}

func (q *queryLogger) Error(ctx context.Context, msg string, args ...any) {
	if q.level >= gormlogger.Error {
		q.logg.Error(ctx, fmt.Sprintf(msg, args...), nil)
	}
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if q.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := elapsed > q.slow
	if !failed && !slow {
		return
	}

	sql, rows := fc()
	fields := map[string]any{
		"duration_ms": elapsed.Milliseconds(),
		"rows":        rows,
	}
	if q.withQuery {
		fields["sql"] = sql
	}
	ctx = q.logg.WithFields(ctx, fields)

	switch {
	case failed && q.level >= gormlogger.Error:
		q.logg.Error(ctx, "db.query_failed", err)
	case slow && q.level >= gormlogger.Warn:
		q.logg.Warn(ctx, "db.slow_query")
	}
}
