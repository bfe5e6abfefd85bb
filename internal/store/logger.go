package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQuery = 200 * time.Millisecond

// Logger routes gorm's query log into zap.
type Logger struct {
	log   *zap.SugaredLogger
	level logger.LogLevel
}

// NewLogger logs errors and slow queries, and every query when debug is set.
func NewLogger(log *zap.SugaredLogger, debug bool) *Logger {
	level := logger.Warn
	if debug {
		level = logger.Info
	}

	return &Logger{log: log.Named("gorm"), level: level}
}

func (l *Logger) LogMode(level logger.LogLevel) logger.Interface {
	nl := *l
	nl.level = level

	return &nl
}

func (l *Logger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Info {
		l.log.Infof(msg, data...)
	}
}

func (l *Logger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warnf(msg, data...)
	}
}

func (l *Logger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.level >= logger.Error {
		l.log.Errorf(msg, data...)
	}
}

func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.log.Errorw("query failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case elapsed > slowQuery && l.level >= logger.Warn:
		l.log.Warnw("slow query", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.level >= logger.Info:
		l.log.Debugw("query", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
