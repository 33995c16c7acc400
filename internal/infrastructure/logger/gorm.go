package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQuery is the threshold above which queries log at warn
const DefaultSlowQuery = 200 * time.Millisecond

// GormLogger routes gorm logging into zap, correlated with the request
// and trace ids carried by the query context. Record-not-found is an
// expected outcome of invoice lookups and is never logged as an error.
type GormLogger struct {
	logger    *zap.Logger
	level     gormlogger.LogLevel
	slowQuery time.Duration
	fullSQL   bool
}

// NewGormLogger creates a gorm logger. SQL text, which carries bound values,
// is only logged when fullSQL is set.
func NewGormLogger(base *zap.Logger, level gormlogger.LogLevel, slowQuery time.Duration, fullSQL bool) *GormLogger {
	if slowQuery <= 0 {
		slowQuery = DefaultSlowQuery
	}
	return &GormLogger{
		logger:    base.Named("gorm"),
		level:     level,
		slowQuery: slowQuery,
		fullSQL:   fullSQL,
	}
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info implements gormlogger.Interface
func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		Correlate(ctx, l.logger).Sugar().Infof(msg, data...)
	}
}

// Warn implements gormlogger.Interface
func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		Correlate(ctx, l.logger).Sugar().Warnf(msg, data...)
	}
}

// Error implements gormlogger.Interface
func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		Correlate(ctx, l.logger).Sugar().Errorf(msg, data...)
	}
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	notFound := errors.Is(err, gorm.ErrRecordNotFound)
	slow := elapsed > l.slowQuery

	var logFn func(string, ...zap.Field)
	log := Correlate(ctx, l.logger)
	switch {
	case err != nil && !notFound && l.level >= gormlogger.Error:
		logFn = log.Error
	case slow && l.level >= gormlogger.Warn:
		logFn = log.Warn
	case l.level >= gormlogger.Info:
		logFn = log.Debug
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	if l.fullSQL {
		fields = append(fields, zap.String("sql", sql))
	}
	if err != nil && !notFound {
		fields = append(fields, zap.Error(err))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.slowQuery))
	}
	logFn("gorm query", fields...)
}

// GormLevel maps a zap level name to the gorm log level
func GormLevel(level string) gormlogger.LogLevel {
	switch ParseLevel(level).String() {
	case "debug":
		return gormlogger.Info
	case "info", "warn":
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
