package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Field = zapcore.Field

var (
	Int      = zap.Int
	Int64    = zap.Int64
	String   = zap.String
	Error    = zap.Error
	Any      = zap.Any
	Bool     = zap.Bool
	Time     = zap.Time
	Duration = zap.Duration
	Stringer = zap.Stringer
)
