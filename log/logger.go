package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger used across the service.
type Logger interface {
	Info(msg string, fields ...zap.Field)
	Debug(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Sync() error
}

type zapLogger struct {
	*zap.Logger
}

var _ Logger = (*zapLogger)(nil)

// NewLogger creates a zap-backed logger.
// In production mode it emits JSON to fileName (or stdout when empty),
// otherwise a human-readable console encoder to stdout.
// level is one of debug, info, warn, error.
func NewLogger(isProduction bool, fileName string, level string) (Logger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}

	var (
		encoder zapcore.Encoder
		sink    zapcore.WriteSyncer = zapcore.AddSync(os.Stdout)
	)

	if isProduction {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)

		if fileName != "" {
			file, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, err
			}
			sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(file))
		}
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, sink, atomicLevel)

	return &zapLogger{
		Logger: zap.New(core, zap.AddCaller()),
	}, nil
}

// NoOpLogger discards everything. Used in tests.
type NoOpLogger struct{}

var _ Logger = (*NoOpLogger)(nil)

// Info implements Logger.
func (*NoOpLogger) Info(msg string, fields ...zap.Field) {}

// Debug implements Logger.
func (*NoOpLogger) Debug(msg string, fields ...zap.Field) {}

// Warn implements Logger.
func (*NoOpLogger) Warn(msg string, fields ...zap.Field) {}

// Error implements Logger.
func (*NoOpLogger) Error(msg string, fields ...zap.Field) {}

// Sync implements Logger.
func (*NoOpLogger) Sync() error { return nil }
