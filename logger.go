package mqttsn

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewFileLogger builds a zap.Logger that rotates through lumberjack, for
// callers that want the protocol engine's log stream on disk independent of
// the host application's own logging. A Session built without WithLogger
// falls back to zap.NewNop().
func NewFileLogger(path string, maxSizeMB, maxBackups, maxAgeDays int) *zap.Logger {
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	})
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, writer, zap.InfoLevel)
	return zap.New(core)
}
