package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ProdStage = "prod"

// Log is the global logger instance. It is a no-op until InitLogger runs.
var Log = zap.NewNop()

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level       string
	Stage       string
	EnableJSON  bool
	EnableColor bool
}

// InitLogger initializes the logger for the given stage, reading the level from LOG_LEVEL.
func InitLogger(stage string) {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	InitLoggerWithConfig(LoggerConfig{
		Level:       level,
		Stage:       stage,
		EnableJSON:  stage == ProdStage,
		EnableColor: stage != ProdStage,
	})
}

func InitLoggerWithConfig(config LoggerConfig) {
	level := parseLevel(config.Level)

	var zapConfig zap.Config
	if config.EnableJSON {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.TimeKey = "timestamp"
		zapConfig.EncoderConfig.MessageKey = "message"
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.InitialFields = map[string]interface{}{
			"service": "novadrive-api",
			"stage":   config.Stage,
		}
	} else {
		zapConfig = zap.NewDevelopmentConfig()
		if config.EnableColor {
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		}
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapConfig.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.DisableStacktrace = config.Stage == ProdStage && level > zapcore.DebugLevel

	logger, err := zapConfig.Build()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	Log = logger
}

func parseLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	}
	return zapcore.InfoLevel
}

func Debug(msg string, fields ...zap.Field) { Log.Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { Log.Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { Log.Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { Log.Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { Log.Fatal(msg, fields...) }

// Sync flushes buffered entries; call it before the process exits.
func Sync() {
	_ = Log.Sync()
}
