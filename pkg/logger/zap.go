package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Logger is a no-op until InitLogger runs so packages can log from tests.
	Logger      = zap.NewNop()
	Sugar       = Logger.Sugar()
	atomicLevel zap.AtomicLevel
)

// ParseLevel maps a config string to a zap level, falling back to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zap.DebugLevel
	case "warn", "warning":
		return zap.WarnLevel
	case "error":
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

// InitLogger initializes the global logger
func InitLogger(isDevelopment bool, logPath string, logLevel string) error {
	var logger *zap.Logger
	var err error

	level := ParseLevel(logLevel)

	if isDevelopment {
		config := zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = fixedWidthLevel
		config.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
		config.EncoderConfig.CallerKey = "caller"
		config.EncoderConfig.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(formatCallerPath(caller))
		}
		config.Level = zap.NewAtomicLevelAt(level)
		atomicLevel = config.Level
		logger, err = config.Build(
			zap.AddCallerSkip(1), // skip the package-level wrappers
			zap.AddStacktrace(zapcore.ErrorLevel),
		)
	} else {
		logger, err = NewProductionLogger(logPath, level)
	}

	if err != nil {
		return err
	}

	Logger = logger
	Sugar = direct().Sugar()
	zap.ReplaceGlobals(direct())

	return nil
}

// NewProductionLogger creates a JSON file logger with rotation, teed to the console.
func NewProductionLogger(logPath string, level zapcore.Level) (*zap.Logger, error) {
	if logPath == "" {
		logPath = "./logs/reservewatch.log"
	}

	if err := createLogDir(logPath); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = fixedWidthLevel
	encoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
	encoderConfig.MessageKey = "msg"
	encoderConfig.LevelKey = "level"
	encoderConfig.CallerKey = "caller"
	encoderConfig.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(formatCallerPath(caller))
	}

	atomicLevel = zap.NewAtomicLevelAt(level)

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), w, atomicLevel)
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stdout), atomicLevel)

	return zap.New(zapcore.NewTee(fileCore, consoleCore),
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	), nil
}

// direct undoes the caller skip that the package-level helpers need, for
// loggers handed out to callers that log on them directly.
func direct() *zap.Logger {
	return Logger.WithOptions(zap.AddCallerSkip(-1))
}

// With creates a child logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return direct().With(fields...)
}

// Info logs a message at InfoLevel
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Error logs a message at ErrorLevel
func Error(msg string, fields ...zap.Field) {
	Logger.Error(msg, fields...)
}

// Warn logs a message at WarnLevel
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

// Debug logs a message at DebugLevel
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	if Logger != nil {
		return Logger.Sync()
	}
	return nil
}

// SetLevel dynamically changes the log level
func SetLevel(level zapcore.Level) {
	if atomicLevel != (zap.AtomicLevel{}) {
		atomicLevel.SetLevel(level)
	}
}

func fixedWidthLevel(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(fmt.Sprintf("%-5s", level.CapitalString()))
}

func createLogDir(logPath string) error {
	dir := filepath.Dir(logPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// formatCallerPath keeps package/file.go:line, padded for alignment.
func formatCallerPath(caller zapcore.EntryCaller) string {
	shortened := strings.TrimPrefix(caller.TrimmedPath(), "pkg/")
	shortened = strings.TrimPrefix(shortened, "cmd/")

	result := shortened
	if parts := strings.Split(shortened, "/"); len(parts) > 2 {
		result = strings.Join(parts[len(parts)-2:], "/")
	}

	const callerWidth = 24
	if len(result) > callerWidth {
		result = "..." + result[len(result)-(callerWidth-3):]
	}

	return fmt.Sprintf("%-*s", callerWidth, result)
}
