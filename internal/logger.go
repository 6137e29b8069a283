package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

var (
	logLevel = LogLevelInfo
	logMu    sync.Mutex
	logger   = newConsoleLogger(os.Stderr)
	logFile  io.Closer
)

// newConsoleLogger builds a human-readable logger writing to w
func newConsoleLogger(w io.Writer) *zap.SugaredLogger {
	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.CallerKey = zapcore.OmitKey

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.DebugLevel,
	)
	return zap.New(core).Sugar()
}

// newFileLogger builds a JSON logger writing to a rotated file
func newFileLogger(rotator *lumberjack.Logger) *zap.SugaredLogger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.MessageKey = "message"
	encoderConfig.LevelKey = "level"
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(rotator),
		zap.DebugLevel,
	)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2)).Sugar()
}

// SetLogLevel sets the global log level
func SetLogLevel(level LogLevel) {
	logLevel = level
}

// SetVerbose enables verbose (debug) logging
func SetVerbose(verbose bool) {
	if verbose {
		SetLogLevel(LogLevelDebug)
	} else {
		SetLogLevel(LogLevelInfo)
	}
}

// SetLogOutput redirects console logging to w
func SetLogOutput(w io.Writer) {
	swapLogger(newConsoleLogger(w), nil)
}

// SetLogFile sends all logging to a rotated JSON file.
// The TUI owns the terminal while it runs, so it logs here instead of stderr.
func SetLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // Megabytes
		MaxBackups: 3,
		MaxAge:     14, // Days
		Compress:   true,
	}
	swapLogger(newFileLogger(rotator), rotator)
	return nil
}

// CloseLogger flushes buffered entries and releases any log file
func CloseLogger() {
	swapLogger(newConsoleLogger(os.Stderr), nil)
}

func swapLogger(next *zap.SugaredLogger, closer io.Closer) {
	logMu.Lock()
	defer logMu.Unlock()
	_ = logger.Sync()
	if logFile != nil {
		_ = logFile.Close()
	}
	logger = next
	logFile = closer
}

func current() *zap.SugaredLogger {
	logMu.Lock()
	defer logMu.Unlock()
	return logger
}

func logError(format string, args ...interface{}) {
	if logLevel >= LogLevelError {
		current().Errorf(format, args...)
	}
}

func logWarn(format string, args ...interface{}) {
	if logLevel >= LogLevelWarn {
		current().Warnf(format, args...)
	}
}

func logInfo(format string, args ...interface{}) {
	if logLevel >= LogLevelInfo {
		current().Infof(format, args...)
	}
}

func logDebug(format string, args ...interface{}) {
	if logLevel >= LogLevelDebug {
		current().Debugf(format, args...)
	}
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	logError(format, args...)
}

// LogWarn logs a warning message
func LogWarn(format string, args ...interface{}) {
	logWarn(format, args...)
}

// LogInfo logs an info message
func LogInfo(format string, args ...interface{}) {
	logInfo(format, args...)
}

// LogDebug logs a debug message
func LogDebug(format string, args ...interface{}) {
	logDebug(format, args...)
}
