package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Logger type is interface for available logging methods.
type Logger interface {
	Trace(...interface{})
	Debug(...interface{})
	Info(...interface{})
	Warn(...interface{})
	Error(...interface{})
	Panic(...interface{})
	Fatal(...interface{})
}

// LoggerImpl is a struct that extends sirupsen/logrus.
type LoggerImpl struct {
	Logger         *log.Entry
	Service        string
	LogLevelStr    string
	PrintStackDump bool
	base           *log.Logger
	logFile        *os.File
}

// NewLogger will create a new logger implementation that writes to stderr.
// An unknown level falls back to info.
func NewLogger(serviceName string, level string, stackDumpOnPanic bool) *LoggerImpl {
	base := log.New()
	base.SetOutput(os.Stderr)
	level = strings.ToLower(level)
	logLevel, err := log.ParseLevel(level)
	if err != nil {
		logLevel = log.InfoLevel
		base.Warn("Unknown log level ", level, " - using info")
		level = "info"
	}
	base.SetLevel(logLevel)
	logger := base.WithFields(log.Fields{
		"service": serviceName,
	})
	return &LoggerImpl{Logger: logger, Service: serviceName, LogLevelStr: level, PrintStackDump: stackDumpOnPanic, base: base}
}

// NewLoggerWithFile is NewLogger plus a copy of every entry appended to logFile.
// Missing parent directories are created.
func NewLoggerWithFile(serviceName string, level string, stackDumpOnPanic bool, logFile string) (*LoggerImpl, error) {
	l := NewLogger(serviceName, level, stackDumpOnPanic)
	if logFile == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		return nil, errors.Wrapf(err, "unable to create directory for log file %q", logFile)
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open log file %q", logFile)
	}
	l.logFile = f
	l.base.SetOutput(io.MultiWriter(os.Stderr, f))
	return l, nil
}

// Trace log.
func (l *LoggerImpl) Trace(message ...interface{}) {
	l.Logger.Trace(message...)
}

// Debug log.
func (l *LoggerImpl) Debug(message ...interface{}) {
	l.Logger.Debug(message...)
}

// Info log.
func (l *LoggerImpl) Info(message ...interface{}) {
	l.Logger.Info(message...)
}

// Warn log.
func (l *LoggerImpl) Warn(message ...interface{}) {
	l.Logger.Warn(message...)
}

// Error (with stack trace in trace mode or if the user asked for stack dumps).
func (l *LoggerImpl) Error(message ...interface{}) {
	if l.LogLevelStr == "trace" || l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Error(message...)
	} else {
		l.Logger.Error(message...)
	}
}

// Panic (with stack trace in debug mode, or if user explicitly sets PrintStackDump).
func (l *LoggerImpl) Panic(message ...interface{}) {
	if l.PrintStackDump {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Panic(message...)
	} else {
		l.Logger.Panic(message...)
	}
}

// Fatal (with stack trace in debug mode).
// This causes exit(1) without a stack dump by default.
func (l *LoggerImpl) Fatal(message ...interface{}) {
	if l.LogLevelStr == "debug" || l.LogLevelStr == "trace" {
		l.Logger.WithField("stackTrace", fmt.Sprintf("%s", debug.Stack())).Fatal(message...)
	} else {
		l.Logger.Fatal(message...)
	}
}

// SetOutput will set the log output to the Writer supplied.
func (l *LoggerImpl) SetOutput(writer io.Writer) {
	l.base.SetOutput(writer)
}

// SetJSONFormat switches output to JSON lines, used when running in lambda mode.
func (l *LoggerImpl) SetJSONFormat() {
	l.base.SetFormatter(&log.JSONFormatter{})
}

// WithField returns a copy of the logger with the extra field attached to every entry.
func (l *LoggerImpl) WithField(key string, value interface{}) *LoggerImpl {
	c := *l
	c.Logger = l.Logger.WithField(key, value)
	return &c
}

// Close releases the log file if there is one.
func (l *LoggerImpl) Close() error {
	if l.logFile == nil {
		return nil
	}
	l.base.SetOutput(os.Stderr)
	err := l.logFile.Close()
	l.logFile = nil
	return err
}
