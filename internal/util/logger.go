package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var ErrLogNotInitialized = errors.New("log object is not initialized yet")

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

type LoggerOptions struct {
	Dir      string
	FileName string
	Level    string
	// Console mirrors every entry to stderr.
	Console bool
	Rewrite bool
}

// ServiceLogger hands entries to a single writer goroutine through a buffered
// channel so request handlers never block on file I/O.
type ServiceLogger struct {
	logBuffer         chan logEntry
	handle            *os.File
	wg                *sync.WaitGroup
	mu                sync.RWMutex
	loggerInitialized bool
	zapLogger         *zap.Logger
}

type logEntry struct {
	level  int
	msg    string
	fields []zap.Field
}

func (m *ServiceLogger) Init(opts LoggerOptions) error {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	CheckAndCreateLogFolder(opts.Dir)

	flags := os.O_RDWR | os.O_CREATE | os.O_APPEND
	if opts.Rewrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	m.handle, err = os.OpenFile(filepath.Join(opts.Dir, opts.FileName), flags, 0666)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	m.zapLogger = newFileLogger(m.handle, level, opts.Console)
	m.wg = new(sync.WaitGroup)
	m.logBuffer = make(chan logEntry, LOG_BUFFER_SIZE)

	m.wg.Add(1)
	go m.logWriter()

	m.mu.Lock()
	m.loggerInitialized = true
	m.mu.Unlock()
	return nil
}

func newFileLogger(handle *os.File, level zapcore.Level, console bool) *zap.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(config)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(handle), level),
	}
	if console {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}
	return zap.New(zapcore.NewTee(cores...))
}

// ParseLevel maps a textual level ("debug", "info", ...) to zap. Empty means info.
func ParseLevel(level string) (zapcore.Level, error) {
	zapLevel := zapcore.InfoLevel
	if strings.TrimSpace(level) == "" {
		return zapLevel, nil
	}
	if err := zapLevel.Set(strings.ToLower(level)); err != nil {
		return zapLevel, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return zapLevel, nil
}

func (m *ServiceLogger) logWriter() {
	defer m.wg.Done()
	for entry := range m.logBuffer {
		switch entry.level {
		case LOG_LEVEL_ERROR:
			m.zapLogger.Error(entry.msg, entry.fields...)
		case LOG_LEVEL_WARN:
			m.zapLogger.Warn(entry.msg, entry.fields...)
		case LOG_LEVEL_DEBUG:
			m.zapLogger.Debug(entry.msg, entry.fields...)
		default:
			m.zapLogger.Info(entry.msg, entry.fields...)
		}
	}
	_ = m.zapLogger.Sync()
}

// Log queues one entry. It is a no-op returning ErrLogNotInitialized until
// Init succeeds, which lets tests pass a zero ServiceLogger.
func (m *ServiceLogger) Log(level int, msg string, fields ...zap.Field) error {
	if m == nil {
		return ErrLogNotInitialized
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.loggerInitialized {
		return ErrLogNotInitialized
	}
	m.logBuffer <- logEntry{level: level, msg: msg, fields: fields}
	return nil
}

func (m *ServiceLogger) Error(msg string, fields ...zap.Field) {
	_ = m.Log(LOG_LEVEL_ERROR, msg, fields...)
}

func (m *ServiceLogger) Warn(msg string, fields ...zap.Field) {
	_ = m.Log(LOG_LEVEL_WARN, msg, fields...)
}

func (m *ServiceLogger) Info(msg string, fields ...zap.Field) {
	_ = m.Log(LOG_LEVEL_INFO, msg, fields...)
}

func (m *ServiceLogger) Debug(msg string, fields ...zap.Field) {
	_ = m.Log(LOG_LEVEL_DEBUG, msg, fields...)
}

// DeInit drains pending entries and closes the log file.
func (m *ServiceLogger) DeInit() {
	m.mu.Lock()
	if !m.loggerInitialized {
		m.mu.Unlock()
		return
	}
	m.loggerInitialized = false
	close(m.logBuffer)
	m.mu.Unlock()

	m.wg.Wait()
	m.handle.Close()
}

// NewConsoleLogger builds a plain stderr logger for command line tools.
func NewConsoleLogger(level string) (*zap.Logger, error) {
	zapLevel, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zapLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.DisableStacktrace = true
	return config.Build()
}

func CheckAndCreateLogFolder(FolderNameWithPath string) {
	_, err := os.Stat(FolderNameWithPath)

	if os.IsNotExist(err) {
		err := os.MkdirAll(FolderNameWithPath, 0755)
		if err != nil {
			fmt.Println("Failed to create the log folder and Mkdir err :: ", err)
		}
	}
}
