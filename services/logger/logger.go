package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Level định nghĩa các mức độ log
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel đọc mức log từ cấu hình, mặc định là info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

// Logger interface định nghĩa các phương thức logging
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// DefaultLogger implement Logger interface trên zerolog
type DefaultLogger struct {
	zl zerolog.Logger
}

// NewDefaultLogger tạo logger ghi ra console, dùng cho môi trường dev
func NewDefaultLogger(level Level) *DefaultLogger {
	out := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return NewLogger(out, level)
}

// NewJSONLogger ghi log dạng JSON
func NewJSONLogger(level Level) *DefaultLogger {
	return NewLogger(os.Stdout, level)
}

func NewLogger(w io.Writer, level Level) *DefaultLogger {
	zl := zerolog.New(w).Level(toZerolog(level)).With().Timestamp().Logger()
	return &DefaultLogger{zl: zl}
}

// NewNopLogger bỏ qua mọi log, dùng trong test
func NewNopLogger() *DefaultLogger {
	return &DefaultLogger{zl: zerolog.Nop()}
}

func toZerolog(level Level) zerolog.Level {
	switch level {
	case DebugLevel:
		return zerolog.DebugLevel
	case WarnLevel:
		return zerolog.WarnLevel
	case ErrorLevel:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Info log thông tin
func (l *DefaultLogger) Info(format string, v ...interface{}) {
	l.zl.Info().Msgf(format, v...)
}

func (l *DefaultLogger) Warn(format string, v ...interface{}) {
	l.zl.Warn().Msgf(format, v...)
}

// Error log lỗi
func (l *DefaultLogger) Error(format string, v ...interface{}) {
	l.zl.Error().Msgf(format, v...)
}

// Debug log debug
func (l *DefaultLogger) Debug(format string, v ...interface{}) {
	l.zl.Debug().Msgf(format, v...)
}

// ErrorWithStack log lỗi kèm stack trace
func (l *DefaultLogger) ErrorWithStack(err error) {
	if err == nil {
		return
	}
	l.zl.Error().Str("stack", fmt.Sprintf("%+v", errors.WithStack(err))).Msg(err.Error())
}

// With trả về logger con gắn thêm một trường
func (l *DefaultLogger) With(key, value string) *DefaultLogger {
	return &DefaultLogger{zl: l.zl.With().Str(key, value).Logger()}
}

// Zerolog dùng cho middleware cần ghi trường có cấu trúc
func (l *DefaultLogger) Zerolog() *zerolog.Logger {
	return &l.zl
}
