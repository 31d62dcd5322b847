package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level orders log severities; messages below the configured level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

type Logger struct {
	serviceName string
}

var (
	// INFO_EMOJI Emoji constants
	INFO_EMOJI    = "ℹ️ "
	SUCCESS_EMOJI = "✅ "
	WARN_EMOJI    = "⚠️ "
	ERROR_EMOJI   = "❌ "
	DEBUG_EMOJI   = "🔍 "
)

var (
	outMu    sync.Mutex
	out      io.Writer = os.Stdout
	minLevel           = LevelInfo
)

func New(serviceName string) *Logger {
	return &Logger{
		serviceName: serviceName,
	}
}

// SetOutput redirects every logger in the process. Tests pass io.Discard.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	out = w
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	outMu.Lock()
	defer outMu.Unlock()
	minLevel = l
}

// ParseLevel maps LOG_LEVEL values; unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "off", "none":
		return LevelSilent
	default:
		return LevelInfo
	}
}

func (l *Logger) formatMessage(level, emoji, msg string) string {
	_, file, line, _ := runtime.Caller(3)
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fileName := filepath.Base(file)

	return fmt.Sprintf("%s | %s | %s | %s:%d | %s | %s",
		emoji,
		timestamp,
		level,
		fileName,
		line,
		l.serviceName,
		msg,
	)
}

func (l *Logger) write(lvl Level, name, emoji string, attr color.Attribute, msg string) {
	outMu.Lock()
	defer outMu.Unlock()
	if lvl < minLevel {
		return
	}
	formatted := l.formatMessage(name, emoji, msg)
	_, _ = color.New(attr).Fprintln(out, formatted)
}

func (l *Logger) Info(msg string, args ...interface{}) {
	l.write(LevelInfo, "INFO", INFO_EMOJI, color.FgCyan, fmt.Sprintf(msg, args...))
}

func (l *Logger) Success(msg string, args ...interface{}) {
	l.write(LevelInfo, "SUCCESS", SUCCESS_EMOJI, color.FgGreen, fmt.Sprintf(msg, args...))
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	l.write(LevelWarn, "WARN", WARN_EMOJI, color.FgYellow, fmt.Sprintf(msg, args...))
}

// Error logs msg with err appended and returns err wrapped with msg.
func (l *Logger) Error(msg string, err error, args ...interface{}) error {
	text := fmt.Sprintf(msg, args...)
	l.write(LevelError, "ERROR", ERROR_EMOJI, color.FgRed, fmt.Sprintf("%s: %v", text, err))
	return fmt.Errorf("%s: %w", text, err)
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	l.write(LevelDebug, "DEBUG", DEBUG_EMOJI, color.FgMagenta, fmt.Sprintf(msg, args...))
}
