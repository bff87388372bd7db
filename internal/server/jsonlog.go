// jsonlog.go - Leveled structured logging for handler-side events
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

func (l logLevel) String() string {
	switch l {
	case levelDebug:
		return "debug"
	case levelWarn:
		return "warn"
	case levelError:
		return "error"
	default:
		return "info"
	}
}

func parseLogLevel(s string) logLevel {
	switch s {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Logger writes leveled log entries, either as JSON objects (one per line,
// for production log shipping) or as a readable plain format.
type Logger struct {
	mu       sync.Mutex
	output   io.Writer
	minLevel logLevel
	json     bool
}

// NewLoggerFromEnv configures the logger from SRB_LOG_LEVEL and
// SRB_LOG_FORMAT; SRB_ENV=production forces JSON output.
func NewLoggerFromEnv() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: parseLogLevel(os.Getenv("SRB_LOG_LEVEL")),
		json:     os.Getenv("SRB_LOG_FORMAT") == "json" || os.Getenv("SRB_ENV") == "production",
	}
}

var defaultLogger = NewLoggerFromEnv()

type logEntry struct {
	Level   string         `json:"level"`
	Time    string         `json:"time"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (l *Logger) log(level logLevel, msg string, fields map[string]any, err error) {
	if level < l.minLevel {
		return
	}

	entry := logEntry{
		Level:   level.String(),
		Time:    time.Now().UTC().Format(time.RFC3339),
		Message: msg,
		Fields:  fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.json {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.output, string(data))
		return
	}

	fmt.Fprintf(l.output, "[%s] %s %s", entry.Level, entry.Time, entry.Message)
	for k, v := range entry.Fields {
		fmt.Fprintf(l.output, " %s=%v", k, v)
	}
	if entry.Error != "" {
		fmt.Fprintf(l.output, " error=%s", entry.Error)
	}
	fmt.Fprintln(l.output)
}

func (l *Logger) Debug(msg string, fields map[string]any) { l.log(levelDebug, msg, fields, nil) }
func (l *Logger) Info(msg string, fields map[string]any)  { l.log(levelInfo, msg, fields, nil) }
func (l *Logger) Warn(msg string, fields map[string]any)  { l.log(levelWarn, msg, fields, nil) }
func (l *Logger) Error(msg string, fields map[string]any, err error) {
	l.log(levelError, msg, fields, err)
}

// Package-level convenience wrappers around the default logger.

func Debug(msg string, fields map[string]any) { defaultLogger.Debug(msg, fields) }
func Info(msg string, fields map[string]any)  { defaultLogger.Info(msg, fields) }
func Warn(msg string, fields map[string]any)  { defaultLogger.Warn(msg, fields) }
func Error(msg string, fields map[string]any, err error) {
	defaultLogger.Error(msg, fields, err)
}
