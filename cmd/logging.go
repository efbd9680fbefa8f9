package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/zpam/classifier/pkg/config"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[string]int{
	"debug": levelDebug,
	"info":  levelInfo,
	"warn":  levelWarn,
	"error": levelError,
}

// Logger filters messages below the configured level
type Logger struct {
	level  int
	out    *log.Logger
	closer io.Closer
}

// NewLogger writes to the configured file, or stderr when none is set
func NewLogger(cfg config.LoggingConfig) (*Logger, error) {
	level, ok := levelNames[cfg.Level]
	if !ok {
		return nil, fmt.Errorf("invalid logging level: %s", cfg.Level)
	}

	var w io.Writer = os.Stderr
	var closer io.Closer
	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %v", err)
		}
		w, closer = file, file
	}

	return &Logger{
		level:  level,
		out:    log.New(w, "classifier ", log.LstdFlags),
		closer: closer,
	}, nil
}

func (l *Logger) logf(level int, tag, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf(tag+" "+format, args...)
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(levelDebug, "DEBUG", format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.logf(levelInfo, "INFO", format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.logf(levelWarn, "WARN", format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(levelError, "ERROR", format, args...) }

// Close releases the log file, if any
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}
