// Package logger provides the shared CLI logger. Output goes to stderr so
// command results on stdout stay machine-parseable.
package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	// LOG_LEVEL overrides the default; config can adjust it later via
	// SetLevel.
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		SetLevel(level)
	}
}

// SetLevel sets the logging level from a string (debug, info, warn, error).
// Unknown values leave the level unchanged.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn", "warning":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	}
}

// IsDebug returns true if debug logging is enabled.
func IsDebug() bool {
	return log.IsLevelEnabled(logrus.DebugLevel)
}

// Debug logs a debug message.
func Debug(format string, args ...interface{}) {
	log.Debugf(format, args...)
}

// Info logs an info message.
func Info(format string, args ...interface{}) {
	log.Infof(format, args...)
}

// Warn logs a warning message.
func Warn(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

// Error logs an error message.
func Error(format string, args ...interface{}) {
	log.Errorf(format, args...)
}
