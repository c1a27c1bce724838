// Package logger provides leveled logging for the editor server and client.
package logger

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level represents the logging level.
type Level int

const (
	LevelError Level = iota
	LevelInfo
	LevelDebug
)

var (
	currentLevel Level = LevelInfo
	fileWriter   io.Closer
)

// Init initializes the logger from the LOG_LEVEL environment variable.
// If logPath is non-empty, log lines are additionally written there
// (the optional crash/session log file named in the CLI surface).
func Init(logPath string) {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))
	switch levelStr {
	case "debug":
		currentLevel = LevelDebug
	case "error":
		currentLevel = LevelError
	default:
		currentLevel = LevelInfo
	}

	if logPath == "" {
		return
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("[ERROR] open log file %s: %v", logPath, err)
		return
	}
	fileWriter = f
	log.SetOutput(io.MultiWriter(os.Stderr, f))
}

// Close releases the optional log file.
func Close() {
	if fileWriter != nil {
		fileWriter.Close()
		fileWriter = nil
	}
}

// Debug logs a debug message (only if LOG_LEVEL=debug).
func Debug(format string, v ...interface{}) {
	if currentLevel >= LevelDebug {
		log.Printf("[DEBUG] "+format, v...)
	}
}

// Info logs an info message (if LOG_LEVEL=info or debug).
func Info(format string, v ...interface{}) {
	if currentLevel >= LevelInfo {
		log.Printf("[INFO] "+format, v...)
	}
}

// Error logs an error message (always logged).
func Error(format string, v ...interface{}) {
	log.Printf("[ERROR] "+format, v...)
}
