package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Logger writes timestamped leveled entries to an optional log file and,
// for ERROR or when verbose is set, to stderr. Stdout is left alone
// because the status line refreshes there with carriage returns.
type Logger struct {
	level   string
	file    *os.File
	verbose bool
}

func New(level, logFile string, verbose bool) (*Logger, error) {
	l := &Logger{
		level:   level,
		verbose: verbose,
	}

	if logFile != "" {
		logDir := filepath.Dir(logFile)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] cannot create log directory %s: %v\n", logDir, err)
			return l, nil
		}

		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] cannot open log file %s: %v\n", logFile, err)
			return l, nil
		}
		l.file = f
	}

	return l, nil
}

func (l *Logger) Log(level, message string, fields ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	entry := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)

	if len(fields) > 0 {
		entry += fmt.Sprintf(" %v", fields)
	}

	if l.file != nil {
		l.file.WriteString(entry + "\n")
	}

	if l.verbose || level == "ERROR" {
		fmt.Fprintln(os.Stderr, entry)
	}
}

func (l *Logger) shouldLog(level string) bool {
	levels := map[string]int{"DEBUG": 0, "INFO": 1, "WARN": 2, "ERROR": 3}
	return levels[level] >= levels[l.level]
}

func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
