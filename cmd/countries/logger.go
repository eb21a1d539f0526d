package main

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// newLogger returns a slog logger backed by a charmbracelet text handler.
func newLogger(logLevel string, writer io.Writer) *slog.Logger {
	if writer == nil {
		writer = os.Stderr
	}

	reportTimestamp := false
	lvl := log.WarnLevel
	switch strings.ToLower(logLevel) {
	case "debug":
		reportTimestamp = true
		lvl = log.DebugLevel
	case "info":
		lvl = log.InfoLevel
	case "warn", "warning":
		lvl = log.WarnLevel
	case "error":
		lvl = log.ErrorLevel
	}

	return slog.New(log.NewWithOptions(writer, log.Options{
		ReportTimestamp: reportTimestamp,
		Level:           lvl,
		Prefix:          "countries",
	}))
}
