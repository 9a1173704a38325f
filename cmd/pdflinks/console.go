// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger returns the console logger. Quiet mode raises the level to
// warn so only warnings and errors are shown.
func newLogger(w io.Writer, quiet bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "pdflinks",
		ReportTimestamp: false,
	})
	if quiet {
		logger.SetLevel(log.WarnLevel)
	}
	return logger
}
