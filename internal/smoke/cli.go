package smoke

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/gridiron/pkg/logger"
)

// SetupLogging configures logging to the console and, when logFile is set,
// to that file as well.
func SetupLogging(logFile string, verbose bool) error {
	var out io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithOutput(out)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	os.Stdout.WriteString(`Gridiron Smoke Tool
===================

Asks a running gridiron service the canonical NFL questions and checks
every answer is well formed.

Usage:
  go run ./cmd/smoke [options] [question ...]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -rounds int
        Times each question is asked (default 2)
  -workers int
        Concurrent requests (default 2)
  -timeout duration
        HTTP request timeout (default 1m0s)
  -clear
        Clear the service cache first
  -output string
        Write answers to this JSON file
  -log string
        Also log to this file
  -verbose
        Log every answer
  -help
        Show this help message

Examples:
  # Ask the default questions twice, the second round from cache
  go run ./cmd/smoke -clear

  # Ask your own question
  go run ./cmd/smoke -rounds 1 "Who is hurt on the Bills in 2024?"
`)
}
