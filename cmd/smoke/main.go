package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/gridiron/internal/smoke"
)

// Default configuration constants.
const (
	defaultRounds   = 2
	defaultWorkers  = 2
	defaultTimeout  = time.Minute
	defaultRunLimit = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:8000", "Base URL of the service")
		rounds     = flag.Int("rounds", defaultRounds, "Times each question is asked")
		workers    = flag.Int("workers", defaultWorkers, "Concurrent requests")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		clearFirst = flag.Bool("clear", false, "Clear the service cache first")
		output     = flag.String("output", "", "Write answers to this JSON file")
		logFile    = flag.String("log", "", "Also log to this file")
		verbose    = flag.Bool("verbose", false, "Log every answer")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := smoke.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunLimit)
	defer cancel()

	config := &smoke.Config{
		BaseURL:    *baseURL,
		Questions:  flag.Args(),
		Rounds:     *rounds,
		Workers:    *workers,
		Timeout:    *timeout,
		ClearFirst: *clearFirst,
		OutputFile: *output,
		Verbose:    *verbose,
	}

	if _, err := smoke.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Smoke test failed: " + err.Error() + "\n")
		cancel()
		stop()
		os.Exit(1)
	}
}
