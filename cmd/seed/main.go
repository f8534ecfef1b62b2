package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/teamfit/internal/seed"
	"github.com/okian/teamfit/pkg/logger"
)

const defaultRunTimeout = 5 * time.Minute

func main() {
	var (
		baseURL = flag.String("url", seed.DefaultBaseURL, "Base URL of the service")
		timeout = flag.Duration("timeout", seed.DefaultTimeout, "HTTP request timeout")
		workers = flag.Int("workers", seed.DefaultWorkers, "Concurrent submissions")
		topN    = flag.Int("top", seed.DefaultTopN, "Teams requested per project when verifying")
		verify  = flag.Bool("verify", true, "Verify rankings after seeding")
		format  = flag.String("log-format", "text", "Log format: text or json")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		seed.ShowHelp()
		return
	}

	if err := logger.Init(logger.WithFormat(*format)); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL: *baseURL,
		Timeout: *timeout,
		Workers: *workers,
		TopN:    *topN,
		Verify:  *verify,
		Verbose: *verbose,
	}
	if _, err := seed.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "seed failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
