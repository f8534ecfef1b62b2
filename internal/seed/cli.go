package seed

import "os"

// ShowHelp prints usage information for the seed tool.
func ShowHelp() {
	os.Stdout.WriteString(`teamfit seed
============

Loads the demo organization (three teams, thirteen employees, six projects)
into a running teamfit service, waits for every embedding task and checks
the rankings it serves.

Usage:
  go run ./cmd/seed [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -timeout duration
        HTTP request timeout, longer than the task wait (default 35s)
  -workers int
        Concurrent submissions (default 4)
  -top int
        Teams requested per project when verifying (default 3)
  -verify
        Verify rankings after seeding (default true)
  -log-format string
        Log format: text or json (default "text")
  -verbose
        Enable verbose logging
  -help
        Show this help

Verification checks that each ranking is sorted by final score with ties
broken by team id, that every score component lies in [0, 1], that the
top-N list is a prefix of the full ranking and that the evaluation board
uses dense ranks. A best team other than the expected one is only logged.
`)
}
