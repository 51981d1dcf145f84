// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" (default) or "postgres"
  - RefreshInterval: Periodic session refresh interval (default: 15s)
  - SubmittedHold: How long the submitted phase is shown (default: 5s)

# CLI Flags

	-p        Server port
	-d        Database URL
	-t        Database type
	-refresh  Refresh interval (Go duration)
	-hold     Submitted hold (Go duration)

# Environment Variables

Flags fall back to environment variables:

	PORT             → -p
	DATABASE_URL     → -d
	DATABASE_TYPE    → -t
	REFRESH_INTERVAL → -refresh
	SUBMITTED_HOLD   → -hold

CLI flags take precedence over environment variables. main loads a
local .env file (if any) before parsing, so either source works in
development.

# Validation

ParseFlags returns an error if required values are missing or invalid:

  - DATABASE_URL must be provided
  - DATABASE_TYPE must be sqlite or postgres
  - durations must parse and be positive
*/
package cliparse
