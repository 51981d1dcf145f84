// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the liveballot API server.

liveballot runs the voting rounds of a live election event: a session
opens, every rostered voter fills in one ballot per voting item, and
each submission becomes immutable weighted vote records.

# Starting the Server

The server requires environment variables or CLI flags for
configuration:

	DATABASE_URL=postgres://... go run main.go

Or with flags:

	go run main.go -p 3318 -t sqlite -d liveballot.db

A .env file in the working directory is loaded if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): Connection string, or a file path for sqlite
  - DATABASE_TYPE (-t): "sqlite" or "postgres" (default: sqlite)

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - REFRESH_INTERVAL (-refresh): Periodic session re-check (default: 15s)
  - SUBMITTED_HOLD (-hold): Submitted-phase display time (default: 5s)

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers for the session lifecycle
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - session: Per-voter phase state machine and submission coordinator
  - ballot: Selection-set and validation rules
  - store: SQL queries over the election schema
  - db: Schema creation
  - auth: Token generation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
