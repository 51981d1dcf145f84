// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the liveballot API.

# Handler Types

SessionHandler exposes one voter's session lifecycle. It is created
with the controller registry and config:

	sessionHandler := handlers.NewSessionHandler(registry, cfg)

Every endpoint identifies the voter by the X-Voter-Token header and
returns 401 when it is missing.

# Voting Flow

A voter moves through four phases: waiting → session_starting →
voting → submitted → waiting.

	GET  /session            → GetStatus (phase, ballot, selections)
	POST /session/refresh    → Refresh (pull-to-refresh)
	POST /session/selections → Select (one option tap or abstain)
	POST /session/submit     → Submit (validate and persist)

# Submission Outcomes

Submit maps the coordinator's outcome onto HTTP status codes:

	200 - every vote record written, phase is submitted
	409 - no ballot open (wrong phase)
	422 - ballot incomplete, per-item reasons in errors
	500 - session or roster data structurally broken
	502 - partial write failure; the voter submits again and the
	      retry skips records that already landed

A 502 never duplicates votes: every submission pass re-reads the
voter's persisted records before writing.
*/
package handlers
