// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the liveballot API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(registry, cfg)

# Endpoints

Health:

	GET /health

Session lifecycle (voter, requires X-Voter-Token):

	GET  /session            - Current phase, ballot, and selections
	POST /session/refresh    - Re-check for an active session now
	POST /session/selections - Apply one selection action
	POST /session/submit     - Validate and persist the ballot

# Handler Initialization

The router creates handler instances with dependency injection:

	sessionHandler := handlers.NewSessionHandler(registry, cfg)

The registry owns a controller per voter token; the caller starts its
periodic refresh loop separately with registry.Run(ctx).
*/
package router
