// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/liveballot/liveballot/cliparse"
	"github.com/liveballot/liveballot/handlers"
	"github.com/liveballot/liveballot/middleware"
	"github.com/liveballot/liveballot/session"
)

func NewRouter(registry *session.Registry, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	sessionHandler := handlers.NewSessionHandler(registry, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session lifecycle (voter, requires X-Voter-Token)
	mux.HandleFunc("GET /session", middleware.WithLogging(sessionHandler.GetStatus))
	mux.HandleFunc("POST /session/refresh", middleware.WithLogging(sessionHandler.Refresh))
	mux.HandleFunc("POST /session/selections", middleware.WithLogging(sessionHandler.Select))
	mux.HandleFunc("POST /session/submit", middleware.WithLogging(sessionHandler.Submit))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("liveballot API v1"))
	})

	return mux
}
