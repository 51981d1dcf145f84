// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"

	"github.com/dustin/go-humanize"

	"github.com/liveballot/liveballot/cliparse"
	"github.com/liveballot/liveballot/middleware"
	"github.com/liveballot/liveballot/models"
	"github.com/liveballot/liveballot/session"
)

// SessionHandler exposes one voter's session lifecycle over HTTP.
// Every endpoint identifies the voter by the X-Voter-Token header and
// operates on that voter's controller.
type SessionHandler struct {
	registry *session.Registry
	cfg      cliparse.Config
}

func NewSessionHandler(registry *session.Registry, cfg cliparse.Config) *SessionHandler {
	return &SessionHandler{registry: registry, cfg: cfg}
}

// controller resolves the requesting voter's controller, writing a 401
// and returning nil when the token header is missing.
func (h *SessionHandler) controller(w http.ResponseWriter, r *http.Request) *session.Controller {
	token := r.Header.Get("X-Voter-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "X-Voter-Token header required")
		return nil
	}
	return h.registry.Controller(token)
}

func statusResponse(snap session.Snapshot) models.SessionStatusResponse {
	resp := models.SessionStatusResponse{
		Phase:      snap.Phase,
		Session:    snap.Session,
		Selections: snap.Selections,
		Errors:     snap.Errors,
		Notice:     snap.Notice,
	}
	if !snap.CheckedAt.IsZero() {
		resp.Checked = "checked " + humanize.Time(snap.CheckedAt)
	}
	return resp
}

// GetStatus handles GET /session
// Returns the voter's current phase, the active session if one is
// open, and the in-progress selections.
func (h *SessionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, statusResponse(c.Snapshot()))
}

// Refresh handles POST /session/refresh
// The voter's pull-to-refresh: re-checks for an active session
// immediately instead of waiting for the periodic tick.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	c.Refresh()
	middleware.JSONResponse(w, http.StatusOK, statusResponse(c.Snapshot()))
}

// Select handles POST /session/selections
// Applies one selection action (an option value or Abstain) to one
// voting item and returns the updated status.
func (h *SessionHandler) Select(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	var req models.SelectRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ItemID == "" || req.Value == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "item_id and value are required")
		return
	}

	if err := c.Select(req.ItemID, req.Value); err != nil {
		switch {
		case errors.Is(err, session.ErrNotVoting):
			middleware.ErrorResponse(w, http.StatusConflict, "No ballot is open for selection")
		case errors.Is(err, session.ErrUnknownItem), errors.Is(err, session.ErrInvalidValue):
			middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		default:
			middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to apply selection")
		}
		return
	}

	middleware.JSONResponse(w, http.StatusOK, statusResponse(c.Snapshot()))
}

// Submit handles POST /session/submit
// Validates the ballot and persists the vote records. Validation
// failures return 422 with per-item reasons; a partial write failure
// returns 502 and the voter retries the same submission.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	c := h.controller(w, r)
	if c == nil {
		return
	}

	res := c.Submit()
	switch res.Status {
	case session.StatusSubmitted:
		middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{
			Phase:     models.PhaseSubmitted,
			VotesCast: res.VotesCast,
			Message:   session.NoticeSubmitted,
		})
	case session.StatusWrongPhase:
		middleware.ErrorResponse(w, http.StatusConflict, "No ballot is open for submission")
	case session.StatusValidationFailed:
		middleware.JSONResponse(w, http.StatusUnprocessableEntity, models.SubmitResponse{
			Phase:   models.PhaseVoting,
			Errors:  res.Errors,
			Message: "Ballot incomplete. Fix the highlighted items and submit again.",
		})
	case session.StatusDataIntegrity:
		middleware.ErrorResponse(w, http.StatusInternalServerError,
			"Session or voter data is incomplete; contact the election operator")
	case session.StatusPartialFailure:
		middleware.JSONResponse(w, http.StatusBadGateway, models.SubmitResponse{
			Phase:     models.PhaseVoting,
			VotesCast: res.VotesCast,
			Message:   "Some votes could not be saved. Submit again to finish.",
		})
	default:
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Unknown submission outcome")
	}
}
