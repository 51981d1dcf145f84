// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/liveballot/liveballot/ballot"
	"github.com/liveballot/liveballot/models"
	"github.com/liveballot/liveballot/store"
)

func isDuplicate(err error) bool {
	return errors.Is(err, store.ErrDuplicateVote)
}

// SubmitStatus classifies the outcome of a submission attempt.
type SubmitStatus int

const (
	// StatusSubmitted: every vote record written (possibly zero for an
	// all-abstain ballot); the controller advanced to submitted.
	StatusSubmitted SubmitStatus = iota

	// StatusWrongPhase: no ballot is open; nothing was attempted.
	StatusWrongPhase

	// StatusValidationFailed: one or more items unsatisfied; per-item
	// reasons recorded, no storage contact.
	StatusValidationFailed

	// StatusDataIntegrity: session, election, or voter-roster data is
	// structurally incomplete; no writes attempted or possible. Not
	// retryable without operator intervention.
	StatusDataIntegrity

	// StatusPartialFailure: some writes may have succeeded, some
	// failed. The controller stays in voting; a retry re-reads the
	// persisted records first, so it cannot duplicate votes.
	StatusPartialFailure
)

type SubmitResult struct {
	Status    SubmitStatus
	VotesCast int
	Errors    map[string]string // per-item validation reasons
}

// Submit validates the ballot and writes one vote record per selected
// non-abstain option, each carrying the voter's weight. Writes are
// independent creates, not a transaction; every pass first reads what
// is already persisted for this voter and session and skips it, which
// is what keeps retries after partial failure at-most-once.
func (c *Controller) Submit() SubmitResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != models.PhaseVoting || c.session == nil {
		return SubmitResult{Status: StatusWrongPhase}
	}

	errs, ok := ballot.Validate(*c.session, c.selections)
	if !ok {
		c.errors = errs
		return SubmitResult{Status: StatusValidationFailed, Errors: errs}
	}
	c.errors = make(map[string]string)

	// Voter identity and weight are resolved once per session and must
	// be present before any write is attempted.
	if c.voter == nil || c.voter.VoterID == "" || c.voter.Weight < 1 {
		slog.Error("submission blocked by incomplete voter data",
			"session_id", c.session.ID, "error", c.voterErr)
		return SubmitResult{Status: StatusDataIntegrity}
	}

	records, status := c.buildVoteRecords()
	if status != StatusSubmitted {
		return SubmitResult{Status: status}
	}

	written := 0
	for _, rec := range records {
		if err := c.store.CreateVote(rec); err != nil {
			// ErrDuplicateVote would have been filtered by the read
			// above; reaching it here means a concurrent writer beat
			// us, which is the same as already-written. Anything else
			// is a genuine partial failure.
			if !isDuplicate(err) {
				slog.Error("vote write failed", "session_id", c.session.ID,
					"option_id", rec.OptionID, "written", written, "error", err)
				return SubmitResult{Status: StatusPartialFailure, VotesCast: written}
			}
		}
		written++
	}

	c.phase = models.PhaseSubmitted
	c.notice = NoticeSubmitted
	c.scheduleHold()
	slog.Info("ballot submitted", "session_id", c.session.ID,
		"voter_id", c.voter.VoterID, "votes_cast", written)
	return SubmitResult{Status: StatusSubmitted, VotesCast: written}
}

// buildVoteRecords resolves selections to option IDs and drops what is
// already persisted. Called with the lock held.
func (c *Controller) buildVoteRecords() ([]models.VoteRecord, SubmitStatus) {
	persisted, err := c.store.VotedOptionIDs(c.voter.VoterID, c.session.ID)
	if err != nil {
		slog.Error("persisted-vote read failed", "session_id", c.session.ID, "error", err)
		return nil, StatusPartialFailure
	}

	var records []models.VoteRecord
	for _, item := range c.session.Items {
		for _, value := range c.selections[item.ID] {
			if value == models.Abstain {
				// An abstain produces no vote record.
				continue
			}
			opt := item.Option(value)
			if opt == nil {
				slog.Error("selection references missing option",
					"session_id", c.session.ID, "item_id", item.ID, "value", value)
				return nil, StatusDataIntegrity
			}
			if persisted[opt.ID] {
				continue
			}
			records = append(records, models.VoteRecord{
				ID:         uuid.NewString(),
				OptionID:   opt.ID,
				VoterID:    c.voter.VoterID,
				ElectionID: c.session.ElectionID,
				SessionID:  c.session.ID,
				ItemID:     item.ID,
				Weight:     c.voter.Weight,
			})
		}
	}
	return records, StatusSubmitted
}

// scheduleHold arranges the automatic submitted -> waiting transition.
// Called with the lock held; the generation check makes a timer from a
// superseded lifecycle a no-op.
func (c *Controller) scheduleHold() {
	c.generation++
	gen := c.generation
	time.AfterFunc(c.hold, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.generation || c.phase != models.PhaseSubmitted {
			return
		}
		c.toWaiting("")
	})
}
