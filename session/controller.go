// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/liveballot/liveballot/ballot"
	"github.com/liveballot/liveballot/models"
	"github.com/liveballot/liveballot/store"
)

// Store is the slice of the data layer the session lifecycle consumes.
// *store.Store satisfies it; tests substitute a fake.
type Store interface {
	FindActiveSession() (*models.VotingSession, error)
	HasVoted(voterID, sessionID string) (bool, error)
	VotedOptionIDs(voterID, sessionID string) (map[string]bool, error)
	ResolveVoter(electionID, voterToken string) (models.VoterRecord, error)
	CreateVote(rec models.VoteRecord) error
}

// Voter-facing notices for the phases that show no ballots
const (
	NoticeNoSession    = "No voting session is open right now. Pull to refresh."
	NoticeAlreadyVoted = "You have already voted in this session."
	NoticeSubmitted    = "Your votes have been submitted."
)

var (
	ErrNotVoting    = errors.New("no ballot is open for selection")
	ErrUnknownItem  = errors.New("unknown voting item")
	ErrInvalidValue = errors.New("value is not an option for this item")
)

// Controller owns one voter's session lifecycle: the current phase,
// the fetched session, the resolved voter record, and the in-progress
// selections. All mutation happens under one mutex; the generation
// counter discards late results from superseded fetches and timers.
type Controller struct {
	store      Store
	voterToken string
	hold       time.Duration

	mu         sync.Mutex
	phase      string
	generation uint64
	fetching   bool
	session    *models.VotingSession
	voter      *models.VoterRecord
	voterErr   error
	selections map[string][]string // keyed by item ID
	errors     map[string]string   // keyed by item ID
	notice     string
	checkedAt  time.Time
}

func NewController(st Store, voterToken string, hold time.Duration) *Controller {
	return &Controller{
		store:      st,
		voterToken: voterToken,
		hold:       hold,
		phase:      models.PhaseWaiting,
		selections: make(map[string][]string),
		errors:     make(map[string]string),
	}
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Phase      string
	Session    *models.VotingSession
	Selections map[string][]string
	Errors     map[string]string
	Notice     string
	CheckedAt  time.Time
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase:      c.phase,
		Session:    c.session,
		Selections: make(map[string][]string, len(c.selections)),
		Errors:     make(map[string]string, len(c.errors)),
		Notice:     c.notice,
		CheckedAt:  c.checkedAt,
	}
	for itemID, sel := range c.selections {
		snap.Selections[itemID] = append([]string(nil), sel...)
	}
	for itemID, reason := range c.errors {
		snap.Errors[itemID] = reason
	}
	return snap
}

// Refresh drives the (any phase) -> session_starting -> voting/waiting
// transitions. Both the periodic tick and a manual pull-to-refresh land
// here; a trigger while a fetch is already in flight is dropped, and a
// fetch that completes after being superseded is discarded.
//
// Fetch failure is never fatal: the controller degrades to waiting and
// the voter can retry.
func (c *Controller) Refresh() {
	c.mu.Lock()
	if c.fetching {
		c.mu.Unlock()
		return
	}
	c.fetching = true
	c.generation++
	gen := c.generation
	c.phase = models.PhaseSessionStarting
	c.mu.Unlock()

	outcome := c.fetch()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetching = false
	if gen != c.generation {
		// Superseded while in flight; a newer trigger owns the state.
		return
	}
	c.checkedAt = time.Now()
	c.apply(outcome)
}

type fetchOutcome struct {
	session  *models.VotingSession
	voter    *models.VoterRecord
	voterErr error
	hasVoted bool
	err      error
}

func (c *Controller) fetch() fetchOutcome {
	session, err := c.store.FindActiveSession()
	if err != nil {
		return fetchOutcome{err: err}
	}

	var out fetchOutcome
	out.session = session

	// The voter record is resolved once per session; a failure here is
	// carried and surfaces as a data-integrity error at submit time.
	voter, err := c.store.ResolveVoter(session.ElectionID, c.voterToken)
	if err != nil {
		out.voterErr = err
	} else {
		out.voter = &voter
		hasVoted, err := c.store.HasVoted(voter.VoterID, session.ID)
		if err != nil {
			return fetchOutcome{err: err}
		}
		out.hasVoted = hasVoted
	}
	return out
}

func (c *Controller) apply(out fetchOutcome) {
	switch {
	case errors.Is(out.err, store.ErrNotFound):
		c.toWaiting(NoticeNoSession)
	case out.err != nil:
		slog.Error("session fetch failed", "error", out.err)
		c.toWaiting(NoticeNoSession)
	case out.hasVoted:
		// Never show a fresh ballot for a completed session, even
		// after a restart.
		c.toWaiting(NoticeAlreadyVoted)
	default:
		sameSession := c.session != nil && c.session.ID == out.session.ID
		c.session = out.session
		c.voter = out.voter
		c.voterErr = out.voterErr
		if !sameSession {
			c.selections = make(map[string][]string)
			c.errors = make(map[string]string)
		}
		c.notice = ""
		c.phase = models.PhaseVoting
	}
}

func (c *Controller) toWaiting(notice string) {
	c.phase = models.PhaseWaiting
	c.session = nil
	c.voter = nil
	c.voterErr = nil
	c.selections = make(map[string][]string)
	c.errors = make(map[string]string)
	c.notice = notice
}

// Select applies one voter action (tap an option or abstain) to an
// item's selection set and clears the item's recorded validation
// error; errors are re-derived at submit time, never held stale.
func (c *Controller) Select(itemID, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != models.PhaseVoting || c.session == nil {
		return ErrNotVoting
	}
	item := c.session.Item(itemID)
	if item == nil {
		return ErrUnknownItem
	}
	if value == models.Abstain {
		if !item.AllowAbstain {
			return ErrInvalidValue
		}
	} else if item.Option(value) == nil {
		return ErrInvalidValue
	}

	c.selections[itemID] = ballot.Apply(c.selections[itemID], *item, value)
	delete(c.errors, itemID)
	return nil
}
