// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/liveballot/liveballot/models"
)

var (
	// ErrNotFound means no session is currently flagged ongoing.
	ErrNotFound = errors.New("no active session")

	// ErrDuplicateVote means a vote for this (voter, session, option)
	// already exists; the write was a no-op.
	ErrDuplicateVote = errors.New("duplicate vote")

	// ErrNoVoterRecord means the roster has no entry for the voter in
	// the session's election.
	ErrNoVoterRecord = errors.New("no voter record")

	// ErrMalformedSession means the persisted session data violates a
	// structural invariant and cannot be voted on.
	ErrMalformedSession = errors.New("malformed session data")

	// ErrMalformedRoster means the roster entry exists but is unusable
	// (e.g. weight below 1).
	ErrMalformedRoster = errors.New("malformed voter record")
)

// Store is the data access layer for sessions, the voter roster, and
// vote records. All election data is read-only here; votes are
// append-only.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindActiveSession returns the session currently flagged ongoing,
// with its items and options in display order. Returns ErrNotFound
// when no session is ongoing, ErrMalformedSession when the stored data
// violates a structural invariant.
func (s *Store) FindActiveSession() (*models.VotingSession, error) {
	var session models.VotingSession
	err := s.db.QueryRow(`
		SELECT id, election_id, name FROM voting_session WHERE ongoing = TRUE
	`).Scan(&session.ID, &session.ElectionID, &session.Name)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active session: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, kind, title, max_selections, allow_abstain
		FROM voting_item
		WHERE session_id = $1
		ORDER BY position, id
	`, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	itemIndex := make(map[string]int)
	for rows.Next() {
		var item models.VotingItem
		if err := rows.Scan(&item.ID, &item.SessionID, &item.Kind, &item.Title,
			&item.MaxSelections, &item.AllowAbstain); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		itemIndex[item.ID] = len(session.Items)
		session.Items = append(session.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read items: %w", err)
	}

	optRows, err := s.db.Query(`
		SELECT o.id, o.item_id, o.value
		FROM voting_option o
		JOIN voting_item i ON i.id = o.item_id
		WHERE i.session_id = $1
		ORDER BY o.position, o.id
	`, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query options: %w", err)
	}
	defer optRows.Close()

	for optRows.Next() {
		var opt models.VotingOption
		if err := optRows.Scan(&opt.ID, &opt.ItemID, &opt.Value); err != nil {
			return nil, fmt.Errorf("failed to scan option: %w", err)
		}
		idx, found := itemIndex[opt.ItemID]
		if !found {
			return nil, fmt.Errorf("%w: option %s references unknown item %s",
				ErrMalformedSession, opt.ID, opt.ItemID)
		}
		session.Items[idx].Options = append(session.Items[idx].Options, opt)
	}
	if err := optRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read options: %w", err)
	}

	if err := validateSession(&session); err != nil {
		return nil, err
	}
	return &session, nil
}

// validateSession enforces structural invariants at the store boundary
// so the lifecycle code never sees an unvotable session.
func validateSession(session *models.VotingSession) error {
	if session.ElectionID == "" {
		return fmt.Errorf("%w: session %s has no election", ErrMalformedSession, session.ID)
	}
	for _, item := range session.Items {
		if item.MaxSelections < 1 {
			return fmt.Errorf("%w: item %s has max_selections %d",
				ErrMalformedSession, item.ID, item.MaxSelections)
		}
		if len(item.Options) == 0 {
			return fmt.Errorf("%w: item %s has no options", ErrMalformedSession, item.ID)
		}
		seen := make(map[string]bool, len(item.Options))
		for _, opt := range item.Options {
			if opt.Value == models.Abstain {
				return fmt.Errorf("%w: item %s uses the reserved value %q",
					ErrMalformedSession, item.ID, models.Abstain)
			}
			if seen[opt.Value] {
				return fmt.Errorf("%w: item %s repeats option value %q",
					ErrMalformedSession, item.ID, opt.Value)
			}
			seen[opt.Value] = true
		}
	}
	return nil
}

// HasVoted reports whether any vote record exists for the voter in the
// session. Note that a fully abstained ballot leaves no records, so
// such a voter is indistinguishable from one who never voted.
func (s *Store) HasVoted(voterID, sessionID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(
			SELECT 1 FROM vote WHERE voter_id = $1 AND session_id = $2
		)
	`, voterID, sessionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query vote history: %w", err)
	}
	return exists, nil
}

// VotedOptionIDs returns the option IDs already persisted for the voter
// in the session. The submission coordinator reads this before every
// write pass so a retry after partial failure cannot duplicate votes.
func (s *Store) VotedOptionIDs(voterID, sessionID string) (map[string]bool, error) {
	rows, err := s.db.Query(`
		SELECT option_id FROM vote WHERE voter_id = $1 AND session_id = $2
	`, voterID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query persisted votes: %w", err)
	}
	defer rows.Close()

	voted := make(map[string]bool)
	for rows.Next() {
		var optionID string
		if err := rows.Scan(&optionID); err != nil {
			return nil, fmt.Errorf("failed to scan persisted vote: %w", err)
		}
		voted[optionID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read persisted votes: %w", err)
	}
	return voted, nil
}

// ResolveVoter looks up the voter's roster entry for an election.
// Returns ErrNoVoterRecord when the roster has no entry for the token,
// ErrMalformedRoster when the entry carries an unusable weight.
func (s *Store) ResolveVoter(electionID, voterToken string) (models.VoterRecord, error) {
	var voter models.VoterRecord
	err := s.db.QueryRow(`
		SELECT voter_id, weight FROM voter_roster
		WHERE election_id = $1 AND voter_token = $2
	`, electionID, voterToken).Scan(&voter.VoterID, &voter.Weight)

	if err == sql.ErrNoRows {
		return models.VoterRecord{}, ErrNoVoterRecord
	}
	if err != nil {
		return models.VoterRecord{}, fmt.Errorf("failed to resolve voter: %w", err)
	}
	if voter.Weight < 1 {
		return models.VoterRecord{}, fmt.Errorf("%w: voter %s has weight %v",
			ErrMalformedRoster, voter.VoterID, voter.Weight)
	}
	return voter, nil
}

// CreateVote inserts one vote record. Returns ErrDuplicateVote when a
// record for the same (voter, session, option) already exists; the
// caller treats that as already written.
func (s *Store) CreateVote(rec models.VoteRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO vote (id, option_id, voter_id, election_id, session_id, item_id, weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, rec.ID, rec.OptionID, rec.VoterID, rec.ElectionID, rec.SessionID, rec.ItemID,
		rec.Weight, time.Now())

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateVote
		}
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// isUniqueViolation recognizes the constraint-violation error shapes of
// both supported drivers.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value violates unique constraint") // pq
}
