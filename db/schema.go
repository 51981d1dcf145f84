// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
//
// The DDL is kept portable across postgres and sqlite: no JSONB, no
// NOW() defaults, timestamps written from Go.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Elections (created and administered externally; read-only here)
CREATE TABLE IF NOT EXISTS election (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL
);

-- Voting sessions; at most one is flagged ongoing at a time
CREATE TABLE IF NOT EXISTS voting_session (
    id TEXT PRIMARY KEY,
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    name TEXT NOT NULL,
    ongoing BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_voting_session_ongoing ON voting_session(ongoing);
CREATE INDEX IF NOT EXISTS idx_voting_session_election ON voting_session(election_id);

-- Items (statutes to ratify, positions to fill)
CREATE TABLE IF NOT EXISTS voting_item (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES voting_session(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('statute', 'position')),
    title TEXT NOT NULL,
    max_selections INTEGER NOT NULL,
    allow_abstain BOOLEAN NOT NULL DEFAULT FALSE,
    position INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_voting_item_session ON voting_item(session_id);

-- Options per item; value is unique within the item
CREATE TABLE IF NOT EXISTS voting_option (
    id TEXT PRIMARY KEY,
    item_id TEXT NOT NULL REFERENCES voting_item(id) ON DELETE CASCADE,
    value TEXT NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    UNIQUE (item_id, value)
);

CREATE INDEX IF NOT EXISTS idx_voting_option_item ON voting_option(item_id);

-- Voter roster; one record per signed-in identity per election
CREATE TABLE IF NOT EXISTS voter_roster (
    election_id TEXT NOT NULL REFERENCES election(id) ON DELETE CASCADE,
    voter_token TEXT NOT NULL,
    voter_id TEXT NOT NULL,
    weight REAL NOT NULL DEFAULT 1,
    PRIMARY KEY (election_id, voter_token)
);

CREATE INDEX IF NOT EXISTS idx_voter_roster_election ON voter_roster(election_id);

-- Votes; the unique constraint is the at-most-once arbiter across voters
CREATE TABLE IF NOT EXISTS vote (
    id TEXT PRIMARY KEY,
    option_id TEXT NOT NULL REFERENCES voting_option(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL,
    election_id TEXT NOT NULL,
    session_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    weight REAL NOT NULL,
    created_at TIMESTAMP,
    UNIQUE (voter_id, session_id, option_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_session_voter ON vote(session_id, voter_id);
CREATE INDEX IF NOT EXISTS idx_vote_option ON vote(option_id);
`
