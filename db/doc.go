// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database schema creation.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and
indexes. The DDL runs unchanged on both postgres (lib/pq) and sqlite
(modernc.org/sqlite).

# Tables

  - election: Election metadata (administered externally)
  - voting_session: One time-bounded round per election; ongoing flag
  - voting_item: Statutes and positions within a session
  - voting_option: Ordered options per item
  - voter_roster: Voter identity and weight per election
  - vote: One record per voter per chosen option

# Relationships

	election 1──* voting_session
	voting_session 1──* voting_item
	voting_item 1──* voting_option
	election 1──* voter_roster
	voting_option 1──* vote

# Uniqueness

	voting_option (item_id, value)       one value per item
	vote (voter_id, session_id, option_id)  at-most-one-vote-per-option

The vote constraint is what makes concurrent duplicate submissions
detectable; the store surfaces violations as ErrDuplicateVote.
*/
package db
