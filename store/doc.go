// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the data access layer for the voting session service.

# Opening

Open selects the driver from the configured database type:

	conn, err := store.Open(cfg) // sqlite or postgres
	s := store.New(conn)

Production runs on postgres (lib/pq); sqlite (modernc.org/sqlite, no
cgo) backs local development and the test suite. All SQL in this
package is written to run unchanged on both.

# Operations

  - FindActiveSession: the single ongoing session with items + options
  - HasVoted: whether a voter left any vote record in a session
  - VotedOptionIDs: persisted options, read before every write pass
  - ResolveVoter: roster entry (voter ID and weight) for an election
  - CreateVote: append-only vote insert with duplicate detection

# Errors

Sentinel errors distinguish the outcomes callers branch on:

	ErrNotFound          no ongoing session (a normal outcome)
	ErrDuplicateVote     vote already persisted; write was a no-op
	ErrNoVoterRecord     roster has no entry for the voter
	ErrMalformedSession  stored session violates a structural invariant
	ErrMalformedRoster   roster entry unusable (weight below 1)

Session data is validated here, at the boundary, so the lifecycle code
only ever sees structurally sound sessions.
*/
package store
