// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session drives the live voting session lifecycle for each
voter.

# Phases

A Controller cycles through four phases, never terminating:

	waiting → session_starting → voting → submitted → waiting
	                     └──────→ waiting (no session, fetch failed,
	                                       or voter already voted)

Refresh (periodic tick or pull-to-refresh, from any phase) starts the
session_starting fetch. The fetch looks up the ongoing session,
resolves the voter's roster record, and checks the voter's vote
history - a voter with existing vote records for the session never
sees a fresh ballot for it again.

# Selections

Select applies one voter action through the ballot package's selection
engine. Selections are held per item ID, oldest first. Re-entering
voting for the same session preserves in-progress selections; a new
session resets them.

# Submission

Submit validates all items, guards that the voter record is complete
(identity and weight resolved), then writes one vote record per
selected non-abstain option. Writes are independent, not transactional;
every pass reads the already-persisted option IDs first and skips
them, so a retry after partial failure converges without duplicates.
The store's unique constraint backs this up against concurrent
submissions. A fully abstained ballot writes nothing and still counts
as submitted.

After the configured hold, the controller drops back to waiting on its
own.

# Concurrency

One mutex per controller serializes refresh, select, submit, and
snapshot for one voter; different voters share nothing but the store.
At most one fetch is in flight per controller, and a generation
counter makes superseded fetch results and hold timers no-ops.

# Failure

Every failure path lands in voting (retry the submission) or waiting
(retry the refresh). Nothing here is fatal to the process.
*/
package session
