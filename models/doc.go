// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SelectRequest: item_id, value

# Response Types

Types for JSON responses:

  - SessionStatusResponse: phase, session, selections, errors, notice, checked
  - SubmitResponse: phase, votes_cast, errors, message
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - VotingSession: one round of a live election with its items
  - VotingItem: one decision (statute or position) with options
  - VotingOption: a single choosable value
  - VoterRecord: roster identity and vote weight
  - VoteRecord: one immutable weighted vote for one option

# Constants

Session phases:

	PhaseWaiting         = "waiting"
	PhaseSessionStarting = "session_starting"
	PhaseVoting          = "voting"
	PhaseSubmitted       = "submitted"

Item kinds:

	KindStatute  = "statute"
	KindPosition = "position"

The reserved selection value:

	Abstain = "Abstain"

Abstain is mutually exclusive with real option values within one
item's selection set and never produces a vote record.
*/
package models
