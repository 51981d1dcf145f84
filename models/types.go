// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Session lifecycle phases
const (
	PhaseWaiting         = "waiting"
	PhaseSessionStarting = "session_starting"
	PhaseVoting          = "voting"
	PhaseSubmitted       = "submitted"
)

// Voting item kinds
const (
	KindStatute  = "statute"
	KindPosition = "position"
)

// Abstain is the reserved selection value meaning "no choice". It is
// mutually exclusive with real option values and never produces a vote
// record on submission.
const Abstain = "Abstain"

// Request types

type SelectRequest struct {
	ItemID string `json:"item_id"`
	Value  string `json:"value"`
}

// Response types

type SessionStatusResponse struct {
	Phase      string              `json:"phase"`
	Session    *VotingSession      `json:"session,omitempty"`
	Selections map[string][]string `json:"selections"`
	Errors     map[string]string   `json:"errors,omitempty"`
	Notice     string              `json:"notice,omitempty"`
	Checked    string              `json:"checked,omitempty"` // e.g. "12 seconds ago"
}

type SubmitResponse struct {
	Phase     string            `json:"phase"`
	VotesCast int               `json:"votes_cast"`
	Errors    map[string]string `json:"errors,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// Domain types

type VotingOption struct {
	ID     string `json:"id"`
	ItemID string `json:"item_id"`
	Value  string `json:"value"`
}

type VotingItem struct {
	ID            string         `json:"id"`
	SessionID     string         `json:"session_id"`
	Kind          string         `json:"kind"`
	Title         string         `json:"title"`
	Options       []VotingOption `json:"options"`
	MaxSelections int            `json:"max_selections"`
	AllowAbstain  bool           `json:"allow_abstain"`
}

type VotingSession struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	ElectionID string       `json:"election_id"`
	Items      []VotingItem `json:"items"`
}

type VoterRecord struct {
	VoterID string  `json:"voter_id"`
	Weight  float64 `json:"weight"`
}

// VoteRecord is persisted exactly once per chosen non-abstain option and
// never mutated or deleted afterwards.
type VoteRecord struct {
	ID         string  `json:"id"`
	OptionID   string  `json:"option_id"`
	VoterID    string  `json:"voter_id"`
	ElectionID string  `json:"election_id"`
	SessionID  string  `json:"session_id"`
	ItemID     string  `json:"item_id"`
	Weight     float64 `json:"weight"`
}

// Option returns the option with the given value, or nil if the item
// has no such option.
func (i VotingItem) Option(value string) *VotingOption {
	for idx := range i.Options {
		if i.Options[idx].Value == value {
			return &i.Options[idx]
		}
	}
	return nil
}

// Item returns the item with the given ID, or nil.
func (s VotingSession) Item(itemID string) *VotingItem {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			return &s.Items[idx]
		}
	}
	return nil
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
