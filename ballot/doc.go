// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot holds the pure selection logic for voting items.

# Selection Engine

Apply mutates one item's in-progress selection set for a single voter
action (tap an option, tap abstain):

	sel = ballot.Apply(sel, item, "Alice")

Rules enforced structurally, on every action:

  - Abstain and real options are mutually exclusive
  - Abstain never appears for items with AllowAbstain=false
  - The set never grows past MaxSelections; when full, the oldest
    selection is evicted (FIFO) rather than blocking the new one
  - Re-activating a selected value deselects it (toggle)

# Validator

Validate runs once, immediately before submission, and reports a reason
per unsatisfied item:

	errs, ok := ballot.Validate(session, selections)

Reasons are ReasonEmptySelection (nothing chosen) and ReasonWrongCount
(set size is neither MaxSelections nor a lone permitted Abstain).

Neither function touches the network or storage.
*/
package ballot
