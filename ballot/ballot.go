// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"github.com/liveballot/liveballot/models"
)

// Validation reasons
const (
	ReasonEmptySelection = "empty_selection"
	ReasonWrongCount     = "wrong_count"
)

// Apply returns the item's selection set after the voter activates value.
// The set is ordered oldest-first, which is what makes eviction FIFO.
//
// Abstain toggles: tapping it when it is the only selection clears the
// set, otherwise it replaces the whole set. A real option toggles off if
// already selected; when the set is full the oldest selection is evicted
// so the voter is never blocked from a new choice.
func Apply(sel []string, item models.VotingItem, value string) []string {
	if value == models.Abstain {
		if !item.AllowAbstain {
			// Abstain must never enter the set for this item.
			return sel
		}
		if len(sel) == 1 && sel[0] == models.Abstain {
			return nil
		}
		return []string{models.Abstain}
	}

	// A real option displaces an abstain.
	sel = remove(sel, models.Abstain)

	if contains(sel, value) {
		return remove(sel, value)
	}

	if item.MaxSelections > 0 && len(sel) >= item.MaxSelections {
		// Evict the oldest so the set keeps the most recent choices.
		sel = sel[1:]
	}
	return append(sel, value)
}

// Validate checks every item's selection set against its constraints.
// It returns a reason per unsatisfied item, keyed by item ID, and true
// iff every item is satisfied. An item is satisfied when its set has
// exactly MaxSelections real options, or is exactly {Abstain} on an
// item that allows abstaining.
func Validate(session models.VotingSession, selections map[string][]string) (map[string]string, bool) {
	errs := make(map[string]string)
	for _, item := range session.Items {
		sel := selections[item.ID]
		switch {
		case len(sel) == 0:
			errs[item.ID] = ReasonEmptySelection
		case isAbstainOnly(sel):
			if !item.AllowAbstain {
				errs[item.ID] = ReasonWrongCount
			}
		case len(sel) != item.MaxSelections:
			errs[item.ID] = ReasonWrongCount
		}
	}
	return errs, len(errs) == 0
}

func isAbstainOnly(sel []string) bool {
	return len(sel) == 1 && sel[0] == models.Abstain
}

func contains(sel []string, value string) bool {
	for _, v := range sel {
		if v == value {
			return true
		}
	}
	return false
}

func remove(sel []string, value string) []string {
	out := sel[:0:0]
	for _, v := range sel {
		if v != value {
			out = append(out, v)
		}
	}
	return out
}
