// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides random identifier and voter token generation.

# IDs

GenerateID returns a random hex ID of the given byte length:

	id, err := auth.GenerateID(16)

Used for seeding election and session rows.

# Voter Tokens

GenerateVoterToken returns a 192-bit URL-safe token:

	token, err := auth.GenerateVoterToken()

The external membership system issues these tokens to voters; the
voter_roster table maps a token to a voter identity and weight for one
election. This service only ever consumes the mapping (via the
X-Voter-Token header) - who gets a token, and why, is decided outside.
*/
package auth
