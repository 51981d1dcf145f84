// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/liveballot/liveballot/models"
	"github.com/liveballot/liveballot/testutil"
)

// TestConcurrentBallotSubmissions verifies that simultaneous submissions
// from different voters don't cause data corruption or duplicates
func TestConcurrentBallotSubmissions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	h := newTestHandler(conn)

	electionID := testutil.CreateTestElection(t, conn, "Annual Meeting")
	sessionID := testutil.CreateTestSession(t, conn, electionID, "Round 1", true)
	itemID := testutil.AddTestItem(t, conn, sessionID, models.KindPosition, "President", 1, true)
	testutil.AddTestOption(t, conn, itemID, "Alice")
	testutil.AddTestOption(t, conn, itemID, "Bob")

	numVoters := 10
	voterTokens := make([]string, numVoters)
	for i := 0; i < numVoters; i++ {
		voterTokens[i] = testutil.CreateTestVoter(t, conn,
			electionID, fmt.Sprintf("member-%d", i), 1)
	}

	// Each voter picks a candidate, then everyone submits at once
	for i, token := range voterTokens {
		value := "Alice"
		if i%2 == 1 {
			value = "Bob"
		}
		testutil.AssertStatus(t, postSelect(t, h, token, itemID, value), http.StatusOK)
	}

	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(voterIdx int) {
			defer wg.Done()

			w := postSubmit(t, h, voterTokens[voterIdx])
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()

	if int(successCount.Load()) != numVoters {
		t.Errorf("Expected %d successful submissions, got %d", numVoters, successCount.Load())
	}

	// Exactly one vote row per voter
	var voteCount int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE session_id = $1`, sessionID).Scan(&voteCount); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != numVoters {
		t.Errorf("Expected %d vote rows, got %d", numVoters, voteCount)
	}

	var uniqueVoters int
	if err := conn.QueryRow(`SELECT COUNT(DISTINCT voter_id) FROM vote WHERE session_id = $1`, sessionID).Scan(&uniqueVoters); err != nil {
		t.Fatalf("Failed to count unique voters: %v", err)
	}
	if uniqueVoters != numVoters {
		t.Errorf("Expected %d unique voters, got %d (possible duplicates)", numVoters, uniqueVoters)
	}
}

// TestConcurrentSubmitSameVoter verifies that one voter hammering the
// submit endpoint from several tabs still writes each vote once
func TestConcurrentSubmitSameVoter(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	testutil.AssertStatus(t, postSelect(t, h, f.voterToken, f.positionID, "Alice"), http.StatusOK)
	testutil.AssertStatus(t, postSelect(t, h, f.voterToken, f.statuteID, "Yes"), http.StatusOK)

	numAttempts := 5
	var successCount atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := postSubmit(t, h, f.voterToken)
			if w.Code == http.StatusOK {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Exactly one attempt wins; the rest hit the phase guard
	if successCount.Load() != 1 {
		t.Errorf("Expected exactly 1 successful submission, got %d", successCount.Load())
	}

	var voteCount int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE voter_id = $1`, "member-1").Scan(&voteCount); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	if voteCount != 2 {
		t.Errorf("Expected 2 vote rows, got %d", voteCount)
	}
}

// TestConcurrentSelectAndStatus exercises selection writes racing
// against status reads for the same voter
func TestConcurrentSelectAndStatus(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			if n%2 == 0 {
				value := "Alice"
				if n%4 == 0 {
					value = "Bob"
				}
				postSelect(t, h, f.voterToken, f.positionID, value)
			} else {
				getStatus(t, h, f.voterToken)
			}
		}(i)
	}
	wg.Wait()

	// The selection set stays within the item's bound
	status := getStatus(t, h, f.voterToken)
	if len(status.Selections[f.positionID]) > 1 {
		t.Errorf("Selection set exceeded max_selections: %v", status.Selections[f.positionID])
	}
}
