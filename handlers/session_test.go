// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/liveballot/liveballot/models"
	"github.com/liveballot/liveballot/session"
	"github.com/liveballot/liveballot/store"
	"github.com/liveballot/liveballot/testutil"
)

// newTestHandler wires a handler against the given database with a
// hold long enough that tests observe the submitted phase.
func newTestHandler(conn *sql.DB) *SessionHandler {
	cfg := testutil.GetTestConfig()
	registry := session.NewRegistry(store.New(conn), cfg.RefreshInterval, time.Minute)
	return NewSessionHandler(registry, cfg)
}

// fixture seeds a full active session and one voter, returning what a
// test needs to drive the voting flow.
type fixture struct {
	electionID string
	sessionID  string
	positionID string
	statuteID  string
	optionIDs  map[string]string // value -> option ID
	voterToken string
}

func seedFixture(t *testing.T, conn *sql.DB, weight float64) fixture {
	t.Helper()

	f := fixture{optionIDs: make(map[string]string)}
	f.electionID = testutil.CreateTestElection(t, conn, "Annual Meeting")
	f.sessionID = testutil.CreateTestSession(t, conn, f.electionID, "Round 1", true)

	f.positionID = testutil.AddTestItem(t, conn, f.sessionID, models.KindPosition, "President", 1, true)
	for _, value := range []string{"Alice", "Bob"} {
		f.optionIDs[value] = testutil.AddTestOption(t, conn, f.positionID, value)
	}

	f.statuteID = testutil.AddTestItem(t, conn, f.sessionID, models.KindStatute, "Bylaw Change", 1, false)
	for _, value := range []string{"Yes", "No"} {
		f.optionIDs[value] = testutil.AddTestOption(t, conn, f.statuteID, value)
	}

	f.voterToken = testutil.CreateTestVoter(t, conn, f.electionID, "member-1", weight)
	return f
}

func getStatus(t *testing.T, h *SessionHandler, token string) models.SessionStatusResponse {
	t.Helper()

	req := testutil.MakeRequest("GET", "/session", nil, map[string]string{"X-Voter-Token": token})
	w := httptest.NewRecorder()
	h.GetStatus(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SessionStatusResponse
	testutil.AssertJSON(t, w, &resp)
	return resp
}

func postSelect(t *testing.T, h *SessionHandler, token, itemID, value string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/session/selections",
		models.SelectRequest{ItemID: itemID, Value: value},
		map[string]string{"X-Voter-Token": token})
	w := httptest.NewRecorder()
	h.Select(w, req)
	return w
}

func postSubmit(t *testing.T, h *SessionHandler, token string) *httptest.ResponseRecorder {
	t.Helper()

	req := testutil.MakeRequest("POST", "/session/submit", nil, map[string]string{"X-Voter-Token": token})
	w := httptest.NewRecorder()
	h.Submit(w, req)
	return w
}

func TestStatusRequiresVoterToken(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)

	req := testutil.MakeRequest("GET", "/session", nil, nil)
	w := httptest.NewRecorder()
	h.GetStatus(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestStatusNoActiveSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)

	resp := getStatus(t, h, "some-token")

	if resp.Phase != models.PhaseWaiting {
		t.Errorf("Expected waiting, got %s", resp.Phase)
	}
	if resp.Notice == "" {
		t.Error("Expected a notice explaining the wait")
	}
	if resp.Session != nil {
		t.Error("Expected no session data")
	}
}

func TestStatusActiveSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	resp := getStatus(t, h, f.voterToken)

	if resp.Phase != models.PhaseVoting {
		t.Fatalf("Expected voting, got %s (notice: %s)", resp.Phase, resp.Notice)
	}
	if resp.Session == nil || resp.Session.ID != f.sessionID {
		t.Fatal("Expected the seeded session")
	}
	if len(resp.Session.Items) != 2 {
		t.Errorf("Expected 2 items, got %d", len(resp.Session.Items))
	}
	if resp.Checked == "" {
		t.Error("Expected a humanized checked timestamp")
	}
}

func TestRefreshPicksUpNewSession(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)

	// First contact happens before any session exists
	resp := getStatus(t, h, "early-token")
	if resp.Phase != models.PhaseWaiting {
		t.Fatalf("Expected waiting, got %s", resp.Phase)
	}

	// A session opens, but this voter is rostered under a new token
	f := seedFixture(t, conn, 1)

	req := testutil.MakeRequest("POST", "/session/refresh", nil,
		map[string]string{"X-Voter-Token": f.voterToken})
	w := httptest.NewRecorder()
	h.Refresh(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var refreshed models.SessionStatusResponse
	testutil.AssertJSON(t, w, &refreshed)
	if refreshed.Phase != models.PhaseVoting {
		t.Errorf("Expected voting after refresh, got %s", refreshed.Phase)
	}
}

func TestSelectValidation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	testCases := []struct {
		name           string
		itemID         string
		value          string
		expectedStatus int
	}{
		{"valid selection", f.positionID, "Alice", http.StatusOK},
		{"abstain where allowed", f.positionID, models.Abstain, http.StatusOK},
		{"abstain where forbidden", f.statuteID, models.Abstain, http.StatusBadRequest},
		{"unknown item", "no-such-item", "Alice", http.StatusBadRequest},
		{"unknown value", f.positionID, "Mallory", http.StatusBadRequest},
		{"missing item_id", "", "Alice", http.StatusBadRequest},
		{"missing value", f.positionID, "", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := postSelect(t, h, f.voterToken, tc.itemID, tc.value)
			testutil.AssertStatus(t, w, tc.expectedStatus)
		})
	}
}

func TestSelectOutsideVotingPhase(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)

	// No session exists, so the controller is waiting
	w := postSelect(t, h, "some-token", "item-1", "Alice")
	testutil.AssertStatus(t, w, http.StatusConflict)
}

func TestSubmitIncompleteBallot(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	// Touch only the position item
	testutil.AssertStatus(t, postSelect(t, h, f.voterToken, f.positionID, "Alice"), http.StatusOK)

	w := postSubmit(t, h, f.voterToken)
	testutil.AssertStatus(t, w, http.StatusUnprocessableEntity)

	var resp models.SubmitResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Phase != models.PhaseVoting {
		t.Errorf("Expected to stay in voting, got %s", resp.Phase)
	}
	if resp.Errors[f.statuteID] == "" {
		t.Errorf("Expected an error for the untouched item, got %v", resp.Errors)
	}
	if resp.Errors[f.positionID] != "" {
		t.Errorf("Satisfied item must carry no error, got %v", resp.Errors)
	}

	// No vote rows were written
	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected no persisted votes, found %d", count)
	}
}

func TestSubmitFullBallot(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)
	f := seedFixture(t, conn, 2.5)

	testutil.AssertStatus(t, postSelect(t, h, f.voterToken, f.positionID, "Bob"), http.StatusOK)
	testutil.AssertStatus(t, postSelect(t, h, f.voterToken, f.statuteID, "Yes"), http.StatusOK)

	w := postSubmit(t, h, f.voterToken)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Phase != models.PhaseSubmitted {
		t.Errorf("Expected submitted, got %s", resp.Phase)
	}
	if resp.VotesCast != 2 {
		t.Errorf("Expected 2 votes cast, got %d", resp.VotesCast)
	}

	// Every persisted record carries the roster weight
	rows, err := conn.Query(`SELECT option_id, weight FROM vote WHERE voter_id = $1`, "member-1")
	if err != nil {
		t.Fatal(err)
	}
	defer rows.Close()

	persisted := make(map[string]float64)
	for rows.Next() {
		var optionID string
		var weight float64
		if err := rows.Scan(&optionID, &weight); err != nil {
			t.Fatal(err)
		}
		persisted[optionID] = weight
	}
	if len(persisted) != 2 {
		t.Fatalf("Expected 2 vote rows, got %d", len(persisted))
	}
	for _, value := range []string{"Bob", "Yes"} {
		weight, found := persisted[f.optionIDs[value]]
		if !found {
			t.Errorf("Missing vote row for %s", value)
		} else if weight != 2.5 {
			t.Errorf("Vote for %s carries weight %v, want 2.5", value, weight)
		}
	}

	// Status now reports the submitted phase
	status := getStatus(t, h, f.voterToken)
	if status.Phase != models.PhaseSubmitted {
		t.Errorf("Expected submitted status, got %s", status.Phase)
	}
}

func TestSubmitTwiceConflicts(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	testutil.AssertStatus(t, postSelect(t, h, f.voterToken, f.positionID, "Alice"), http.StatusOK)
	testutil.AssertStatus(t, postSelect(t, h, f.voterToken, f.statuteID, "No"), http.StatusOK)
	testutil.AssertStatus(t, postSubmit(t, h, f.voterToken), http.StatusOK)

	// The controller left the voting phase, so a second submit is refused
	testutil.AssertStatus(t, postSubmit(t, h, f.voterToken), http.StatusConflict)
}

func TestAlreadyVotedVoterStaysWaiting(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	// Seed existing history for this voter in this session
	testutil.CreateTestVote(t, conn, f.optionIDs["Alice"], "member-1",
		f.electionID, f.sessionID, f.positionID, 1)

	resp := getStatus(t, h, f.voterToken)
	if resp.Phase == models.PhaseVoting {
		t.Fatal("Voter with history must not re-enter voting")
	}
	if resp.Notice == "" {
		t.Error("Expected an already-voted notice")
	}

	testutil.AssertStatus(t, postSubmit(t, h, f.voterToken), http.StatusConflict)
}

func TestUnrosteredVoterCannotSubmit(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)
	f := seedFixture(t, conn, 1)

	// A token absent from the roster still sees the ballot but is
	// blocked at submission, before any write.
	token := "not-on-the-roster"
	resp := getStatus(t, h, token)
	if resp.Phase != models.PhaseVoting {
		t.Fatalf("Expected voting, got %s", resp.Phase)
	}

	testutil.AssertStatus(t, postSelect(t, h, token, f.positionID, "Alice"), http.StatusOK)
	testutil.AssertStatus(t, postSelect(t, h, token, f.statuteID, "Yes"), http.StatusOK)

	w := postSubmit(t, h, token)
	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected no persisted votes, found %d", count)
	}
}

func TestAbstainBallotSubmitsNoVotes(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)

	electionID := testutil.CreateTestElection(t, conn, "Annual Meeting")
	sessionID := testutil.CreateTestSession(t, conn, electionID, "Round 1", true)
	itemID := testutil.AddTestItem(t, conn, sessionID, models.KindPosition, "President", 1, true)
	testutil.AddTestOption(t, conn, itemID, "Alice")
	testutil.AddTestOption(t, conn, itemID, "Bob")
	token := testutil.CreateTestVoter(t, conn, electionID, "member-1", 1)

	// Alice, then Bob (replaces Alice), then Abstain (replaces Bob)
	for _, value := range []string{"Alice", "Bob", models.Abstain} {
		testutil.AssertStatus(t, postSelect(t, h, token, itemID, value), http.StatusOK)
	}

	status := getStatus(t, h, token)
	sel := status.Selections[itemID]
	if len(sel) != 1 || sel[0] != models.Abstain {
		t.Fatalf("Expected abstain-only selection, got %v", sel)
	}

	w := postSubmit(t, h, token)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VotesCast != 0 {
		t.Errorf("Abstain ballot must cast 0 votes, got %d", resp.VotesCast)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected no vote rows, found %d", count)
	}
}

func TestFifoEvictionOverHTTP(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := newTestHandler(conn)

	electionID := testutil.CreateTestElection(t, conn, "Annual Meeting")
	sessionID := testutil.CreateTestSession(t, conn, electionID, "Round 1", true)
	itemID := testutil.AddTestItem(t, conn, sessionID, models.KindStatute, "Board Seats", 2, false)
	for _, value := range []string{"A", "B", "C"} {
		testutil.AddTestOption(t, conn, itemID, value)
	}
	token := testutil.CreateTestVoter(t, conn, electionID, "member-1", 1)

	for _, value := range []string{"A", "B", "C"} {
		testutil.AssertStatus(t, postSelect(t, h, token, itemID, value), http.StatusOK)
	}

	status := getStatus(t, h, token)
	sel := status.Selections[itemID]
	if len(sel) != 2 || sel[0] != "B" || sel[1] != "C" {
		t.Errorf("Expected oldest selection evicted, got %v", sel)
	}

	// Submitting writes exactly one row per surviving selection
	w := postSubmit(t, h, token)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.SubmitResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.VotesCast != 2 {
		t.Errorf("Expected 2 votes cast, got %d", resp.VotesCast)
	}

	var count int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM vote WHERE voter_id = $1`, "member-1").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 vote rows, got %d", count)
	}
}
