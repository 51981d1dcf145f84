// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/liveballot/liveballot/auth"
	"github.com/liveballot/liveballot/cliparse"
	"github.com/liveballot/liveballot/db"
)

// SetupTestDB creates a fresh in-memory sqlite database with the full
// schema. Tests run through the same store code as the configured
// DatabaseType=sqlite production mode.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// One pooled connection so every statement sees the same in-memory DB
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     ":memory:",
		DatabaseType:    "sqlite",
		RefreshInterval: 15 * time.Second,
		SubmittedHold:   50 * time.Millisecond,
	}
}

// CreateTestElection creates an election row and returns its ID
func CreateTestElection(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	electionID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO election (id, name) VALUES ($1, $2)
	`, electionID, name)
	if err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}

	return electionID
}

// CreateTestSession creates a voting session for an election and
// returns its ID
func CreateTestSession(t *testing.T, conn *sql.DB, electionID, name string, ongoing bool) string {
	t.Helper()

	sessionID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO voting_session (id, election_id, name, ongoing)
		VALUES ($1, $2, $3, $4)
	`, sessionID, electionID, name, ongoing)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return sessionID
}

// AddTestItem adds a voting item to a session and returns the item ID
func AddTestItem(t *testing.T, conn *sql.DB, sessionID, kind, title string, maxSelections int, allowAbstain bool) string {
	t.Helper()

	itemID, _ := auth.GenerateID(12)
	_, err := conn.Exec(`
		INSERT INTO voting_item (id, session_id, kind, title, max_selections, allow_abstain, position)
		VALUES ($1, $2, $3, $4, $5, $6, 0)
	`, itemID, sessionID, kind, title, maxSelections, allowAbstain)
	if err != nil {
		t.Fatalf("Failed to create test item: %v", err)
	}

	return itemID
}

// AddTestOption adds an option to an item and returns the option ID
func AddTestOption(t *testing.T, conn *sql.DB, itemID, value string) string {
	t.Helper()

	optionID, _ := auth.GenerateID(12)
	var position int
	if err := conn.QueryRow(`
		SELECT COUNT(*) FROM voting_option WHERE item_id = $1
	`, itemID).Scan(&position); err != nil {
		t.Fatalf("Failed to count options: %v", err)
	}

	_, err := conn.Exec(`
		INSERT INTO voting_option (id, item_id, value, position)
		VALUES ($1, $2, $3, $4)
	`, optionID, itemID, value, position)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// CreateTestVoter adds a roster entry for an election and returns the
// voter token
func CreateTestVoter(t *testing.T, conn *sql.DB, electionID, voterID string, weight float64) string {
	t.Helper()

	voterToken, _ := auth.GenerateVoterToken()
	_, err := conn.Exec(`
		INSERT INTO voter_roster (election_id, voter_token, voter_id, weight)
		VALUES ($1, $2, $3, $4)
	`, electionID, voterToken, voterID, weight)
	if err != nil {
		t.Fatalf("Failed to create test voter: %v", err)
	}

	return voterToken
}

// CreateTestVote inserts a vote record directly, for seeding history
func CreateTestVote(t *testing.T, conn *sql.DB, optionID, voterID, electionID, sessionID, itemID string, weight float64) {
	t.Helper()

	voteID, _ := auth.GenerateID(16)
	_, err := conn.Exec(`
		INSERT INTO vote (id, option_id, voter_id, election_id, session_id, item_id, weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, voteID, optionID, voterID, electionID, sessionID, itemID, weight, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
