package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	tracker "github.com/valkaylee/wildlifetracker/internal/tracker"
	"github.com/valkaylee/wildlifetracker/internal/tracker/auth"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	application, err := tracker.New(tracker.Stores{}, tracker.Options{UploadsDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("new application: %v", err)
	}
	tokens, err := auth.NewIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	return NewHandler(application, tokens)
}

func marshal(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return bytes.NewReader(data)
}

func do(t *testing.T, handler http.Handler, method, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func registerUser(t *testing.T, handler http.Handler, username string) int64 {
	t.Helper()
	resp := do(t, handler, http.MethodPost, "/auth/register",
		marshal(t, map[string]any{"username": username, "password": "hunter22"}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %s", username, resp.Code, resp.Body)
	}
	var payload struct {
		Token string `json:"token"`
		User  struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal register response: %v", err)
	}
	if payload.Token == "" {
		t.Fatal("register returned no token")
	}
	return payload.User.ID
}

func TestRegisterLoginFlow(t *testing.T) {
	handler := newTestServer(t)
	registerUser(t, handler, "Fielder")

	// Usernames are folded to lowercase at registration.
	resp := do(t, handler, http.MethodPost, "/auth/login",
		marshal(t, map[string]any{"username": "fielder", "password": "hunter22"}))
	if resp.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", resp.Code, resp.Body)
	}

	resp = do(t, handler, http.MethodPost, "/auth/login",
		marshal(t, map[string]any{"username": "fielder", "password": "wrong"}))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.Code)
	}
}

func TestCommandsEndpointAlwaysAnswers200(t *testing.T) {
	handler := newTestServer(t)
	userID := registerUser(t, handler, "commander")

	resp := do(t, handler, http.MethodPost, "/commands",
		marshal(t, map[string]any{
			"domain": "sighting",
			"action": "create",
			"parameters": map[string]any{
				"species": "Wolf",
				"userId":  userID,
			},
		}))
	if resp.Code != http.StatusOK {
		t.Fatalf("command: expected 200, got %d: %s", resp.Code, resp.Body)
	}
	var result struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Message != "Sighting created" {
		t.Fatalf("command result: %+v", result)
	}

	// A bad envelope is still a 200 with the failure inside the body.
	resp = do(t, handler, http.MethodPost, "/commands",
		marshal(t, map[string]any{"domain": "weather", "action": "get"}))
	if resp.Code != http.StatusOK {
		t.Fatalf("bad command: expected 200, got %d", resp.Code)
	}
	var failure struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &failure); err != nil {
		t.Fatal(err)
	}
	if failure.Success || failure.Error != "Unknown command type: weather" {
		t.Fatalf("bad command result: %+v", failure)
	}
}

func TestSightingRESTLifecycle(t *testing.T) {
	handler := newTestServer(t)
	userID := registerUser(t, handler, "lifecycle")

	resp := do(t, handler, http.MethodPost, "/sightings",
		marshal(t, map[string]any{"species": "Lynx", "location": "East Fen", "userId": userID}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sighting: expected 201, got %d: %s", resp.Code, resp.Body)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	resp = do(t, handler, http.MethodGet, fmt.Sprintf("/sightings/%d", created.ID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get sighting: expected 200, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodDelete, fmt.Sprintf("/sightings/%d", created.ID), nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("delete sighting: expected 204, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodGet, fmt.Sprintf("/sightings/%d", created.ID), nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("get deleted sighting: expected 404, got %d", resp.Code)
	}
}

func TestProfileIncludesRank(t *testing.T) {
	handler := newTestServer(t)
	userID := registerUser(t, handler, "ranked")

	resp := do(t, handler, http.MethodPost, "/sightings",
		marshal(t, map[string]any{"species": "Heron", "userId": userID}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sighting: expected 201, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodGet, fmt.Sprintf("/profiles/%d", userID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("get profile: expected 200, got %d: %s", resp.Code, resp.Body)
	}
	var profile struct {
		ID   int64 `json:"id"`
		Rank *int  `json:"rank"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &profile); err != nil {
		t.Fatal(err)
	}
	if profile.ID != userID || profile.Rank == nil || *profile.Rank != 1 {
		t.Fatalf("profile: %+v", profile)
	}
}

func TestLeaderboardTopValidation(t *testing.T) {
	handler := newTestServer(t)

	resp := do(t, handler, http.MethodGet, "/leaderboard/top?n=0", nil)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("top n=0: expected 400, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodGet, "/leaderboard", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d", resp.Code)
	}
}

func TestSpeciesCatalog(t *testing.T) {
	handler := newTestServer(t)

	resp := do(t, handler, http.MethodPost, "/species",
		marshal(t, map[string]any{"name": "Grey Wolf", "category": "Mammal"}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create species: expected 201, got %d: %s", resp.Code, resp.Body)
	}

	// Duplicate names are rejected case-insensitively.
	resp = do(t, handler, http.MethodPost, "/species",
		marshal(t, map[string]any{"name": "grey wolf", "category": "Mammal"}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate species: expected 400, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodGet, "/species?name=wolf", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("search species: expected 200, got %d", resp.Code)
	}
	var list []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Grey Wolf" {
		t.Fatalf("search result: %+v", list)
	}
}

func TestReportModeration(t *testing.T) {
	handler := newTestServer(t)
	userID := registerUser(t, handler, "moderator")

	resp := do(t, handler, http.MethodPost, "/sightings",
		marshal(t, map[string]any{"species": "Chimera", "userId": userID}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create sighting: expected 201, got %d", resp.Code)
	}
	var sg struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &sg); err != nil {
		t.Fatal(err)
	}

	resp = do(t, handler, http.MethodPost, "/reports",
		marshal(t, map[string]any{"sightingId": sg.ID, "userId": userID, "reason": "implausible species"}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("file report: expected 201, got %d: %s", resp.Code, resp.Body)
	}
	var filed struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &filed); err != nil {
		t.Fatal(err)
	}
	if filed.Status != "pending" {
		t.Fatalf("new report status: %q", filed.Status)
	}

	// Same user, same sighting: rejected.
	resp = do(t, handler, http.MethodPost, "/reports",
		marshal(t, map[string]any{"sightingId": sg.ID, "userId": userID, "reason": "again"}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("duplicate report: expected 400, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodPut, fmt.Sprintf("/reports/%d/status", filed.ID),
		marshal(t, map[string]any{"status": "reviewed"}))
	if resp.Code != http.StatusOK {
		t.Fatalf("set status: expected 200, got %d: %s", resp.Code, resp.Body)
	}

	resp = do(t, handler, http.MethodPut, fmt.Sprintf("/reports/%d/status", filed.ID),
		marshal(t, map[string]any{"status": "bogus"}))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", resp.Code)
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	handler := newTestServer(t)
	userID := registerUser(t, handler, "notified")

	resp := do(t, handler, http.MethodPost, "/notifications",
		marshal(t, map[string]any{"userId": userID, "message": "welcome"}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("create notification: expected 201, got %d: %s", resp.Code, resp.Body)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	resp = do(t, handler, http.MethodPost, fmt.Sprintf("/notifications/%d/read", created.ID), nil)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("mark read: expected 204, got %d", resp.Code)
	}

	resp = do(t, handler, http.MethodGet, fmt.Sprintf("/notifications?userId=%d", userID), nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list notifications: expected 200, got %d", resp.Code)
	}
	var list []struct {
		Read bool `json:"read"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || !list[0].Read {
		t.Fatalf("notifications: %+v", list)
	}
}
