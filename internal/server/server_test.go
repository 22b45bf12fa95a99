package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lazypower/memoria/internal/auth"
	"github.com/lazypower/memoria/internal/events"
	"github.com/lazypower/memoria/internal/journal"
	"github.com/lazypower/memoria/internal/store"
)

type testEnv struct {
	srv    *Server
	db     *store.DB
	issuer *auth.Issuer
	events *events.Recorder
}

func testServer(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	rec := &events.Recorder{}
	iss := auth.NewIssuer("test-secret", time.Hour)
	return &testEnv{
		srv:    New(db, iss, "test-version", WithEvents(rec)),
		db:     db,
		issuer: iss,
		events: rec,
	}
}

// user creates a profile and returns it with a bearer token for it.
func (e *testEnv) user(t *testing.T, username string) (*journal.Profile, string) {
	t.Helper()
	p, err := e.db.CreateProfile(journal.Profile{Username: username})
	if err != nil {
		t.Fatalf("CreateProfile(%s): %v", username, err)
	}
	token, err := e.issuer.Issue(p.ID, p.Username)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return p, token
}

func (e *testEnv) memory(t *testing.T, owner string, vis journal.Visibility) *journal.Memory {
	t.Helper()
	m, err := e.db.CreateMemory(journal.Memory{
		UserID:        owner,
		Title:         "lake day",
		Date:          "2024-07-01",
		DatePrecision: journal.PrecisionComplete,
		Category:      journal.CategoryTravel,
		Visibility:    vis,
	})
	if err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	return m
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return v
}

func TestHealthEndpoint(t *testing.T) {
	env := testServer(t)

	w := env.do(t, "GET", "/api/health", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	body := decode[map[string]any](t, w)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["version"] != "test-version" {
		t.Errorf("version = %v, want test-version", body["version"])
	}
	if body["db"] != true {
		t.Errorf("db = %v, want true", body["db"])
	}
}

func TestRoutesRequireToken(t *testing.T) {
	env := testServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/api/profiles/me"},
		{"GET", "/api/memories/x/likes"},
		{"POST", "/api/memories/x/comments"},
		{"GET", "/api/friends"},
		{"GET", "/api/relationships/x"},
	}

	for _, r := range routes {
		w := env.do(t, r.method, r.path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: status = %d, want %d", r.method, r.path, w.Code, http.StatusUnauthorized)
		}
	}

	w := env.do(t, "GET", "/api/profiles/me", "not-a-jwt", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestGetMe(t *testing.T) {
	env := testServer(t)
	alice, token := env.user(t, "alice")

	w := env.do(t, "GET", "/api/profiles/me", token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := decode[journal.Profile](t, w); got.ID != alice.ID {
		t.Errorf("id = %q, want %q", got.ID, alice.ID)
	}

	w = env.do(t, "PUT", "/api/profiles/me", token, `{"full_name":"Alice Liddell"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status = %d; body: %s", w.Code, w.Body.String())
	}
	if got := decode[journal.Profile](t, w); got.FullName != "Alice Liddell" {
		t.Errorf("full_name = %q", got.FullName)
	}

	w = env.do(t, "GET", "/api/profiles/by-username/ALICE", token, "")
	if w.Code != http.StatusOK {
		t.Errorf("by-username: status = %d, want %d", w.Code, http.StatusOK)
	}
	w = env.do(t, "GET", "/api/profiles/by-username/nobody", token, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown username: status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestCreateMemoryAssignsViewer(t *testing.T) {
	env := testServer(t)
	alice, token := env.user(t, "alice")

	body := `{"user_id":"someone-else","title":"first snow","date":"2024-01-02","date_precision":"complete","category":"personal","visibility":"public"}`
	w := env.do(t, "POST", "/api/memories", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d; body: %s", w.Code, http.StatusCreated, w.Body.String())
	}
	m := decode[journal.Memory](t, w)
	if m.UserID != alice.ID {
		t.Errorf("user_id = %q, want viewer %q", m.UserID, alice.ID)
	}

	w = env.do(t, "POST", "/api/memories", token, `{"title":"","date":"2024-01-02"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid memory: status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestVisibleMemoriesEmptyArray(t *testing.T) {
	env := testServer(t)
	alice, _ := env.user(t, "alice")
	_, bobToken := env.user(t, "bob")
	env.memory(t, alice.ID, journal.VisibilityPrivate)

	w := env.do(t, "GET", "/api/profiles/"+alice.ID+"/memories", bobToken, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}

	w = env.do(t, "GET", "/api/profiles/"+alice.ID+"/memories/count", bobToken, "")
	if got := decode[map[string]int](t, w); got["count"] != 0 {
		t.Errorf("count = %d, want 0", got["count"])
	}
}

func TestHiddenMemoryIsNotFound(t *testing.T) {
	env := testServer(t)
	alice, _ := env.user(t, "alice")
	_, bobToken := env.user(t, "bob")
	m := env.memory(t, alice.ID, journal.VisibilityFriends)

	for _, path := range []string{
		"/api/memories/" + m.ID,
		"/api/memories/" + m.ID + "/likes",
		"/api/memories/" + m.ID + "/comments",
	} {
		w := env.do(t, "GET", path, bobToken, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s: status = %d, want %d", path, w.Code, http.StatusNotFound)
		}
	}

	w := env.do(t, "POST", "/api/memories/"+m.ID+"/likes", bobToken, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("like hidden: status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if n := len(env.events.Events()); n != 0 {
		t.Errorf("events = %d, want 0", n)
	}
}
