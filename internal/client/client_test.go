package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lazypower/memoria/internal/auth"
	"github.com/lazypower/memoria/internal/journal"
	"github.com/lazypower/memoria/internal/relationship"
	"github.com/lazypower/memoria/internal/server"
	"github.com/lazypower/memoria/internal/session"
	"github.com/lazypower/memoria/internal/store"
)

type testEnv struct {
	ts     *httptest.Server
	db     *store.DB
	issuer *auth.Issuer
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	iss := auth.NewIssuer("test-secret", time.Hour)
	ts := httptest.NewServer(server.New(db, iss, "test"))
	t.Cleanup(ts.Close)
	return &testEnv{ts: ts, db: db, issuer: iss}
}

// login creates a user and returns a client acting as them.
func (e *testEnv) login(t *testing.T, username string) (*journal.Profile, *Client, *auth.TokenViewer) {
	t.Helper()
	p, err := e.db.CreateProfile(journal.Profile{Username: username})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	token, err := e.issuer.Issue(p.ID, p.Username)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	v := auth.NewTokenViewer(token)
	return p, New(e.ts.URL, v, 5*time.Second), v
}

func TestHealth(t *testing.T) {
	env := newEnv(t)
	c := New(env.ts.URL, nil, time.Second)

	if !c.Healthy(context.Background()) {
		t.Fatal("Healthy = false, want true")
	}

	down := New("http://127.0.0.1:1", nil, 100*time.Millisecond)
	if down.Healthy(context.Background()) {
		t.Error("Healthy = true for unreachable server")
	}
}

func TestUnauthenticatedIsStatusError(t *testing.T) {
	env := newEnv(t)
	c := New(env.ts.URL, nil, time.Second)

	_, err := c.Me(context.Background())
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("err = %v, want 401 StatusError", err)
	}
}

func TestProfileLookup(t *testing.T) {
	env := newEnv(t)
	alice, c, _ := env.login(t, "alice")
	ctx := context.Background()

	me, err := c.Me(ctx)
	if err != nil || me.ID != alice.ID {
		t.Fatalf("Me = %+v, %v", me, err)
	}

	p, err := c.ProfileByUsername(ctx, "alice")
	if err != nil || p == nil || p.ID != alice.ID {
		t.Errorf("ProfileByUsername = %+v, %v", p, err)
	}
	p, err = c.ProfileByUsername(ctx, "ghost")
	if err != nil || p != nil {
		t.Errorf("ProfileByUsername(ghost) = %+v, %v, want nil, nil", p, err)
	}
}

func TestFriendshipCalls(t *testing.T) {
	env := newEnv(t)
	alice, ac, _ := env.login(t, "alice")
	bob, bc, _ := env.login(t, "bob")
	ctx := context.Background()

	if _, err := ac.RequestFriendship(ctx, bob.ID); err != nil {
		t.Fatalf("RequestFriendship: %v", err)
	}
	if _, err := ac.RequestFriendship(ctx, bob.ID); !IsStatus(err, http.StatusConflict) {
		t.Errorf("duplicate request err = %v, want 409", err)
	}

	state, err := bc.AcceptFriendship(ctx, alice.ID)
	if err != nil || state != relationship.FollowerOnly {
		t.Fatalf("AcceptFriendship = %s, %v", state, err)
	}
	if _, err := bc.RequestFriendship(ctx, alice.ID); err != nil {
		t.Fatalf("RequestFriendship back: %v", err)
	}
	if _, err := ac.AcceptFriendship(ctx, bob.ID); err != nil {
		t.Fatalf("AcceptFriendship back: %v", err)
	}

	state, err = ac.Relationship(ctx, bob.ID)
	if err != nil || state != relationship.Mutual {
		t.Errorf("Relationship = %s, %v, want mutual", state, err)
	}

	edges, err := ac.Friendships(ctx, bob.ID)
	if err != nil || len(edges) != 2 {
		t.Errorf("Friendships(with) = %d edges, %v", len(edges), err)
	}

	friends, err := bc.Friends(ctx)
	if err != nil || len(friends) != 1 || friends[0].State != relationship.Mutual {
		t.Errorf("Friends = %+v, %v", friends, err)
	}

	if state, _ := ac.Unfriend(ctx, bob.ID); state != relationship.FollowerOnly {
		t.Errorf("after unfriend = %s, want follower_only", state)
	}
	if state, _ := bc.Block(ctx, alice.ID); state != relationship.Blocked {
		t.Errorf("after block = %s, want blocked", state)
	}
}

func TestSessionOverHTTP(t *testing.T) {
	env := newEnv(t)
	alice, _, _ := env.login(t, "alice")
	bob, bc, viewer := env.login(t, "bob")
	ctx := context.Background()

	for _, date := range []string{"2024-01-01", "2024-02-01"} {
		_, err := env.db.CreateMemory(journal.Memory{
			UserID:        alice.ID,
			Title:         "walk " + date,
			Date:          date,
			DatePrecision: journal.PrecisionComplete,
			Category:      journal.CategoryPersonal,
			Visibility:    journal.VisibilityPublic,
		})
		if err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
	}

	list, err := bc.VisibleMemories(ctx, alice.ID, "", "")
	if err != nil || len(list) != 2 {
		t.Fatalf("VisibleMemories = %d, %v", len(list), err)
	}
	if list[0].Date != "2024-02-01" {
		t.Errorf("first = %s, want newest", list[0].Date)
	}

	var notes []string
	ctl := session.New(bc, viewer, session.NotifierFunc(func(msg string) { notes = append(notes, msg) }))
	if !ctl.Open(ctx, list, 0) {
		t.Fatal("Open = false")
	}

	ctl.ToggleLike(ctx)
	ctl.PostComment(ctx, " nice walk ")

	st := ctl.Snapshot()
	if !st.LikedBy(bob.ID) {
		t.Error("not liked after ToggleLike")
	}
	if len(st.Comments) != 1 || st.Comments[0].Content != "nice walk" {
		t.Errorf("comments = %+v", st.Comments)
	}
	if len(notes) != 0 {
		t.Errorf("notes = %v", notes)
	}

	likes, err := env.db.ListLikes(list[0].ID)
	if err != nil || len(likes) != 1 || likes[0].UserID != bob.ID {
		t.Errorf("stored likes = %+v, %v", likes, err)
	}

	// Another session removes the like, so the first session's stale
	// unlike fails on the server and is rolled back locally.
	other := session.New(bc, viewer, session.NotifierFunc(func(msg string) { notes = append(notes, msg) }))
	other.Open(ctx, list, 0)
	if !other.Snapshot().LikedBy(bob.ID) {
		t.Fatal("second session should load the existing like")
	}
	other.ToggleLike(ctx)
	if other.Snapshot().LikedBy(bob.ID) {
		t.Error("unlike did not apply")
	}
	ctl.ToggleLike(ctx)
	if !ctl.Snapshot().LikedBy(bob.ID) {
		t.Error("failed unlike was not rolled back")
	}
	if len(notes) != 1 || notes[0] != session.MsgUnlikeFailed {
		t.Errorf("notes = %v, want [%s]", notes, session.MsgUnlikeFailed)
	}
}
