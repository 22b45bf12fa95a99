package store

import (
	"errors"
	"testing"

	"github.com/lazypower/memoria/internal/relationship"
)

func TestFriendshipLifecycle(t *testing.T) {
	db := openTest(t)
	a := mustProfile(t, db, "a")
	b := mustProfile(t, db, "b")

	if _, err := db.RequestFriendship(a.ID, b.ID); err != nil {
		t.Fatalf("RequestFriendship: %v", err)
	}

	edges, err := db.FriendshipsBetween(a.ID, b.ID)
	if err != nil {
		t.Fatalf("FriendshipsBetween: %v", err)
	}
	if got := relationship.Resolve(a.ID, edges, b.ID); got != relationship.RequestSent {
		t.Errorf("a sees %s, want request_sent", got)
	}
	if got := relationship.Resolve(b.ID, edges, a.ID); got != relationship.RequestReceived {
		t.Errorf("b sees %s, want request_received", got)
	}

	if err := db.AcceptFriendship(a.ID, b.ID); err != nil {
		t.Fatalf("AcceptFriendship: %v", err)
	}
	edges, _ = db.FriendshipsBetween(a.ID, b.ID)
	if got := relationship.Resolve(a.ID, edges, b.ID); got != relationship.Following {
		t.Errorf("a sees %s, want following", got)
	}
	if got := relationship.Resolve(b.ID, edges, a.ID); got != relationship.FollowerOnly {
		t.Errorf("b sees %s, want follower_only", got)
	}

	if _, err := db.RequestFriendship(b.ID, a.ID); err != nil {
		t.Fatalf("RequestFriendship back: %v", err)
	}
	if err := db.AcceptFriendship(b.ID, a.ID); err != nil {
		t.Fatalf("AcceptFriendship back: %v", err)
	}
	edges, _ = db.FriendshipsBetween(a.ID, b.ID)
	if got := relationship.Resolve(a.ID, edges, b.ID); got != relationship.Mutual {
		t.Errorf("a sees %s, want mutual", got)
	}

	if err := db.DeleteFriendship(a.ID, b.ID); err != nil {
		t.Fatalf("DeleteFriendship: %v", err)
	}
	edges, _ = db.FriendshipsBetween(a.ID, b.ID)
	if got := relationship.Resolve(a.ID, edges, b.ID); got != relationship.FollowerOnly {
		t.Errorf("after unfollow a sees %s, want follower_only", got)
	}
}

func TestRequestFriendshipErrors(t *testing.T) {
	db := openTest(t)
	a := mustProfile(t, db, "a")
	b := mustProfile(t, db, "b")

	if _, err := db.RequestFriendship(a.ID, a.ID); !errors.Is(err, ErrInvalid) {
		t.Errorf("self request err = %v, want ErrInvalid", err)
	}
	if _, err := db.RequestFriendship(a.ID, "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown receiver err = %v, want ErrNotFound", err)
	}
	if _, err := db.RequestFriendship(a.ID, b.ID); err != nil {
		t.Fatalf("RequestFriendship: %v", err)
	}
	if _, err := db.RequestFriendship(a.ID, b.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate err = %v, want ErrConflict", err)
	}
	if err := db.AcceptFriendship(b.ID, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("accept wrong direction err = %v, want ErrNotFound", err)
	}
}

func TestBlockUser(t *testing.T) {
	db := openTest(t)
	a := mustProfile(t, db, "a")
	b := mustProfile(t, db, "b")

	db.RequestFriendship(a.ID, b.ID)
	db.AcceptFriendship(a.ID, b.ID)

	if err := db.BlockUser(a.ID, b.ID); err != nil {
		t.Fatalf("BlockUser: %v", err)
	}

	edges, _ := db.FriendshipsBetween(a.ID, b.ID)
	if len(edges) != 1 || edges[0].Status != relationship.StatusBlocked {
		t.Fatalf("edges = %+v, want one blocked edge", edges)
	}
	if got := relationship.Resolve(a.ID, edges, b.ID); got != relationship.Blocked {
		t.Errorf("a sees %s, want blocked", got)
	}
	if got := relationship.Resolve(b.ID, edges, a.ID); got != relationship.NotFriends {
		t.Errorf("b sees %s, want not_friends", got)
	}

	if _, err := db.RequestFriendship(b.ID, a.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("request from blocked user err = %v, want ErrForbidden", err)
	}
}

func TestRejectFriendship(t *testing.T) {
	db := openTest(t)
	a := mustProfile(t, db, "a")
	b := mustProfile(t, db, "b")

	db.RequestFriendship(a.ID, b.ID)
	if err := db.RejectFriendship(a.ID, b.ID); err != nil {
		t.Fatalf("RejectFriendship: %v", err)
	}
	edges, _ := db.FriendshipsBetween(a.ID, b.ID)
	if len(edges) != 0 {
		t.Errorf("edges = %+v, want none", edges)
	}
}

func TestFriendshipsOf(t *testing.T) {
	db := openTest(t)
	me := mustProfile(t, db, "me")
	ana := mustProfile(t, db, "ana")
	bob := mustProfile(t, db, "bob")
	carl := mustProfile(t, db, "carl")

	db.RequestFriendship(me.ID, ana.ID)
	db.RequestFriendship(bob.ID, me.ID)
	db.RequestFriendship(ana.ID, bob.ID)
	db.BlockUser(me.ID, carl.ID)

	edges, err := db.FriendshipsOf(me.ID)
	if err != nil {
		t.Fatalf("FriendshipsOf: %v", err)
	}
	if len(edges) != 3 {
		t.Fatalf("len = %d, want 3: %+v", len(edges), edges)
	}

	states := map[string]relationship.State{}
	for _, ws := range relationship.Annotate(me.ID, edges) {
		states[ws.UserID] = ws.State
	}
	if states[ana.ID] != relationship.RequestSent {
		t.Errorf("ana = %s, want request_sent", states[ana.ID])
	}
	if states[bob.ID] != relationship.RequestReceived {
		t.Errorf("bob = %s, want request_received", states[bob.ID])
	}
	if states[carl.ID] != relationship.Blocked {
		t.Errorf("carl = %s, want blocked", states[carl.ID])
	}
}
