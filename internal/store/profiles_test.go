package store

import (
	"errors"
	"testing"

	"github.com/lazypower/memoria/internal/journal"
)

func TestCreateAndGetProfile(t *testing.T) {
	db := openTest(t)

	p, err := db.CreateProfile(journal.Profile{Username: "Ana", FullName: "Ana Souza"})
	if err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
	if p.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := db.GetProfile(p.ID)
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if got == nil || got.Username != "Ana" || got.FullName != "Ana Souza" {
		t.Errorf("GetProfile = %+v", got)
	}

	byName, err := db.GetProfileByUsername("ana")
	if err != nil {
		t.Fatalf("GetProfileByUsername: %v", err)
	}
	if byName == nil || byName.ID != p.ID {
		t.Errorf("GetProfileByUsername(ana) = %+v, want %s", byName, p.ID)
	}
}

func TestGetProfileMissing(t *testing.T) {
	db := openTest(t)

	p, err := db.GetProfile("nope")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if p != nil {
		t.Errorf("GetProfile(nope) = %+v, want nil", p)
	}
}

func TestCreateProfileDuplicateUsername(t *testing.T) {
	db := openTest(t)
	mustProfile(t, db, "ana")

	_, err := db.CreateProfile(journal.Profile{Username: "ANA"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("err = %v, want ErrConflict", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	db := openTest(t)
	p := mustProfile(t, db, "ana")

	p.Biography = "likes trains"
	got, err := db.UpdateProfile(*p)
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if got.Biography != "likes trains" {
		t.Errorf("Biography = %q", got.Biography)
	}

	_, err = db.UpdateProfile(journal.Profile{ID: "ghost"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
