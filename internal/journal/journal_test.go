package journal

import "testing"

func TestValidateMemory(t *testing.T) {
	base := Memory{
		Title:         "First day at school",
		Date:          "2001-02-01",
		DatePrecision: PrecisionComplete,
		Category:      CategoryEducation,
		Visibility:    VisibilityFriends,
	}
	if err := ValidateMemory(base); err != nil {
		t.Fatalf("ValidateMemory(valid): %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Memory)
	}{
		{"blank title", func(m *Memory) { m.Title = "   " }},
		{"no date", func(m *Memory) { m.Date = "" }},
		{"bad precision", func(m *Memory) { m.DatePrecision = "decade" }},
		{"bad category", func(m *Memory) { m.Category = "sports" }},
		{"bad visibility", func(m *Memory) { m.Visibility = "everyone" }},
	}
	for _, tt := range tests {
		m := base
		tt.mutate(&m)
		if err := ValidateMemory(m); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestValidatePeriod(t *testing.T) {
	p := Period{
		Title:      "Lisbon",
		Type:       PeriodResidence,
		StartDate:  "2015-01-01",
		EndDate:    "2018-06-30",
		Visibility: VisibilityPublic,
	}
	if err := ValidatePeriod(p); err != nil {
		t.Fatalf("ValidatePeriod(valid): %v", err)
	}

	p.EndDate = "2014-12-31"
	if err := ValidatePeriod(p); err == nil {
		t.Error("expected error for end before start")
	}
}

func TestHasLiked(t *testing.T) {
	likes := []Like{{UserID: "a", MemoryID: "m"}, {UserID: "b", MemoryID: "m"}}
	if !HasLiked(likes, "b") {
		t.Error("HasLiked(b) = false, want true")
	}
	if HasLiked(likes, "c") {
		t.Error("HasLiked(c) = true, want false")
	}
	if HasLiked(nil, "a") {
		t.Error("HasLiked(nil) = true, want false")
	}
}

func TestDisplayName(t *testing.T) {
	p := Profile{Username: "ana"}
	if got := p.DisplayName(); got != "ana" {
		t.Errorf("DisplayName = %q, want ana", got)
	}
	p.FullName = "Ana Souza"
	if got := p.DisplayName(); got != "Ana Souza" {
		t.Errorf("DisplayName = %q, want Ana Souza", got)
	}
}
