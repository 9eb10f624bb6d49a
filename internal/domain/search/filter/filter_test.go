package filter

import (
	"testing"

	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

func f64(v float64) *float64 { return &v }

func TestNew_Validation(t *testing.T) {
	if _, err := New("", "", f64(-5)); err == nil {
		t.Error("expected error for negative salary ceiling")
	}
	long := make([]byte, MaxCityLength+1)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := New("", string(long), nil); err == nil {
		t.Error("expected error for oversized city")
	}

	f, err := New("  active ", "  Berlin ", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Status() != "active" || f.City() != "berlin" {
		t.Errorf("unexpected normalized filters: %q %q", f.Status(), f.City())
	}
}

func TestFilters_Empty(t *testing.T) {
	var f Filters
	if !f.IsEmpty() {
		t.Fatal("zero filters should be empty")
	}
	if !f.Matches(&candidate.Candidate{ID: "c1"}) {
		t.Error("empty filters must match everything")
	}
	if f.Matches(nil) {
		t.Error("nil candidate must never match")
	}
}

func TestFilters_Matches(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		c    candidate.Candidate
		want bool
	}{
		{"status equal", mustNew(t, "active", "", nil), candidate.Candidate{Status: "active"}, true},
		{"status differs", mustNew(t, "active", "", nil), candidate.Candidate{Status: "Active"}, false},
		{"city substring", mustNew(t, "", "BERL", nil), candidate.Candidate{City: "Berlin, DE"}, true},
		{"city missing", mustNew(t, "", "berlin", nil), candidate.Candidate{}, false},
		{"salary under ceiling", mustNew(t, "", "", f64(5000)), candidate.Candidate{SalaryMin: f64(4000)}, true},
		{"salary at ceiling", mustNew(t, "", "", f64(5000)), candidate.Candidate{SalaryMin: f64(5000)}, true},
		{"salary over ceiling", mustNew(t, "", "", f64(5000)), candidate.Candidate{SalaryMin: f64(6000)}, false},
		{"salary max fallback", mustNew(t, "", "", f64(5000)), candidate.Candidate{SalaryMax: f64(7000)}, false},
		{"salary unknown", mustNew(t, "", "", f64(5000)), candidate.Candidate{}, true},
		{
			"all filters",
			mustNew(t, "active", "munich", f64(9000)),
			candidate.Candidate{Status: "active", City: "Munich", SalaryMin: f64(8000)},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.Matches(&tt.c); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}

func mustNew(t *testing.T, status, city string, salaryMax *float64) Filters {
	t.Helper()
	f, err := New(status, city, salaryMax)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f
}
