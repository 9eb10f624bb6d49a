package candidate

import (
	"encoding/json"
	"testing"

	"github.com/kailas-cloud/talentdex/internal/domain/vector"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

func TestValidateID(t *testing.T) {
	valid := []string{"c1", "cand_42", "a-b-c", "550e8400-e29b-41d4-a716-446655440000"}
	for _, id := range valid {
		if err := ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q) unexpected error: %v", id, err)
		}
	}
	invalid := []string{"", "has space", "slash/id", string(make([]byte, MaxIDLength+1))}
	for _, id := range invalid {
		if err := ValidateID(id); err == nil {
			t.Errorf("ValidateID(%q) expected error", id)
		}
	}
}

func TestCandidate_ValidateSalary(t *testing.T) {
	c := Candidate{ID: "c1", SalaryMin: f64(200), SalaryMax: f64(100)}
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for inverted salary bounds")
	}
	c.SalaryMax = f64(300)
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCandidate_NilSafeAccessors(t *testing.T) {
	var c *Candidate
	if c.Seniority() != "" || c.HasResume() || len(c.Vector()) != 0 {
		t.Error("nil candidate should degrade to empty values")
	}
}

func TestCandidate_JSONEmbeddingShapes(t *testing.T) {
	var c Candidate
	data := []byte(`{"id":"c1","title":"Go developer","embedding":"(0.1,0.2)","searchText":"resume"}`)
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Embedding.Kind() != vector.KindDelimited {
		t.Fatalf("expected delimited embedding, got %s", c.Embedding.Kind())
	}
	if got := c.Vector(); len(got) != 2 {
		t.Errorf("expected 2 dims, got %v", got)
	}

	var empty Candidate
	if err := json.Unmarshal([]byte(`{"id":"c2"}`), &empty); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !empty.Embedding.IsZero() || len(empty.Vector()) != 0 {
		t.Error("missing embedding should normalize to an empty vector")
	}
}

func TestPatch_Validate(t *testing.T) {
	var p Patch
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for empty patch")
	}

	p = Patch{SalaryMax: f64(-1)}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for negative salary")
	}

	p = Patch{City: str("Berlin")}
	if err := p.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.TouchesProfile() {
		t.Error("city does not feed the search document")
	}
}

func TestPatch_Apply(t *testing.T) {
	c := Candidate{ID: "c1", Title: "Old", Tags: []string{"a"}}
	tags := []string{"go", "k8s"}
	p := Patch{
		Title:         str("New"),
		Tags:          &tags,
		SalaryMax:     f64(5000),
		MatchAnalysis: &MatchAnalysis{Seniority: "senior"},
	}
	if !p.TouchesProfile() {
		t.Fatal("title change should touch profile")
	}
	p.Apply(&c)

	tags[0] = "mutated"
	if c.Title != "New" || c.Tags[0] != "go" || *c.SalaryMax != 5000 || c.Seniority() != "senior" {
		t.Errorf("unexpected candidate after apply: %+v", c)
	}
}

func TestEmbeddingPatch(t *testing.T) {
	c := Candidate{ID: "c1"}
	p := EmbeddingPatch([]float32{0.5, 0.5}, "text")
	p.Apply(&c)
	if c.Embedding.Kind() != vector.KindVector || c.SearchText != "text" {
		t.Fatalf("unexpected candidate %+v", c)
	}

	p = EmbeddingPatch(nil, "")
	p.Apply(&c)
	if !c.Embedding.IsZero() {
		t.Error("empty vector should clear the stored embedding")
	}
	if p.TouchesProfile() {
		t.Error("embedding patch must not count as a profile change")
	}
}

func TestPatch_Keys(t *testing.T) {
	title := "Lead"
	p := Patch{Title: &title, Tags: &[]string{"go"}}
	keys := p.Keys()
	if len(keys) != 2 || keys[0] != "title" || keys[1] != "tags" {
		t.Errorf("unexpected keys %v", keys)
	}

	ep := EmbeddingPatch([]float32{1}, "x")
	keys = ep.Keys()
	if len(keys) != 2 || keys[0] != "embedding" || keys[1] != "searchText" {
		t.Errorf("unexpected embedding patch keys %v", keys)
	}
}
