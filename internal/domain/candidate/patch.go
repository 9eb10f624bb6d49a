package candidate

import (
	"fmt"

	"github.com/kailas-cloud/talentdex/internal/domain/vector"
)

// Patch is a partial candidate update. Nil fields are unchanged.
// Embedding and SearchText are never decoded from API input.
type Patch struct {
	FirstName     *string        `json:"firstName,omitempty"`
	LastName      *string        `json:"lastName,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Title         *string        `json:"title,omitempty"`
	Summary       *string        `json:"summary,omitempty"`
	Skills        *Skills        `json:"skills,omitempty"`
	Experience    *[]Experience  `json:"experience,omitempty"`
	Languages     *[]string      `json:"languages,omitempty"`
	Industries    *[]string      `json:"industries,omitempty"`
	Fields        *[]string      `json:"fields,omitempty"`
	Tags          *[]string      `json:"tags,omitempty"`
	SalaryMin     *float64       `json:"salaryMin,omitempty"`
	SalaryMax     *float64       `json:"salaryMax,omitempty"`
	ResumeURL     *string        `json:"resumeUrl,omitempty"`
	Status        *string        `json:"status,omitempty"`
	City          *string        `json:"city,omitempty"`
	MatchAnalysis *MatchAnalysis `json:"matchAnalysis,omitempty"`

	Embedding  *vector.Raw `json:"-"`
	SearchText *string     `json:"-"`
}

// EmbeddingPatch builds the update written by the embedding pipeline.
func EmbeddingPatch(vec []float32, searchText string) Patch {
	raw := vector.FromVector(vec)
	if len(vec) == 0 {
		raw = vector.Raw{}
	}
	return Patch{Embedding: &raw, SearchText: &searchText}
}

// Validate rejects empty patches and inconsistent salary bounds.
func (p *Patch) Validate() error {
	if p.IsEmpty() {
		return fmt.Errorf("at least one field must be provided")
	}
	if p.SalaryMin != nil && *p.SalaryMin < 0 {
		return fmt.Errorf("salaryMin must be non-negative")
	}
	if p.SalaryMax != nil && *p.SalaryMax < 0 {
		return fmt.Errorf("salaryMax must be non-negative")
	}
	return nil
}

// IsEmpty reports whether the patch changes nothing.
func (p *Patch) IsEmpty() bool {
	return !p.TouchesProfile() && p.Embedding == nil && p.SearchText == nil &&
		p.FirstName == nil && p.LastName == nil && p.Email == nil &&
		p.SalaryMin == nil && p.SalaryMax == nil && p.Status == nil && p.City == nil
}

// TouchesProfile reports whether any field that feeds the search document changes.
func (p *Patch) TouchesProfile() bool {
	return p.Title != nil || p.Summary != nil || p.Skills != nil || p.Experience != nil ||
		p.Languages != nil || p.Industries != nil || p.Fields != nil || p.Tags != nil ||
		p.MatchAnalysis != nil || p.ResumeURL != nil
}

// Keys returns the JSON names of the set fields, in declaration order.
func (p *Patch) Keys() []string {
	set := []struct {
		name string
		ok   bool
	}{
		{"firstName", p.FirstName != nil},
		{"lastName", p.LastName != nil},
		{"email", p.Email != nil},
		{"title", p.Title != nil},
		{"summary", p.Summary != nil},
		{"skills", p.Skills != nil},
		{"experience", p.Experience != nil},
		{"languages", p.Languages != nil},
		{"industries", p.Industries != nil},
		{"fields", p.Fields != nil},
		{"tags", p.Tags != nil},
		{"salaryMin", p.SalaryMin != nil},
		{"salaryMax", p.SalaryMax != nil},
		{"resumeUrl", p.ResumeURL != nil},
		{"status", p.Status != nil},
		{"city", p.City != nil},
		{"matchAnalysis", p.MatchAnalysis != nil},
		{"embedding", p.Embedding != nil},
		{"searchText", p.SearchText != nil},
	}
	out := make([]string, 0, len(set))
	for _, f := range set {
		if f.ok {
			out = append(out, f.name)
		}
	}
	return out
}

// Apply writes the set fields onto c.
func (p *Patch) Apply(c *Candidate) {
	setString(&c.FirstName, p.FirstName)
	setString(&c.LastName, p.LastName)
	setString(&c.Email, p.Email)
	setString(&c.Title, p.Title)
	setString(&c.Summary, p.Summary)
	setString(&c.ResumeURL, p.ResumeURL)
	setString(&c.Status, p.Status)
	setString(&c.City, p.City)
	setString(&c.SearchText, p.SearchText)
	setSlice(&c.Experience, p.Experience)
	setSlice(&c.Languages, p.Languages)
	setSlice(&c.Industries, p.Industries)
	setSlice(&c.Fields, p.Fields)
	setSlice(&c.Tags, p.Tags)

	if p.Skills != nil {
		c.Skills = *p.Skills
	}
	if p.SalaryMin != nil {
		v := *p.SalaryMin
		c.SalaryMin = &v
	}
	if p.SalaryMax != nil {
		v := *p.SalaryMax
		c.SalaryMax = &v
	}
	if p.MatchAnalysis != nil {
		ma := *p.MatchAnalysis
		c.MatchAnalysis = &ma
	}
	if p.Embedding != nil {
		c.Embedding = *p.Embedding
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setSlice[T any](dst *[]T, src *[]T) {
	if src != nil {
		*dst = append([]T(nil), (*src)...)
	}
}
