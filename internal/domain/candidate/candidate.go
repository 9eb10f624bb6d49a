// Package candidate holds the candidate record as the CRM stores it.
package candidate

import (
	"fmt"
	"regexp"
	"time"

	"github.com/kailas-cloud/talentdex/internal/domain/vector"
)

var idRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// MaxIDLength is the maximum candidate ID length.
const MaxIDLength = 128

// Skill is a named technical skill.
type Skill struct {
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Skills groups technical and soft skills.
type Skills struct {
	Technical []Skill  `json:"technical,omitempty"`
	Soft      []string `json:"soft,omitempty"`
}

// Experience is one work-history entry.
type Experience struct {
	Title   string `json:"title,omitempty"`
	Company string `json:"company,omitempty"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

// MatchAnalysis is the assessment block attached by recruiters or tooling.
type MatchAnalysis struct {
	Seniority string `json:"seniority,omitempty"`
}

// Candidate is a candidate record. Embedding and SearchText are owned by
// the embedding pipeline; every other field is owned by CRUD.
type Candidate struct {
	ID            string         `json:"id"`
	FirstName     string         `json:"firstName,omitempty"`
	LastName      string         `json:"lastName,omitempty"`
	Email         string         `json:"email,omitempty"`
	Title         string         `json:"title,omitempty"`
	Summary       string         `json:"summary,omitempty"`
	Skills        Skills         `json:"skills"`
	Experience    []Experience   `json:"experience,omitempty"`
	Languages     []string       `json:"languages,omitempty"`
	Industries    []string       `json:"industries,omitempty"`
	Fields        []string       `json:"fields,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
	SalaryMin     *float64       `json:"salaryMin,omitempty"`
	SalaryMax     *float64       `json:"salaryMax,omitempty"`
	ResumeURL     string         `json:"resumeUrl,omitempty"`
	Status        string         `json:"status,omitempty"`
	City          string         `json:"city,omitempty"`
	MatchAnalysis *MatchAnalysis `json:"matchAnalysis,omitempty"`
	Embedding     vector.Raw     `json:"embedding"`
	SearchText    string         `json:"searchText,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// ValidateID checks the ID format used in storage keys and URLs.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("candidate ID is required")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("candidate ID too long (max %d)", MaxIDLength)
	}
	if !idRegex.MatchString(id) {
		return fmt.Errorf("candidate ID must be alphanumeric with underscores and hyphens")
	}
	return nil
}

// Seniority returns the seniority from the match analysis, or "".
func (c *Candidate) Seniority() string {
	if c == nil || c.MatchAnalysis == nil {
		return ""
	}
	return c.MatchAnalysis.Seniority
}

// HasResume reports whether a résumé URL is attached.
func (c *Candidate) HasResume() bool {
	return c != nil && c.ResumeURL != ""
}

// Vector returns the stored embedding as a numeric vector (empty when absent).
func (c *Candidate) Vector() []float32 {
	if c == nil {
		return []float32{}
	}
	return vector.Normalize(c.Embedding)
}

// Validate checks a candidate before it is stored.
func (c *Candidate) Validate() error {
	if err := ValidateID(c.ID); err != nil {
		return err
	}
	if c.SalaryMin != nil && *c.SalaryMin < 0 {
		return fmt.Errorf("salaryMin must be non-negative")
	}
	if c.SalaryMax != nil && *c.SalaryMax < 0 {
		return fmt.Errorf("salaryMax must be non-negative")
	}
	if c.SalaryMin != nil && c.SalaryMax != nil && *c.SalaryMin > *c.SalaryMax {
		return fmt.Errorf("salaryMin must not exceed salaryMax")
	}
	return nil
}
