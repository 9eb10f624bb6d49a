// Package filter holds the hard filters applied to the candidate pool before scoring.
package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// MaxCityLength is the maximum accepted city filter length.
const MaxCityLength = 256

// Filters is a validated set of hard filters. Zero-valued filters are inactive.
type Filters struct {
	status    string
	city      string
	salaryMax *float64
}

// New validates and creates Filters. Blank strings disable their filter.
func New(status, city string, salaryMax *float64) (Filters, error) {
	city = strings.TrimSpace(city)
	if len(city) > MaxCityLength {
		return Filters{}, fmt.Errorf("city filter too long (max %d chars)", MaxCityLength)
	}
	if salaryMax != nil && *salaryMax < 0 {
		return Filters{}, fmt.Errorf("salary_max must be non-negative")
	}
	f := Filters{status: strings.TrimSpace(status), city: strings.ToLower(city)}
	if salaryMax != nil {
		v := *salaryMax
		f.salaryMax = &v
	}
	return f, nil
}

// Status returns the required status, or "".
func (f Filters) Status() string { return f.status }

// City returns the lowercase city substring, or "".
func (f Filters) City() string { return f.city }

// SalaryMax returns the salary ceiling, or nil.
func (f Filters) SalaryMax() *float64 { return f.salaryMax }

// IsEmpty reports whether no filter is active.
func (f Filters) IsEmpty() bool {
	return f.status == "" && f.city == "" && f.salaryMax == nil
}

// Matches reports whether c passes every active filter.
//   - status: exact equality
//   - city: case-insensitive substring
//   - salary ceiling: the candidate's lowest expectation (salaryMin, else
//     salaryMax) must not exceed it; candidates without salary data pass
func (f Filters) Matches(c *candidate.Candidate) bool {
	if c == nil {
		return false
	}
	if f.status != "" && c.Status != f.status {
		return false
	}
	if f.city != "" && !strings.Contains(strings.ToLower(c.City), f.city) {
		return false
	}
	if f.salaryMax != nil {
		if expected := expectedSalary(c); expected != nil && *expected > *f.salaryMax {
			return false
		}
	}
	return true
}

func expectedSalary(c *candidate.Candidate) *float64 {
	if c.SalaryMin != nil {
		return c.SalaryMin
	}
	return c.SalaryMax
}
