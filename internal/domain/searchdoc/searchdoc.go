// Package searchdoc builds the canonical text a candidate is embedded from.
package searchdoc

import (
	"strings"

	"github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

// Line labels, in output order.
const (
	LabelTitle      = "Title"
	LabelSummary    = "Summary"
	LabelSkills     = "Skills"
	LabelExperience = "Experience"
	LabelIndustries = "Industries"
	LabelSeniority  = "Seniority"
	LabelLanguages  = "Languages"
)

// Build assembles the search document for c. The output depends only on the
// field values and extraText: same input, same bytes. A nil candidate yields
// the empty template plus extraText.
func Build(c *candidate.Candidate, extraText string) string {
	if c == nil {
		c = &candidate.Candidate{}
	}

	skills := make([]string, 0, len(c.Tags)+len(c.Skills.Technical)+len(c.Skills.Soft))
	skills = append(skills, c.Tags...)
	for _, s := range c.Skills.Technical {
		skills = append(skills, s.Name)
	}
	skills = append(skills, c.Skills.Soft...)

	experience := make([]string, 0, len(c.Experience))
	for _, e := range c.Experience {
		if e.Title == "" && e.Company == "" {
			continue
		}
		experience = append(experience, e.Title+" at "+e.Company)
	}

	industries := make([]string, 0, len(c.Industries)+len(c.Fields)+len(c.Tags))
	industries = append(industries, c.Industries...)
	industries = append(industries, c.Fields...)
	industries = append(industries, c.Tags...)

	var b strings.Builder
	writeLine(&b, LabelTitle, c.Title)
	writeLine(&b, LabelSummary, c.Summary)
	writeLine(&b, LabelSkills, join(skills))
	writeLine(&b, LabelExperience, join(experience))
	writeLine(&b, LabelIndustries, join(industries))
	writeLine(&b, LabelSeniority, c.Seniority())
	writeLine(&b, LabelLanguages, join(c.Languages))
	b.WriteString(extraText)
	return b.String()
}

// Corpus is the lowercase text the keyword gate matches query terms against.
func Corpus(c *candidate.Candidate) string {
	var searchText string
	if c != nil {
		searchText = c.SearchText
	}
	return strings.ToLower(Build(c, "") + "\n" + searchText)
}

func writeLine(b *strings.Builder, label, value string) {
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

func join(parts []string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
