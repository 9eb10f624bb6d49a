// Package candidate implements candidate CRUD. Every write that changes what
// a candidate is searched by queues a background re-embed; the write itself
// never waits for or fails on the embedding pipeline.
package candidate

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/talentdex/internal/domain"
	domcand "github.com/kailas-cloud/talentdex/internal/domain/candidate"
	"github.com/kailas-cloud/talentdex/internal/domain/vector"
)

// Service handles candidate CRUD.
type Service struct {
	repo            Repository
	scheduler       Scheduler
	now             func() time.Time
	defaultPageSize int
	maxPageSize     int
}

// New creates a candidate service.
func New(repo Repository, scheduler Scheduler) *Service {
	return &Service{
		repo:            repo,
		scheduler:       scheduler,
		now:             time.Now,
		defaultPageSize: 20,
		maxPageSize:     100,
	}
}

// WithPagination configures page size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Create stores a new candidate and queues its first embedding.
// An empty ID is replaced by a random UUID.
func (s *Service) Create(ctx context.Context, c *domcand.Candidate) (*domcand.Candidate, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}
	if c.ResumeURL != "" {
		if err := validateResumeURL(c.ResumeURL); err != nil {
			return nil, err
		}
	}

	now := s.now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	// pipeline-owned
	c.Embedding = vector.Raw{}
	c.SearchText = ""

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create candidate: %w", err)
	}

	s.schedule(c.ID, c.ResumeURL)
	return c, nil
}

// Get returns a candidate by ID.
func (s *Service) Get(ctx context.Context, id string) (*domcand.Candidate, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return c, nil
}

// List returns a page of candidates ordered by ID.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]*domcand.Candidate, string, error) {
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}

	items, next, err := s.repo.Page(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("list candidates: %w", err)
	}
	return items, next, nil
}

// Update applies a partial update. Changes to searchable fields queue a re-embed.
func (s *Service) Update(ctx context.Context, id string, p domcand.Patch) (*domcand.Candidate, error) {
	if err := p.Validate(); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}
	if p.ResumeURL != nil && *p.ResumeURL != "" {
		if err := validateResumeURL(*p.ResumeURL); err != nil {
			return nil, err
		}
	}
	// never taken from callers
	p.Embedding = nil
	p.SearchText = nil
	if p.ResumeURL != nil && *p.ResumeURL == "" {
		cleared := ""
		p.SearchText = &cleared // detached résumé: its text goes too
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	merged := *current
	p.Apply(&merged)
	if err := merged.Validate(); err != nil {
		return nil, domain.Validationf("%s", err.Error())
	}

	updated, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("update candidate: %w", err)
	}

	if p.TouchesProfile() {
		var resumeURL string
		if p.ResumeURL != nil {
			resumeURL = *p.ResumeURL
		}
		s.schedule(id, resumeURL)
	}
	return updated, nil
}

// AttachResume sets the résumé URL and queues a fetch-and-embed of its text.
func (s *Service) AttachResume(ctx context.Context, id, resumeURL string) (*domcand.Candidate, error) {
	if err := validateResumeURL(resumeURL); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, domcand.Patch{ResumeURL: &resumeURL})
	if err != nil {
		return nil, fmt.Errorf("attach resume: %w", err)
	}

	s.scheduler.TryEmbedResume(id, resumeURL)
	return updated, nil
}

// Delete removes a candidate.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete candidate: %w", err)
	}
	return nil
}

func (s *Service) schedule(id, resumeURL string) {
	if resumeURL != "" {
		s.scheduler.TryEmbedResume(id, resumeURL)
		return
	}
	s.scheduler.TryEmbedCandidate(id, "")
}

func validateResumeURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return domain.Validationf("resume url must be an absolute http(s) URL")
	}
	return nil
}
