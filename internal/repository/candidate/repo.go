package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/db"
	"github.com/kailas-cloud/talentdex/internal/domain"
	domcand "github.com/kailas-cloud/talentdex/internal/domain/candidate"
)

const loadChunk = 200

// backend stores raw candidate documents keyed by ID.
type backend interface {
	load(ctx context.Context, id string) ([]byte, error)
	loadMany(ctx context.Context, ids []string) ([][]byte, error)
	// insert writes a new document and reports false when id is taken.
	insert(ctx context.Context, id string, doc []byte) (bool, error)
	merge(ctx context.Context, id string, partial []byte) error
	remove(ctx context.Context, id string) error
	ids(ctx context.Context) ([]string, error)
}

// Repo implements the candidate store over redis JSON or postgres JSONB.
type Repo struct {
	backend backend
	now     func() time.Time
	logger  *zap.Logger
}

func newRepo(b backend, logger *zap.Logger) *Repo {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{backend: b, now: time.Now, logger: logger}
}

// Create stores a new candidate. An existing ID is domain.ErrCandidateExists;
// the existence check and the write are a single store operation.
func (r *Repo) Create(ctx context.Context, c *domcand.Candidate) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal candidate: %w", err)
	}
	created, err := r.backend.insert(ctx, c.ID, data)
	if err != nil {
		return fmt.Errorf("save candidate %s: %w", c.ID, err)
	}
	if !created {
		return domain.ErrCandidateExists
	}
	return nil
}

// Get returns a candidate by ID.
func (r *Repo) Get(ctx context.Context, id string) (*domcand.Candidate, error) {
	raw, err := r.backend.load(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("load candidate %s: %w", id, err)
	}
	return decode(id, raw)
}

// List returns the whole pool ordered by ID. Unreadable documents are skipped.
func (r *Repo) List(ctx context.Context) ([]*domcand.Candidate, error) {
	ids, err := r.sortedIDs(ctx)
	if err != nil {
		return nil, err
	}
	return r.loadAll(ctx, ids)
}

// Page returns up to limit candidates with IDs after cursor, and the cursor
// for the next page ("" when exhausted).
func (r *Repo) Page(ctx context.Context, cursor string, limit int) ([]*domcand.Candidate, string, error) {
	if limit <= 0 {
		limit = 20
	}

	ids, err := r.sortedIDs(ctx)
	if err != nil {
		return nil, "", err
	}

	start := sort.SearchStrings(ids, cursor)
	if start < len(ids) && ids[start] == cursor {
		start++
	}
	end := min(start+limit, len(ids))
	page := ids[start:end]

	items, err := r.loadAll(ctx, page)
	if err != nil {
		return nil, "", err
	}

	var next string
	if end < len(ids) && len(page) > 0 {
		next = page[len(page)-1]
	}
	return items, next, nil
}

// Update merges p into the stored candidate and returns the result.
// Only the patched keys and updatedAt are written, so concurrent patches
// touching different fields do not overwrite each other.
func (r *Repo) Update(ctx context.Context, id string, p domcand.Patch) (*domcand.Candidate, error) {
	c, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Apply(c)
	c.UpdatedAt = r.now().UTC()

	partial, err := partialDoc(c, append(p.Keys(), "updatedAt"))
	if err != nil {
		return nil, err
	}

	if err := r.backend.merge(ctx, id, partial); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, domain.ErrCandidateNotFound
		}
		return nil, fmt.Errorf("merge candidate %s: %w", id, err)
	}
	return c, nil
}

// Delete removes a candidate.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.backend.remove(ctx, id); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrCandidateNotFound
		}
		return fmt.Errorf("delete candidate %s: %w", id, err)
	}
	return nil
}

func (r *Repo) sortedIDs(ctx context.Context) ([]string, error) {
	ids, err := r.backend.ids(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidate ids: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *Repo) loadAll(ctx context.Context, ids []string) ([]*domcand.Candidate, error) {
	out := make([]*domcand.Candidate, 0, len(ids))
	for start := 0; start < len(ids); start += loadChunk {
		chunk := ids[start:min(start+loadChunk, len(ids))]

		docs, err := r.backend.loadMany(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("load candidates: %w", err)
		}
		for i, raw := range docs {
			if raw == nil {
				continue // deleted between listing and loading
			}
			c, err := decode(chunk[i], raw)
			if err != nil {
				r.logger.Warn("Skipping unreadable candidate", zap.String("candidate_id", chunk[i]), zap.Error(err))
				continue
			}
			out = append(out, c)
		}
	}
	return out, nil
}

func decode(id string, raw []byte) (*domcand.Candidate, error) {
	var c domcand.Candidate
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("unmarshal candidate %s: %w", id, err)
	}
	if c.ID == "" {
		c.ID = id
	}
	return &c, nil
}

// partialDoc picks keys from the marshaled candidate. Keys dropped by
// omitempty are sent as null so the merge clears them.
func partialDoc(c *domcand.Candidate, keys []string) ([]byte, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal candidate: %w", err)
	}
	var full map[string]json.RawMessage
	if err := json.Unmarshal(data, &full); err != nil {
		return nil, fmt.Errorf("unmarshal candidate: %w", err)
	}

	partial := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if v, ok := full[k]; ok {
			partial[k] = v
		} else {
			partial[k] = json.RawMessage("null")
		}
	}

	out, err := json.Marshal(partial)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}
	return out, nil
}
