package candidate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/talentdex/internal/db"
)

// jsonStore is the consumer interface for the redis backend (ISP).
type jsonStore interface {
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONSetFields(ctx context.Context, key string, fields map[string][]byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

type redisBackend struct {
	store  jsonStore
	prefix string // e.g. "talentdex:candidate:"
}

// NewRedis creates a repository storing each candidate as a JSON document
// under keyPrefix + "candidate:" + id.
func NewRedis(s jsonStore, keyPrefix string, logger *zap.Logger) *Repo {
	return newRepo(&redisBackend{store: s, prefix: keyPrefix + "candidate:"}, logger)
}

func (b *redisBackend) key(id string) string {
	return b.prefix + id
}

func (b *redisBackend) load(ctx context.Context, id string) ([]byte, error) {
	raw, err := b.store.JSONGet(ctx, b.key(id), "$")
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Repo
	}
	return unwrapRoot(raw)
}

func (b *redisBackend) loadMany(ctx context.Context, ids []string) ([][]byte, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = b.key(id)
	}

	raws, err := b.store.JSONMGet(ctx, keys, "$")
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Repo
	}

	out := make([][]byte, len(ids))
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		doc, err := unwrapRoot(raw)
		if err != nil {
			continue
		}
		out[i] = doc
	}
	return out, nil
}

func (b *redisBackend) insert(ctx context.Context, id string, doc []byte) (bool, error) {
	return b.store.JSONSetNX(ctx, b.key(id), "$", doc) //nolint:wrapcheck // wrapped by Repo
}

// merge replaces each top-level key of partial, matching the jsonb ||
// semantics of the postgres backend. JSON.MERGE is not used: it would merge
// skills and matchAnalysis recursively and keep cleared nested fields.
func (b *redisBackend) merge(ctx context.Context, id string, partial []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(partial, &top); err != nil {
		return fmt.Errorf("decode partial document: %w", err)
	}
	fields := make(map[string][]byte, len(top))
	for k, v := range top {
		if string(v) == "null" {
			fields[k] = nil
			continue
		}
		fields[k] = v
	}

	// field paths cannot create a missing document
	exists, err := b.store.Exists(ctx, b.key(id))
	if err != nil {
		return err //nolint:wrapcheck // wrapped by Repo
	}
	if !exists {
		return db.ErrKeyNotFound
	}
	return b.store.JSONSetFields(ctx, b.key(id), fields) //nolint:wrapcheck // wrapped by Repo
}

func (b *redisBackend) remove(ctx context.Context, id string) error {
	exists, err := b.store.Exists(ctx, b.key(id))
	if err != nil {
		return err //nolint:wrapcheck // wrapped by Repo
	}
	if !exists {
		return db.ErrKeyNotFound
	}
	return b.store.Del(ctx, b.key(id)) //nolint:wrapcheck // wrapped by Repo
}

func (b *redisBackend) ids(ctx context.Context) ([]string, error) {
	keys, err := b.store.Scan(ctx, b.prefix+"*")
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Repo
	}

	seen := make(map[string]struct{}, len(keys))
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		id := strings.TrimPrefix(k, b.prefix)
		if _, dup := seen[id]; dup || id == "" {
			continue // SCAN may return a key twice
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

// unwrapRoot strips the array JSON.GET returns for the "$" path.
func unwrapRoot(raw []byte) ([]byte, error) {
	var docs []json.RawMessage
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("unexpected JSON.GET payload: %w", err)
	}
	if len(docs) == 0 {
		return nil, db.ErrKeyNotFound
	}
	return docs[0], nil
}
