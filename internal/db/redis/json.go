package redis

import (
	"context"
	"sort"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/talentdex/internal/db"
)

// JSONSetNX stores a JSON document only when key does not exist yet.
// It reports whether the document was written.
func (s *Store) JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error) {
	cmd := s.b().Arbitrary("JSON.SET").Keys(key).Args(path, string(data), "NX").Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, jsonErr(db.OpJSONSet, err)
	}
	return true, nil
}

// JSONSetFields replaces top-level fields of the document at key in one
// MULTI/EXEC transaction. A nil value deletes the field. Nested objects are
// replaced whole, unlike JSON.MERGE which merges them recursively.
func (s *Store) JSONSetFields(ctx context.Context, key string, fields map[string][]byte) error {
	if len(fields) == 0 {
		return nil
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	cmds := make(rueidis.Commands, 0, len(names)+2)
	cmds = append(cmds, s.b().Multi().Build())
	for _, name := range names {
		path := "$." + name
		if v := fields[name]; v == nil {
			cmds = append(cmds, s.b().Arbitrary("JSON.DEL").Keys(key).Args(path).Build())
		} else {
			cmds = append(cmds, s.b().Arbitrary("JSON.SET").Keys(key).Args(path, string(v)).Build())
		}
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	for _, r := range results[:len(results)-1] {
		if err := r.Error(); err != nil {
			return jsonErr(db.OpJSONSet, err)
		}
	}

	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return jsonErr(db.OpJSONSet, err)
	}
	for _, reply := range replies {
		if err := reply.Error(); err != nil && !rueidis.IsRedisNil(err) {
			return jsonErr(db.OpJSONSet, err)
		}
	}
	return nil
}

// JSONGet retrieves a JSON document by key and optional paths.
func (s *Store) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	args := make([]string, len(paths))
	copy(args, paths)

	cmd := s.b().Arbitrary("JSON.GET").Keys(key).Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, jsonErr(db.OpJSONGet, err)
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}

// JSONMGet retrieves the same path from many keys in one round trip.
func (s *Store) JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	cmd := s.b().Arbitrary("JSON.MGET").Keys(keys...).Args(path).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, jsonErr(db.OpJSONMGet, err)
	}

	out := make([][]byte, len(keys))
	for i, msg := range msgs {
		if i >= len(out) {
			break
		}
		raw, err := msg.ToString()
		if err != nil || raw == "" {
			continue // missing key
		}
		out[i] = []byte(raw)
	}
	return out, nil
}
