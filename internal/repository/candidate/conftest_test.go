package candidate

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/kailas-cloud/talentdex/internal/db"
)

// mockJSONStore keeps documents in memory; Fn fields override single calls.
// Field writes replace whole values, like JSON.SET on a $.field path.
type mockJSONStore struct {
	mu   sync.Mutex
	docs map[string]map[string]any

	jsonGetFn  func(ctx context.Context, key string, paths ...string) ([]byte, error)
	jsonMGetFn func(ctx context.Context, keys []string, path string) ([][]byte, error)
	scanFn     func(ctx context.Context, pattern string) ([]string, error)
	fieldCalls []map[string][]byte
}

func newMockJSONStore() *mockJSONStore {
	return &mockJSONStore{docs: make(map[string]map[string]any)}
}

func (m *mockJSONStore) JSONSetNX(_ context.Context, key, _ string, data []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; ok {
		return false, nil
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return false, err
	}
	m.docs[key] = doc
	return true, nil
}

func (m *mockJSONStore) JSONSetFields(_ context.Context, key string, fields map[string][]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fieldCalls = append(m.fieldCalls, fields)
	doc, ok := m.docs[key]
	if !ok {
		return errors.New("ERR new objects must be created at the root")
	}
	for k, raw := range fields {
		if raw == nil {
			delete(doc, k)
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		doc[k] = v
	}
	return nil
}

func (m *mockJSONStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return json.Marshal([]any{doc})
}

func (m *mockJSONStore) JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error) {
	if m.jsonMGetFn != nil {
		return m.jsonMGetFn(ctx, keys, path)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(keys))
	for i, k := range keys {
		if doc, ok := m.docs[k]; ok {
			out[i], _ = json.Marshal([]any{doc})
		}
	}
	return out, nil
}

func (m *mockJSONStore) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, key)
	return nil
}

func (m *mockJSONStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.docs[key]
	return ok, nil
}

func (m *mockJSONStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.docs {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// mockDocStore implements db.DocumentStore in memory.
type mockDocStore struct {
	mu      sync.Mutex
	docs    map[string][]byte
	mergeFn func(ctx context.Context, id string, partial []byte) error
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{docs: make(map[string][]byte)}
}

func (m *mockDocStore) Ping(context.Context) error { return nil }

func (m *mockDocStore) GetDoc(_ context.Context, id string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return doc, nil
}

func (m *mockDocStore) GetDocs(_ context.Context, ids []string) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(ids))
	for i, id := range ids {
		out[i] = m.docs[id]
	}
	return out, nil
}

func (m *mockDocStore) InsertDoc(_ context.Context, id string, doc []byte) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; ok {
		return false, nil
	}
	m.docs[id] = doc
	return true, nil
}

func (m *mockDocStore) MergeDoc(ctx context.Context, id string, partial []byte) error {
	if m.mergeFn != nil {
		return m.mergeFn(ctx, id, partial)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return db.ErrKeyNotFound
	}
	var cur, patch map[string]json.RawMessage
	if err := json.Unmarshal(doc, &cur); err != nil {
		return err
	}
	if err := json.Unmarshal(partial, &patch); err != nil {
		return err
	}
	for k, v := range patch {
		cur[k] = v
	}
	merged, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	m.docs[id] = merged
	return nil
}

func (m *mockDocStore) DeleteDoc(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return db.ErrKeyNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *mockDocStore) ListIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	return ids, nil
}
