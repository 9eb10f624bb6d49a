package db

import (
	"context"
	"time"
)

// Store is the redis facade combining all sub-interfaces.
type Store interface {
	Pinger
	JSONStore
	KVStore
	KeyScanner
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	// JSONSetNX writes only when key is absent and reports whether it did.
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	// JSONSetFields replaces top-level fields atomically; nil deletes a field.
	JSONSetFields(ctx context.Context, key string, fields map[string][]byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	// JSONMGet returns one entry per key; missing keys yield nil.
	JSONMGet(ctx context.Context, keys []string, path string) ([][]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// KeyScanner iterates keys by pattern.
type KeyScanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// DocumentStore keeps whole JSON documents keyed by ID in a SQL table.
type DocumentStore interface {
	Pinger
	GetDoc(ctx context.Context, id string) ([]byte, error)
	GetDocs(ctx context.Context, ids []string) ([][]byte, error)
	// InsertDoc writes a new document; an existing id leaves the row untouched
	// and reports created == false.
	InsertDoc(ctx context.Context, id string, doc []byte) (created bool, err error)
	// MergeDoc merges the top-level keys of partial into an existing document.
	MergeDoc(ctx context.Context, id string, partial []byte) error
	DeleteDoc(ctx context.Context, id string) error
	ListIDs(ctx context.Context) ([]string, error)
}
