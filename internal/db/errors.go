package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrKeyNotFound  = errors.New("db: key not found")
	ErrNoJSONModule = errors.New("db: server has no JSON module (Redis 8+ or RedisJSON required)")
)

// Op constants name the failed command for error context.
const (
	OpDel      = "DEL"
	OpExists   = "EXISTS"
	OpScan     = "SCAN"
	OpGet      = "GET"
	OpSet      = "SET"
	OpJSONSet  = "JSON.SET"
	OpJSONGet  = "JSON.GET"
	OpJSONMGet = "JSON.MGET"
	OpSelect   = "SELECT"
	OpUpsert   = "UPSERT"
	OpInsert   = "INSERT"
	OpDelete   = "DELETE"
	OpMigrate  = "MIGRATE"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
