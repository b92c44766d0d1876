package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrRowNotFound    = errors.New("db: row not found")
	ErrKeyNotFound    = errors.New("db: key not found")
	ErrSchemaExists   = errors.New("db: schema already exists")
	ErrSchemaNotFound = errors.New("db: schema not found")
	// ErrFilterNotIndexed signals a filter condition the backend cannot
	// evaluate (field not declared in the schema, or an operator the index
	// does not support).
	ErrFilterNotIndexed = errors.New("db: filter not supported by index")
)

// Op constants map to backend command names for error context.
const (
	OpCreateSchema = "FT.CREATE"
	OpDropSchema   = "FT.DROPINDEX"
	OpSchemaInfo   = "FT.INFO"
	OpSearch       = "FT.SEARCH"
	OpInsert       = "HSET"
	OpSelect       = "HGETALL"
	OpDel          = "DEL"
	OpExists       = "EXISTS"
	OpScan         = "SCAN"
	OpGet          = "GET"
	OpSet          = "SET"
	OpIncrBy       = "INCRBY"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
