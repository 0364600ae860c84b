package store

import (
	"time"
)

// Record is the persisted form of a variable. The value travels as JSON
// text so backends stay oblivious to its structure.
type Record struct {
	ExecutionID  string
	Name         string
	ValueJSON    string
	DataType     string
	SourceStep   int
	SourceMethod string
	SourceParams string // JSON of the producing operation's parameters, may be empty
	CreatedAt    time.Time
}

// Backend is the persistence contract for variables. The core never issues
// queries beyond these four shapes and never depends on a particular
// storage engine.
type Backend interface {
	Upsert(executionID string, rec *Record) error
	QueryByExecution(executionID string) ([]*Record, error)
	// QueryByName returns (nil, nil) when the variable does not exist.
	QueryByName(executionID, name string) (*Record, error)
	DeleteByExecution(executionID string) error
}
