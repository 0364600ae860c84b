// Package refs keeps the append-only audit trail of every ${...} expression
// encountered while resolving step parameters, successful or not.
package refs

import (
	"fmt"
	"time"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Reference is one recorded expression occurrence. References never mutate
// variables and are only removed together with them at execution teardown.
type Reference struct {
	ExecutionID        string
	StepIndex          int
	VariableName       string
	Path               string // accessor chain after the variable name
	OriginalExpression string // verbatim ${...} text
	ResolvedValue      *string
	Status             string
	ErrorMessage       string
	CreatedAt          time.Time
}

// Backend is what the tracker needs from persistence. The store's SQLite
// and Memory backends both implement it.
type Backend interface {
	AppendReference(executionID string, ref *Reference) error
	ReferencesByExecution(executionID string) ([]*Reference, error)
	DeleteReferencesByExecution(executionID string) error
}

// Tracker appends references for one execution.
type Tracker struct {
	executionID string
	backend     Backend
}

func NewTracker(executionID string, backend Backend) *Tracker {
	return &Tracker{executionID: executionID, backend: backend}
}

// Record appends one reference. Duplicates are expected (the same expression
// resolved in several steps) and always appended as separate rows.
func (t *Tracker) Record(ref *Reference) error {
	ref.ExecutionID = t.executionID
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	if err := t.backend.AppendReference(t.executionID, ref); err != nil {
		return fmt.Errorf("recording reference %q: %w", ref.OriginalExpression, err)
	}
	return nil
}

// List returns all references recorded for the execution, oldest first.
func (t *Tracker) List() ([]*Reference, error) {
	return t.backend.ReferencesByExecution(t.executionID)
}

// Clear removes the execution's references. Called from execution teardown
// together with the variable purge.
func (t *Tracker) Clear() error {
	return t.backend.DeleteReferencesByExecution(t.executionID)
}
