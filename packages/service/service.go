// Package service wires the store, resolver, tracker and suggestion service
// into one execution-scoped facade and exposes the operations the API layer
// calls. Each execution owns its own isolated triple; there is no process
// global state.
package service

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stepvault/stepvault/packages/refs"
	"github.com/stepvault/stepvault/packages/resolve"
	"github.com/stepvault/stepvault/packages/store"
	"github.com/stepvault/stepvault/packages/suggest"
)

// Backend bundles what an execution needs from persistence: the variable
// store contract and the reference log contract. Both SQLite and Memory
// backends satisfy it.
type Backend interface {
	store.Backend
	refs.Backend
}

// Execution is the context object for one test-case run. Create it at
// execution start, thread it through the step pipeline, and Close it at
// teardown.
type Execution struct {
	id       string
	store    *store.VarStore
	tracker  *refs.Tracker
	resolver *resolve.Resolver
	suggest  *suggest.Service
}

// Config carries the tunables an execution accepts. Zero values fall back
// to defaults.
type Config struct {
	CacheSize     int
	SuggestionTTL time.Duration
}

// NewExecution builds the store/resolver/suggestion triple for one
// execution. An empty id gets a generated one.
func NewExecution(id string, backend Backend, cfg Config) (*Execution, error) {
	if id == "" {
		id = uuid.NewString()
	}

	var storeOpts []store.Option
	if cfg.CacheSize > 0 {
		storeOpts = append(storeOpts, store.WithCacheSize(cfg.CacheSize))
	}
	vs, err := store.New(id, backend, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating store for execution %s: %w", id, err)
	}

	tracker := refs.NewTracker(id, backend)
	resolver := resolve.New(vs, tracker)

	var suggestOpts []suggest.Option
	if cfg.SuggestionTTL > 0 {
		suggestOpts = append(suggestOpts, suggest.WithTTL(cfg.SuggestionTTL))
	}

	return &Execution{
		id:       id,
		store:    vs,
		tracker:  tracker,
		resolver: resolver,
		suggest:  suggest.New(vs, resolver, suggestOpts...),
	}, nil
}

func (e *Execution) ID() string { return e.id }

// SetWarnFunc forwards resolution warnings (unresolved expressions) to the
// caller's logger.
func (e *Execution) SetWarnFunc(fn resolve.WarnFunc) {
	e.resolver.SetWarnFunc(fn)
}

// StoreVariable records a step's output under name, overwriting any
// previous variable of that name.
func (e *Execution) StoreVariable(name string, val any, sourceStepIndex int, sourceMethod string, sourceParams map[string]any) error {
	return e.store.Store(name, val, sourceStepIndex, sourceMethod, sourceParams)
}

// GetVariable returns the variable's value as plain JSON shapes, with ok
// reporting existence.
func (e *Execution) GetVariable(name string) (any, bool, error) {
	v, ok, err := e.store.Get(name)
	if err != nil || !ok {
		return nil, ok, err
	}
	return v.ToAny(), true, nil
}

// GetVariableMetadata returns the full record, nil when absent.
func (e *Execution) GetVariableMetadata(name string) (*store.Variable, error) {
	return e.store.GetMetadata(name)
}

// ListVariables returns all variables ordered by producing step.
func (e *Execution) ListVariables() ([]*store.Variable, error) {
	return e.store.List()
}

// ResolveStepParameters substitutes expressions in a step's parameter tree
// before the step runs. Unresolved expressions stay verbatim; each
// occurrence lands in the reference log either way.
func (e *Execution) ResolveStepParameters(params any, stepIndex int) (any, error) {
	return e.resolver.ResolveParameters(params, stepIndex)
}

// ListReferences returns the execution's reference audit trail.
func (e *Execution) ListReferences() ([]*refs.Reference, error) {
	return e.tracker.List()
}

// ListSuggestions returns autocomplete candidates visible to stepIndex
// (suggest.AllSteps for every variable).
func (e *Execution) ListSuggestions(stepIndex int, includeProperties bool, limit int) ([]*suggest.Suggestion, error) {
	return e.suggest.ListSuggestions(stepIndex, includeProperties, limit)
}

// ExploreProperties walks a variable's value down to maxDepth levels.
func (e *Execution) ExploreProperties(name string, maxDepth int) ([]*suggest.PropertyNode, error) {
	return e.suggest.Explore(name, maxDepth)
}

// Search fuzzy-matches variable names.
func (e *Execution) Search(query string, limit int, stepIndex int) ([]*suggest.Match, error) {
	return e.suggest.Search(query, limit, stepIndex)
}

// ValidateReferences checks expressions without recording them.
func (e *Execution) ValidateReferences(expressions []string, stepIndex int) []*suggest.ValidationResult {
	return e.suggest.Validate(expressions, stepIndex)
}

// ClearVariables purges the execution's variables and references together.
// Used at execution teardown and safe to call twice.
func (e *Execution) ClearVariables() error {
	if err := e.store.Clear(); err != nil {
		return err
	}
	return e.tracker.Clear()
}

// ExportVariables snapshots the execution's variables for archival.
func (e *Execution) ExportVariables() (*store.Export, error) {
	return e.store.Export()
}

// Close releases the execution's in-process resources. It does not delete
// persisted data; call ClearVariables first when teardown should purge.
func (e *Execution) Close() error {
	return nil
}
