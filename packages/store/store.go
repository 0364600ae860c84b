// Package store holds the execution-scoped variables produced by test steps:
// a persistence backend behind a bounded LRU read cache, plus the metadata
// needed for audit and editor tooling.
package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/stepvault/stepvault/packages/value"
)

// DefaultCacheSize bounds the in-process read cache.
const DefaultCacheSize = 1000

// Variable is the full stored record with its decoded value.
type Variable struct {
	Name            string      `json:"name"`
	Value           value.Value `json:"value"`
	DataType        string      `json:"dataType"`
	SourceStepIndex int         `json:"sourceStepIndex"`
	SourceMethod    string      `json:"sourceMethod"`
	SourceParams    string      `json:"sourceParams,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// Export is the archival document produced by Export().
type Export struct {
	ExecutionID string      `json:"executionId"`
	Variables   []*Variable `json:"variables"`
	ExportedAt  time.Time   `json:"exportedAt"`
}

// VarStore is the variable store for one execution. Reads go through an LRU
// cache; writes persist first and only then touch the cache, so a failed
// write leaves the previously stored value intact.
//
// Known limitation: the cache is invalidated only by LRU eviction and
// Clear(). A second process writing to the same backing database is not
// observed; callers needing cross-process freshness must route all traffic
// for an execution through one store instance.
type VarStore struct {
	executionID string
	backend     Backend

	mu       sync.Mutex
	cache    *lru.Cache[string, value.Value]
	onChange []func()
}

// Option configures a VarStore.
type Option func(*options)

type options struct {
	cacheSize int
}

// WithCacheSize overrides the default cache capacity.
func WithCacheSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheSize = n
		}
	}
}

func New(executionID string, backend Backend, opts ...Option) (*VarStore, error) {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}
	cache, err := lru.New[string, value.Value](o.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating variable cache: %w", err)
	}
	return &VarStore{
		executionID: executionID,
		backend:     backend,
		cache:       cache,
	}, nil
}

func (s *VarStore) ExecutionID() string { return s.executionID }

// OnChange registers a hook invoked after every successful Store and Clear.
// The suggestion service uses it to drop its read caches the moment a step
// produces new output.
func (s *VarStore) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

func (s *VarStore) notifyChange() {
	s.mu.Lock()
	hooks := make([]func(), len(s.onChange))
	copy(hooks, s.onChange)
	s.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

// Store upserts a variable. A second call with the same name overwrites the
// value and all source metadata. sourceParams may be nil. The only failure
// mode besides backend errors is a value that cannot be serialized to JSON;
// in that case nothing is written.
func (s *VarStore) Store(name string, val any, sourceStepIndex int, sourceMethod string, sourceParams map[string]any) error {
	v, err := value.FromAny(val)
	if err != nil {
		return err
	}
	valueJSON, err := json.Marshal(v)
	if err != nil {
		return &value.SerializationError{Err: err}
	}

	var paramsJSON string
	if sourceParams != nil {
		data, err := json.Marshal(sourceParams)
		if err != nil {
			return &value.SerializationError{Err: err}
		}
		paramsJSON = string(data)
	}

	rec := &Record{
		ExecutionID:  s.executionID,
		Name:         name,
		ValueJSON:    string(valueJSON),
		DataType:     v.Kind().String(),
		SourceStep:   sourceStepIndex,
		SourceMethod: sourceMethod,
		SourceParams: paramsJSON,
		CreatedAt:    time.Now().UTC(),
	}

	s.mu.Lock()
	if err := s.backend.Upsert(s.executionID, rec); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("storing variable %q: %w", name, err)
	}
	s.cache.Add(name, v)
	s.mu.Unlock()

	s.notifyChange()
	return nil
}

// Get returns the variable's value. Cache first; on miss the backend is
// consulted and the cache populated.
func (s *VarStore) Get(name string) (value.Value, bool, error) {
	s.mu.Lock()
	if v, ok := s.cache.Get(name); ok {
		s.mu.Unlock()
		return v, true, nil
	}
	s.mu.Unlock()

	rec, err := s.backend.QueryByName(s.executionID, name)
	if err != nil {
		return value.Null, false, fmt.Errorf("reading variable %q: %w", name, err)
	}
	if rec == nil {
		return value.Null, false, nil
	}
	v, err := value.Parse([]byte(rec.ValueJSON))
	if err != nil {
		return value.Null, false, fmt.Errorf("decoding variable %q: %w", name, err)
	}

	s.mu.Lock()
	s.cache.Add(name, v)
	s.mu.Unlock()
	return v, true, nil
}

// GetMetadata returns the full record, or nil when absent. Always reads
// through to the backend: metadata lookups are rare and want fresh source
// attribution.
func (s *VarStore) GetMetadata(name string) (*Variable, error) {
	rec, err := s.backend.QueryByName(s.executionID, name)
	if err != nil {
		return nil, fmt.Errorf("reading variable %q: %w", name, err)
	}
	if rec == nil {
		return nil, nil
	}
	return recordToVariable(rec)
}

// List returns all variables ordered by source step ascending, name as the
// tiebreaker.
func (s *VarStore) List() ([]*Variable, error) {
	recs, err := s.backend.QueryByExecution(s.executionID)
	if err != nil {
		return nil, fmt.Errorf("listing variables: %w", err)
	}
	vars := make([]*Variable, 0, len(recs))
	for _, rec := range recs {
		v, err := recordToVariable(rec)
		if err != nil {
			return nil, err
		}
		vars = append(vars, v)
	}
	sort.SliceStable(vars, func(i, j int) bool {
		if vars[i].SourceStepIndex != vars[j].SourceStepIndex {
			return vars[i].SourceStepIndex < vars[j].SourceStepIndex
		}
		return vars[i].Name < vars[j].Name
	})
	return vars, nil
}

// Clear removes every variable of the execution and empties the cache.
func (s *VarStore) Clear() error {
	s.mu.Lock()
	if err := s.backend.DeleteByExecution(s.executionID); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clearing variables: %w", err)
	}
	s.cache.Purge()
	s.mu.Unlock()

	s.notifyChange()
	return nil
}

// Export snapshots all variables for archival or offline inspection.
func (s *VarStore) Export() (*Export, error) {
	vars, err := s.List()
	if err != nil {
		return nil, err
	}
	return &Export{
		ExecutionID: s.executionID,
		Variables:   vars,
		ExportedAt:  time.Now().UTC(),
	}, nil
}

func recordToVariable(rec *Record) (*Variable, error) {
	v, err := value.Parse([]byte(rec.ValueJSON))
	if err != nil {
		return nil, fmt.Errorf("decoding variable %q: %w", rec.Name, err)
	}
	return &Variable{
		Name:            rec.Name,
		Value:           v,
		DataType:        rec.DataType,
		SourceStepIndex: rec.SourceStep,
		SourceMethod:    rec.SourceMethod,
		SourceParams:    rec.SourceParams,
		CreatedAt:       rec.CreatedAt,
	}, nil
}
