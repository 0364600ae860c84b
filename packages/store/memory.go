package store

import (
	"sync"

	"github.com/stepvault/stepvault/packages/refs"
)

// Memory is an in-memory backend for tests and ephemeral executions. It
// implements both store.Backend and refs.Backend.
type Memory struct {
	mu         sync.Mutex
	variables  map[string]map[string]*Record // executionID -> name -> record
	references map[string][]*refs.Reference
}

func NewMemory() *Memory {
	return &Memory{
		variables:  make(map[string]map[string]*Record),
		references: make(map[string][]*refs.Reference),
	}
}

func (m *Memory) Upsert(executionID string, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	vars, ok := m.variables[executionID]
	if !ok {
		vars = make(map[string]*Record)
		m.variables[executionID] = vars
	}
	cp := *rec
	vars[rec.Name] = &cp
	return nil
}

func (m *Memory) QueryByExecution(executionID string) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for _, rec := range m.variables[executionID] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) QueryByName(executionID, name string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.variables[executionID][name]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) DeleteByExecution(executionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.variables, executionID)
	return nil
}

func (m *Memory) AppendReference(executionID string, ref *refs.Reference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ref
	m.references[executionID] = append(m.references[executionID], &cp)
	return nil
}

func (m *Memory) ReferencesByExecution(executionID string) ([]*refs.Reference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*refs.Reference, 0, len(m.references[executionID]))
	for _, ref := range m.references[executionID] {
		cp := *ref
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) DeleteReferencesByExecution(executionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.references, executionID)
	return nil
}
