package service

import (
	"sync"
)

// Manager hands out one Execution per execution id for callers that route
// by id (the API layer). Executions are created lazily and live until
// Release; nothing is disposed implicitly.
type Manager struct {
	backend Backend
	cfg     Config

	mu         sync.Mutex
	executions map[string]*Execution
}

func NewManager(backend Backend, cfg Config) *Manager {
	return &Manager{
		backend:    backend,
		cfg:        cfg,
		executions: make(map[string]*Execution),
	}
}

// Get returns the execution for id, creating it on first use.
func (m *Manager) Get(id string) (*Execution, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.executions[id]; ok {
		return e, nil
	}
	e, err := NewExecution(id, m.backend, m.cfg)
	if err != nil {
		return nil, err
	}
	m.executions[e.ID()] = e
	return e, nil
}

// Release purges the execution's data and forgets the instance. Releasing
// an unknown id is a no-op.
func (m *Manager) Release(id string) error {
	m.mu.Lock()
	e, ok := m.executions[id]
	delete(m.executions, id)
	m.mu.Unlock()
	if !ok {
		return nil
	}
	if err := e.ClearVariables(); err != nil {
		return err
	}
	return e.Close()
}

// Active returns the ids of executions currently held.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.executions))
	for id := range m.executions {
		ids = append(ids, id)
	}
	return ids
}
