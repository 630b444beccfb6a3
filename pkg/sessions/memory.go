package sessions

import (
	"sync"

	"github.com/pkg/errors"
)

// Memory is an in-process session container: attribute storage plus
// dispatch of the passivation lifecycle to every stored listener. It stands
// in for a servlet-style container in tests and single-node deployments.
type Memory struct {
	mu    sync.RWMutex
	attrs map[string]any
}

func NewMemory() *Memory {
	return &Memory{attrs: map[string]any{}}
}

func (m *Memory) Put(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrs[key] = value
}

func (m *Memory) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.attrs, key)
}

// Get returns the stored value, if any. Not part of the Storage contract;
// tests and the container itself use it.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.attrs[key]
	return v, ok
}

func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.attrs)
}

// Passivate notifies every stored PassivationListener that the session is
// about to be serialized.
func (m *Memory) Passivate() {
	for _, l := range m.listeners() {
		l.BeforeSerialize()
	}
}

// Activate notifies every stored PassivationListener that the session has
// been revived with the given UI set. The first listener error aborts the
// dispatch and is returned; revival without a matching UI is fatal to the
// session.
func (m *Memory) Activate(set SessionSet) error {
	for _, l := range m.listeners() {
		if err := l.AfterRevive(set); err != nil {
			return errors.Wrap(err, "activate session")
		}
	}
	return nil
}

func (m *Memory) listeners() []PassivationListener {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]PassivationListener, 0, len(m.attrs))
	for _, v := range m.attrs {
		if l, ok := v.(PassivationListener); ok {
			out = append(out, l)
		}
	}
	return out
}
