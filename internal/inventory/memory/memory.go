// Package memory provides an in-memory Inventory.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/yairfalse/devstop/internal/filter"
	"github.com/yairfalse/devstop/pkg/instance"
)

// Inventory holds instances in insertion order.
type Inventory struct {
	mu        sync.Mutex
	instances []instance.Instance

	listErr  error
	stopErrs map[string]error
	stopped  []string
}

// New creates an inventory seeded with instances.
func New(instances ...instance.Instance) *Inventory {
	inv := &Inventory{stopErrs: make(map[string]error)}
	for _, i := range instances {
		inv.Add(i)
	}
	return inv
}

// Add appends an instance.
func (m *Inventory) Add(i instance.Instance) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := make(map[string]string, len(i.Tags))
	for k, v := range i.Tags {
		tags[k] = v
	}
	i.Tags = tags
	m.instances = append(m.instances, i)
}

// FailList makes every ListInstances call return err. Nil clears it.
func (m *Inventory) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// FailStop makes StopInstance for id return err. Nil clears it.
func (m *Inventory) FailStop(id string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.stopErrs, id)
		return
	}
	m.stopErrs[id] = err
}

// ListInstances returns the instances matching f.
func (m *Inventory) ListInstances(_ context.Context, f filter.Filter) ([]instance.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.listErr != nil {
		return nil, m.listErr
	}
	return f.Apply(m.snapshot()), nil
}

// StopInstance moves a running instance to stopped.
func (m *Inventory) StopInstance(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.stopErrs[id]; ok {
		return err
	}

	for idx := range m.instances {
		if m.instances[idx].ID != id {
			continue
		}
		switch m.instances[idx].State {
		case instance.StateTerminated, instance.StateShuttingDown:
			return fmt.Errorf("instance %s is %s", id, m.instances[idx].State)
		}
		m.instances[idx].State = instance.StateStopped
		m.stopped = append(m.stopped, id)
		return nil
	}

	return fmt.Errorf("instance %s not found", id)
}

// Get returns a copy of the instance with id.
func (m *Inventory) Get(id string) (instance.Instance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, i := range m.instances {
		if i.ID == id {
			return i, true
		}
	}
	return instance.Instance{}, false
}

// StopCalls returns the ids successfully stopped, in call order.
func (m *Inventory) StopCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stopped...)
}

func (m *Inventory) snapshot() []instance.Instance {
	out := make([]instance.Instance, len(m.instances))
	copy(out, m.instances)
	return out
}
