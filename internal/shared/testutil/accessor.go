package testutil

import (
	"sync"

	"github.com/changhyeonkim/gorm-timestamp/pkg/timestamp"
)

// MockFieldAccessor is a timestamp.FieldAccessor for testing.
// Unset funcs fall back to timestamp.ReflectAccessor. Every call is recorded
// by field name so tests can assert what was read or written.
type MockFieldAccessor struct {
	GetFunc    func(entity any, name string) (any, error)
	SetFunc    func(entity any, name string, value any) error
	CanSetFunc func(entity any, name string) bool

	mu      sync.Mutex
	gets    []string
	sets    []string
	canSets []string
}

// Ensure MockFieldAccessor implements timestamp.FieldAccessor
var _ timestamp.FieldAccessor = (*MockFieldAccessor)(nil)

// NewMockFieldAccessor creates a mock accessor backed by reflection
func NewMockFieldAccessor() *MockFieldAccessor {
	return &MockFieldAccessor{}
}

func (m *MockFieldAccessor) Get(entity any, name string) (any, error) {
	m.record(&m.gets, name)
	if m.GetFunc != nil {
		return m.GetFunc(entity, name)
	}
	return timestamp.ReflectAccessor{}.Get(entity, name)
}

func (m *MockFieldAccessor) Set(entity any, name string, value any) error {
	m.record(&m.sets, name)
	if m.SetFunc != nil {
		return m.SetFunc(entity, name, value)
	}
	return timestamp.ReflectAccessor{}.Set(entity, name, value)
}

func (m *MockFieldAccessor) CanSet(entity any, name string) bool {
	m.record(&m.canSets, name)
	if m.CanSetFunc != nil {
		return m.CanSetFunc(entity, name)
	}
	return timestamp.ReflectAccessor{}.CanSet(entity, name)
}

// Reads returns how many times name was read. An empty name counts all reads.
func (m *MockFieldAccessor) Reads(name string) int {
	return m.count(m.gets, name)
}

// Writes returns how many times name was written. An empty name counts all writes.
func (m *MockFieldAccessor) Writes(name string) int {
	return m.count(m.sets, name)
}

// WritabilityChecks returns how many times writability of name was checked.
func (m *MockFieldAccessor) WritabilityChecks(name string) int {
	return m.count(m.canSets, name)
}

func (m *MockFieldAccessor) record(calls *[]string, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*calls = append(*calls, name)
}

func (m *MockFieldAccessor) count(calls []string, name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, c := range calls {
		if name == "" || c == name {
			n++
		}
	}
	return n
}
