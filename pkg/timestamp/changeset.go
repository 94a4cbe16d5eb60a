package timestamp

import "sort"

// Change is one pending field modification.
type Change struct {
	Old any
	New any
}

// ChangeSet holds the fields the host already plans to write in an update,
// keyed by Go field name.
type ChangeSet map[string]Change

// Len returns the number of changed fields.
func (c ChangeSet) Len() int {
	return len(c)
}

// Has reports whether name is part of the change set.
func (c ChangeSet) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Names returns the changed field names in sorted order.
func (c ChangeSet) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
