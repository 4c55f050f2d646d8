// Package attrtable interns cellattr.Attribute values so that many cells
// sharing the same styling reference a single copy instead of each
// carrying their own.
package attrtable

import (
	"errors"

	"github.com/arvindk/termrow/logger"
	"github.com/arvindk/termrow/terminal/cellattr"
	"github.com/arvindk/termrow/terminal/set"
)

// DefaultID is the id every default (zero-value) attribute maps to; it is
// never looked up in the underlying set.
const DefaultID = set.ID(0)

// ErrCapacityExceeded is returned by Intern when the table already holds
// as many distinct non-default attributes as it was built to hold.
var ErrCapacityExceeded = errors.New("attrtable: capacity exceeded")

// Table is a ref-counted interning table for cellattr.Attribute values.
type Table struct {
	set *set.RefCountedSet
	log logger.Logger
}

// Options configures a new Table.
type Options struct {
	// Capacity sizes the underlying set, which reserves one slot, so the
	// table holds at most Capacity-1 distinct non-default attributes.
	// Zero uses the set package's default.
	Capacity uint64
	Logger   logger.Logger
}

// New builds an empty attribute table.
func New(opts Options) *Table {
	log := opts.Logger
	if log == nil {
		log = logger.DefaultLogger
	}

	var setOpts set.Options
	if opts.Capacity > 0 {
		cap := opts.Capacity
		setOpts.Cap = &cap
	}

	return &Table{
		set: set.NewRefCountedSet(setOpts),
		log: log,
	}
}

// Intern returns the stable id for value, adding it (with a reference
// count of one) if it isn't already present, or bumping the existing
// entry's reference count otherwise. The zero-value Attribute always maps
// to DefaultID without touching the underlying set. Once the table is
// full of distinct non-default attributes, Intern returns
// ErrCapacityExceeded instead of growing it without bound.
func (t *Table) Intern(value cellattr.Attribute) (set.ID, error) {
	if value.IsDefault() {
		return DefaultID, nil
	}
	id, ok := t.set.Add(value)
	if !ok {
		return DefaultID, ErrCapacityExceeded
	}
	t.log.Debug("interned attribute", "id", id, "count", t.set.Count())
	return id, nil
}

// Get returns the attribute stored under id, or the zero-value Attribute
// for DefaultID. It fails if id names an attribute that was never interned
// or has since been fully released.
func (t *Table) Get(id set.ID) (cellattr.Attribute, bool) {
	if id == DefaultID {
		return cellattr.Attribute{}, true
	}
	value, ok := t.set.Get(id)
	if !ok {
		return cellattr.Attribute{}, false
	}
	return value.(cellattr.Attribute), true
}

// Use bumps the reference count of an already-interned attribute.
func (t *Table) Use(id set.ID) {
	if id == DefaultID {
		return
	}
	t.set.Use(id)
}

// Release drops a reference to an interned attribute.
func (t *Table) Release(id set.ID) {
	if id == DefaultID {
		return
	}
	t.set.Release(id)
}

// Count returns the number of distinct, live attributes currently interned.
func (t *Table) Count() int {
	return t.set.Count()
}
