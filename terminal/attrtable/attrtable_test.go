package attrtable

import (
	"testing"

	"github.com/arvindk/termrow/terminal/cellattr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_DefaultAttributeUsesDefaultID(t *testing.T) {
	tbl := New(Options{})
	id, err := tbl.Intern(cellattr.Attribute{})
	require.NoError(t, err)
	assert.Equal(t, DefaultID, id)
	assert.Equal(t, 0, tbl.Count())
}

func TestTable_InternDeduplicates(t *testing.T) {
	tbl := New(Options{})
	a := cellattr.Attribute{Bold: true}

	id1, err := tbl.Intern(a)
	require.NoError(t, err)
	id2, err := tbl.Intern(a)
	require.NoError(t, err)

	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, tbl.Count())
}

func TestTable_ReleaseFreesEntry(t *testing.T) {
	tbl := New(Options{})
	a := cellattr.Attribute{Italic: true}

	id, err := tbl.Intern(a)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Count())

	tbl.Release(id)
	assert.Equal(t, 0, tbl.Count())
}

func TestTable_UseIncrementsRefCount(t *testing.T) {
	tbl := New(Options{})
	a := cellattr.Attribute{Faint: true}

	id, err := tbl.Intern(a)
	require.NoError(t, err)
	tbl.Use(id)
	tbl.Release(id)
	assert.Equal(t, 1, tbl.Count())

	tbl.Release(id)
	assert.Equal(t, 0, tbl.Count())
}

func TestTable_GetRoundTripsInternedValue(t *testing.T) {
	tbl := New(Options{})
	a := cellattr.Attribute{Bold: true, Underline: 1}

	id, err := tbl.Intern(a)
	require.NoError(t, err)

	got, ok := tbl.Get(id)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestTable_GetDefaultIDReturnsZeroValue(t *testing.T) {
	tbl := New(Options{})

	got, ok := tbl.Get(DefaultID)
	require.True(t, ok)
	assert.Equal(t, cellattr.Attribute{}, got)
}

func TestTable_GetFailsAfterRelease(t *testing.T) {
	tbl := New(Options{})
	a := cellattr.Attribute{Faint: true}

	id, err := tbl.Intern(a)
	require.NoError(t, err)
	tbl.Release(id)

	_, ok := tbl.Get(id)
	assert.False(t, ok)
}

func TestTable_InternFailsAtCapacity(t *testing.T) {
	cap := uint64(3)
	tbl := New(Options{Capacity: cap})

	_, err := tbl.Intern(cellattr.Attribute{Bold: true})
	require.NoError(t, err)
	_, err = tbl.Intern(cellattr.Attribute{Italic: true})
	require.NoError(t, err)

	_, err = tbl.Intern(cellattr.Attribute{Faint: true})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}
