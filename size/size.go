// Package size holds the small numeric types shared across the terminal
// packages for counting rows, columns and code units.
package size

// CellCountInt counts a number of grid cells (columns or rows). It is a
// distinct type from plain int so that cell-count arithmetic can't be
// accidentally mixed with unrelated integers at call sites.
type CellCountInt int32

// CodeUnitCount counts code units stored in a row's packed character
// buffer, as distinct from CellCountInt which counts display columns.
type CodeUnitCount int32
