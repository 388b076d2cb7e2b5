package models

import (
	"encoding/json"
	"fmt"
)

// DiffKind tells what happened at a path
type DiffKind int

const (
	DiffAdded DiffKind = iota
	DiffRemoved
	DiffChanged
)

// String returns the lowercase name used in output
func (k DiffKind) String() string {
	switch k {
	case DiffAdded:
		return "added"
	case DiffRemoved:
		return "removed"
	case DiffChanged:
		return "changed"
	}
	return fmt.Sprintf("DiffKind(%d)", int(k))
}

// Diff is one discrepancy between two documents. Left is set for removed and
// changed values, Right for added and changed values.
type Diff struct {
	Kind  DiffKind
	Path  string
	Left  *Value
	Right *Value
}

// Added records a value present only on the right
func Added(path string, right Value) Diff {
	return Diff{Kind: DiffAdded, Path: path, Right: &right}
}

// Removed records a value present only on the left
func Removed(path string, left Value) Diff {
	return Diff{Kind: DiffRemoved, Path: path, Left: &left}
}

// Changed records a value that differs between both sides
func Changed(path string, left, right Value) Diff {
	return Diff{Kind: DiffChanged, Path: path, Left: &left, Right: &right}
}

// Invert swaps the sides of the diff: added becomes removed and the other way
// around, changed values swap places.
func (d Diff) Invert() Diff {
	inv := Diff{Path: d.Path, Left: d.Right, Right: d.Left}
	switch d.Kind {
	case DiffAdded:
		inv.Kind = DiffRemoved
	case DiffRemoved:
		inv.Kind = DiffAdded
	default:
		inv.Kind = DiffChanged
	}
	return inv
}

type diffJSON struct {
	Type       string `json:"type"`
	Path       string `json:"path"`
	LeftValue  *Value `json:"leftValue,omitempty"`
	RightValue *Value `json:"rightValue,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (d Diff) MarshalJSON() ([]byte, error) {
	return json.Marshal(diffJSON{
		Type:       d.Kind.String(),
		Path:       d.Path,
		LeftValue:  d.Left,
		RightValue: d.Right,
	})
}

// Stats tallies diffs by kind
type Stats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
	Changed int `json:"changed"`
}

// Total returns the number of diffs counted
func (s Stats) Total() int {
	return s.Added + s.Removed + s.Changed
}
