// Package sorter rebuilds JSON values with object keys in alphabetical order.
package sorter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/mcncl/kompare/internal/models"
)

// Sorter orders object keys case-insensitively using a locale collator.
// A Sorter is not safe for concurrent use.
type Sorter struct {
	collator *collate.Collator
}

// New creates a Sorter for the given language. language.Und gives the root
// collation order.
func New(tag language.Tag) *Sorter {
	return &Sorter{collator: collate.New(tag)}
}

// SortKeys sorts v with the root collation
func SortKeys(v models.Value) models.Value {
	return New(language.Und).Sort(v)
}

// Sort returns a copy of v where every object has its keys reordered.
// Arrays keep their element order; only their elements are sorted. Keys that
// compare equal ignoring case keep their original relative order.
func (s *Sorter) Sort(v models.Value) models.Value {
	switch v.Type() {
	case models.TypeArray:
		items := v.Items()
		sorted := make([]models.Value, len(items))
		for i, item := range items {
			sorted[i] = s.Sort(item)
		}
		return models.Array(sorted...)
	case models.TypeObject:
		members := append([]models.Member(nil), v.Object().Members()...)
		sort.SliceStable(members, func(i, j int) bool {
			return s.Less(members[i].Key, members[j].Key)
		})
		obj := models.NewObject()
		for _, m := range members {
			obj.Set(m.Key, s.Sort(m.Value))
		}
		return models.FromObject(obj)
	default:
		return v
	}
}

// Less reports whether key a sorts before key b
func (s *Sorter) Less(a, b string) bool {
	return s.collator.CompareString(strings.ToLower(a), strings.ToLower(b)) < 0
}
