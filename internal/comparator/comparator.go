// Package comparator computes a flat, path-addressed list of differences
// between two JSON values.
//
// Values are walked in lock-step. Two values at the same path whose types
// differ are reported as a single change and never descended into. Objects are
// matched key by key, arrays index by index; there is no attempt to align
// array elements that moved, so inserting at the front of an array reports
// every following index.
//
// Paths use ".key" for object members ("key" at the root) and "[i]" for array
// elements, e.g. "user.addresses[0].city". The root itself has the empty path.
//
// Diffs come out depth-first. Object members are visited in the left object's
// key order followed by keys that only exist on the right, in the right
// object's order.
package comparator

import (
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcncl/kompare/internal/log"
	"github.com/mcncl/kompare/internal/models"
)

// Options tune a comparison. The zero value compares everything sequentially
// with no depth limit.
type Options struct {
	// MaxDepth stops descending into containers nested this deep. A pair of
	// unequal containers at the limit is reported as one change. 0 disables
	// the limit.
	MaxDepth int
	// IgnorePaths drops every diff at one of these paths or below it.
	IgnorePaths []string
	// Concurrency compares the children of the root pair on up to this many
	// goroutines. Values below 2 compare sequentially.
	Concurrency int
}

// Option adjusts Options
type Option func(*Options)

// WithMaxDepth limits how deep containers are descended
func WithMaxDepth(depth int) Option {
	return func(o *Options) {
		o.MaxDepth = depth
	}
}

// WithIgnorePaths skips the given paths and everything below them
func WithIgnorePaths(paths ...string) Option {
	return func(o *Options) {
		for _, p := range paths {
			if p != "" {
				o.IgnorePaths = append(o.IgnorePaths, p)
			}
		}
	}
}

// WithConcurrency fans the root's children out over n goroutines
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// Compare returns the differences between left and right
func Compare(left, right models.Value, opts ...Option) []models.Diff {
	return CompareAt(left, right, "", opts...)
}

// CompareAt compares left and right as if they were found at path. Paths of
// the returned diffs are built on top of it.
func CompareAt(left, right models.Value, path string, opts ...Option) []models.Diff {
	c := newComparator(opts...)
	if c.ignored(path) {
		return []models.Diff{}
	}

	var diffs []models.Diff
	if c.opts.Concurrency > 1 && c.descends(left, right, 0) {
		diffs = c.compareParallel(path, left, right)
	} else {
		diffs = c.compareValues(path, left, right, 0, nil)
	}

	log.Debugf("compared %s with %s at %q: %d diffs", left.Type(), right.Type(), path, len(diffs))
	if diffs == nil {
		diffs = []models.Diff{}
	}
	return diffs
}

type comparator struct {
	opts Options
}

func newComparator(opts ...Option) *comparator {
	c := &comparator{}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// entry is one key or index visited inside a pair of containers
type entry struct {
	path    string
	left    models.Value
	right   models.Value
	inLeft  bool
	inRight bool
}

// compareValues compares two values found at the same path. depth is the
// nesting level of the values, 0 for the root.
func (c *comparator) compareValues(path string, left, right models.Value, depth int, diffs []models.Diff) []models.Diff {
	if left.Type() != right.Type() {
		return append(diffs, models.Changed(path, left, right))
	}

	switch left.Type() {
	case models.TypeObject, models.TypeArray:
		if !c.descends(left, right, depth) {
			if !left.Equal(right) {
				diffs = append(diffs, models.Changed(path, left, right))
			}
			return diffs
		}
		log.Tracef("descending into %s at %q", left.Type(), path)
		for _, e := range entries(path, left, right) {
			diffs = c.compareEntry(e, depth+1, diffs)
		}
		return diffs
	case models.TypeNull, models.TypeBool, models.TypeNumber, models.TypeString:
		if !left.Equal(right) {
			diffs = append(diffs, models.Changed(path, left, right))
		}
		return diffs
	}
	return diffs
}

func (c *comparator) compareEntry(e entry, depth int, diffs []models.Diff) []models.Diff {
	if c.ignored(e.path) {
		return diffs
	}
	switch {
	case !e.inRight:
		return append(diffs, models.Removed(e.path, e.left))
	case !e.inLeft:
		return append(diffs, models.Added(e.path, e.right))
	default:
		return c.compareValues(e.path, e.left, e.right, depth, diffs)
	}
}

// compareParallel compares the root's entries concurrently and joins the
// results in the same order a sequential walk produces.
func (c *comparator) compareParallel(path string, left, right models.Value) []models.Diff {
	es := entries(path, left, right)
	results := make([][]models.Diff, len(es))

	var g errgroup.Group
	g.SetLimit(c.opts.Concurrency)
	for i, e := range es {
		g.Go(func() error {
			results[i] = c.compareEntry(e, 1, nil)
			return nil
		})
	}
	_ = g.Wait()

	var diffs []models.Diff
	for _, r := range results {
		diffs = append(diffs, r...)
	}
	return diffs
}

// descends reports whether the pair is two containers of the same type that
// the depth limit allows walking into
func (c *comparator) descends(left, right models.Value, depth int) bool {
	if left.Type() != right.Type() || !left.Type().IsContainer() {
		return false
	}
	return c.opts.MaxDepth <= 0 || depth < c.opts.MaxDepth
}

func (c *comparator) ignored(path string) bool {
	for _, p := range c.opts.IgnorePaths {
		if path == p || strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

// entries lists the keys or indices of two containers of the same type
func entries(path string, left, right models.Value) []entry {
	if left.Type() == models.TypeArray {
		return arrayEntries(path, left.Items(), right.Items())
	}
	return objectEntries(path, left.Object(), right.Object())
}

func objectEntries(path string, left, right *models.Object) []entry {
	es := make([]entry, 0, left.Len())
	for _, m := range left.Members() {
		rv, ok := right.Get(m.Key)
		es = append(es, entry{
			path:    KeyPath(path, m.Key),
			left:    m.Value,
			right:   rv,
			inLeft:  true,
			inRight: ok,
		})
	}
	for _, m := range right.Members() {
		if left.Has(m.Key) {
			continue
		}
		es = append(es, entry{
			path:    KeyPath(path, m.Key),
			right:   m.Value,
			inRight: true,
		})
	}
	return es
}

func arrayEntries(path string, left, right []models.Value) []entry {
	maxLen := max(len(left), len(right))
	es := make([]entry, maxLen)
	for i := 0; i < maxLen; i++ {
		e := entry{path: IndexPath(path, i)}
		if i < len(left) {
			e.left, e.inLeft = left[i], true
		}
		if i < len(right) {
			e.right, e.inRight = right[i], true
		}
		es[i] = e
	}
	return es
}

// KeyPath appends an object key to path
func KeyPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// IndexPath appends an array index to path
func IndexPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
