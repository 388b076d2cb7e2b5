package comparator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/kompare/internal/models"
	"github.com/mcncl/kompare/internal/parser"
)

var valueComparer = cmp.Comparer(func(a, b models.Value) bool {
	return a.Type() == b.Type() && a.Equal(b)
})

func parse(t *testing.T, s string) models.Value {
	t.Helper()
	v, err := parser.ParseString(s)
	require.NoError(t, err)
	return v
}

func num(s string) models.Value { return models.Number(s) }
func str(s string) models.Value { return models.String(s) }

func assertDiffs(t *testing.T, want, got []models.Diff) {
	t.Helper()
	if diff := cmp.Diff(want, got, valueComparer); diff != "" {
		t.Errorf("diffs mismatch (-want +got):\n%s", diff)
	}
}

func TestCompare_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		left     string
		right    string
		expected []models.Diff
	}{
		{
			name:     "empty objects",
			left:     `{}`,
			right:    `{}`,
			expected: []models.Diff{},
		},
		{
			name:  "changed removed added",
			left:  `{"name":"John","age":30,"city":"NYC"}`,
			right: `{"name":"Jane","age":30,"country":"USA"}`,
			expected: []models.Diff{
				models.Changed("name", str("John"), str("Jane")),
				models.Removed("city", str("NYC")),
				models.Added("country", str("USA")),
			},
		},
		{
			name:  "array grows",
			left:  `{"a":[1,2]}`,
			right: `{"a":[1,2,3]}`,
			expected: []models.Diff{
				models.Added("a[2]", num("3")),
			},
		},
		{
			name:     "identical nested",
			left:     `{"a":{"b":1}}`,
			right:    `{"a":{"b":1}}`,
			expected: []models.Diff{},
		},
		{
			name:  "null root against object root",
			left:  `null`,
			right: `{}`,
			expected: []models.Diff{
				models.Changed("", models.Null(), models.ObjectOf()),
			},
		},
		{
			name:  "nested paths",
			left:  `{"user":{"addresses":[{"city":"NYC","zip":"1"}]}}`,
			right: `{"user":{"addresses":[{"city":"LA","zip":"1"},{"city":"SF"}]}}`,
			expected: []models.Diff{
				models.Changed("user.addresses[0].city", str("NYC"), str("LA")),
				models.Added("user.addresses[1]", parse(t, `{"city":"SF"}`)),
			},
		},
		{
			name:  "array shrinks",
			left:  `[1,2,3]`,
			right: `[1]`,
			expected: []models.Diff{
				models.Removed("[1]", num("2")),
				models.Removed("[2]", num("3")),
			},
		},
		{
			name:  "primitive roots",
			left:  `"a"`,
			right: `"b"`,
			expected: []models.Diff{
				models.Changed("", str("a"), str("b")),
			},
		},
		{
			name:  "null is a value, not a missing key",
			left:  `{"a":null}`,
			right: `{}`,
			expected: []models.Diff{
				models.Removed("a", models.Null()),
			},
		},
		{
			name:     "numbers compare by value",
			left:     `{"a":1.0,"b":[1e2]}`,
			right:    `{"a":1,"b":[100]}`,
			expected: []models.Diff{},
		},
		{
			name:  "booleans",
			left:  `[true,false]`,
			right: `[true,true]`,
			expected: []models.Diff{
				models.Changed("[1]", models.Bool(false), models.Bool(true)),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(parse(t, tt.left), parse(t, tt.right))
			assertDiffs(t, tt.expected, got)
		})
	}
}

func TestCompare_TypeMismatchDoesNotRecurse(t *testing.T) {
	tests := []struct {
		left  string
		right string
	}{
		{`{"a":1}`, `{"a":"1"}`},
		{`{"a":{"b":1}}`, `{"a":[1]}`},
		{`{"a":[]}`, `{"a":null}`},
		{`{"a":false}`, `{"a":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.left+" vs "+tt.right, func(t *testing.T) {
			left, right := parse(t, tt.left), parse(t, tt.right)
			got := Compare(left, right)

			require.Len(t, got, 1)
			assert.Equal(t, models.DiffChanged, got[0].Kind)
			assert.Equal(t, "a", got[0].Path)
			lv, _ := left.Object().Get("a")
			rv, _ := right.Object().Get("a")
			assert.True(t, got[0].Left.Equal(lv))
			assert.True(t, got[0].Right.Equal(rv))
		})
	}
}

func TestCompare_PositionalArrays(t *testing.T) {
	got := Compare(parse(t, `[1,2,3]`), parse(t, `[0,1,2,3]`))

	assertDiffs(t, []models.Diff{
		models.Changed("[0]", num("1"), num("0")),
		models.Changed("[1]", num("2"), num("1")),
		models.Changed("[2]", num("3"), num("2")),
		models.Added("[3]", num("3")),
	}, got)
}

func TestCompare_KeyOrder(t *testing.T) {
	left := parse(t, `{"z":1,"m":1,"a":1}`)
	right := parse(t, `{"q":2,"a":2,"b":2,"z":2}`)

	var paths []string
	for _, d := range Compare(left, right) {
		paths = append(paths, d.Path)
	}
	assert.Equal(t, []string{"z", "m", "a", "q", "b"}, paths)
}

func TestCompare_DiffInvariants(t *testing.T) {
	left := parse(t, `{"a":1,"b":[1,{"c":2}],"d":{"e":null}}`)
	right := parse(t, `{"a":2,"b":[1,{"c":3},4],"f":true}`)

	for _, d := range Compare(left, right) {
		switch d.Kind {
		case models.DiffAdded:
			assert.Nil(t, d.Left, d.Path)
			assert.NotNil(t, d.Right, d.Path)
		case models.DiffRemoved:
			assert.NotNil(t, d.Left, d.Path)
			assert.Nil(t, d.Right, d.Path)
		case models.DiffChanged:
			assert.NotNil(t, d.Left, d.Path)
			assert.NotNil(t, d.Right, d.Path)
		}
	}
}

// documents used by the property tests
var corpus = []string{
	`{}`,
	`[]`,
	`null`,
	`42`,
	`"text"`,
	`{"name":"John","age":30,"city":"NYC"}`,
	`{"name":"Jane","age":30,"country":"USA"}`,
	`{"a":[1,2,3],"b":{"c":{"d":[{"e":1},{"e":2}]}}}`,
	`{"a":[0,1,2,3],"b":{"c":{"d":[{"e":1},{"e":"2"}],"x":null}}}`,
	`[{"id":1,"tags":["x"]},{"id":2}]`,
	`[{"id":1,"tags":["x","y"]},[],{"id":2}]`,
	`{"a":{"b":{"c":{"d":{"e":{"f":1}}}}}}`,
	`{"a":{"b":{"c":{"d":{"e":{"f":2,"g":[true]}}}}}}`,
}

func TestCompare_Identity(t *testing.T) {
	for _, doc := range corpus {
		t.Run(doc, func(t *testing.T) {
			v := parse(t, doc)
			assert.Empty(t, Compare(v, v))
			assert.Empty(t, Compare(v, parse(t, doc)))
		})
	}
}

func TestCompare_Symmetry(t *testing.T) {
	for _, a := range corpus {
		for _, b := range corpus {
			left, right := parse(t, a), parse(t, b)

			forward := Compare(left, right)
			backward := Compare(right, left)

			byPath := make(map[string]models.Diff, len(backward))
			for _, d := range backward {
				byPath[d.Path] = d
			}
			require.Len(t, backward, len(forward), "%s vs %s", a, b)
			for _, d := range forward {
				other, ok := byPath[d.Path]
				require.True(t, ok, "%s vs %s: path %q missing in reverse", a, b, d.Path)
				assertDiffs(t, []models.Diff{d.Invert()}, []models.Diff{other})
			}
		}
	}
}

func TestCompare_LeafOnly(t *testing.T) {
	for _, a := range corpus {
		for _, b := range corpus {
			diffs := Compare(parse(t, a), parse(t, b))
			for i, outer := range diffs {
				for j, inner := range diffs {
					if i == j {
						continue
					}
					nested := outer.Path == "" ||
						strings.HasPrefix(inner.Path, outer.Path+".") ||
						strings.HasPrefix(inner.Path, outer.Path+"[")
					assert.False(t, nested, "%s vs %s: %q wraps %q", a, b, outer.Path, inner.Path)
				}
			}
		}
	}
}

func TestCompareAt_PrefixesPaths(t *testing.T) {
	got := CompareAt(parse(t, `{"a":1}`), parse(t, `{"a":2,"b":[true]}`), "root")

	assertDiffs(t, []models.Diff{
		models.Changed("root.a", num("1"), num("2")),
		models.Added("root.b", parse(t, `[true]`)),
	}, got)

	got = CompareAt(parse(t, `[1]`), parse(t, `[2]`), "items")
	assertDiffs(t, []models.Diff{models.Changed("items[0]", num("1"), num("2"))}, got)
}

func TestCompare_IgnorePaths(t *testing.T) {
	left := parse(t, `{"id":1,"meta":{"updated":"x","by":"a"},"items":[{"ts":1,"v":1},{"ts":2}],"metadata":1}`)
	right := parse(t, `{"id":2,"meta":{"updated":"y"},"items":[{"ts":9,"v":1}],"metadata":2}`)

	got := Compare(left, right, WithIgnorePaths("meta", "items[1]", ""))

	assertDiffs(t, []models.Diff{
		models.Changed("id", num("1"), num("2")),
		models.Changed("items[0].ts", num("1"), num("9")),
		models.Changed("metadata", num("1"), num("2")),
	}, got)

	assert.Empty(t, CompareAt(left, right, "x", WithIgnorePaths("x")))
}

func TestCompare_MaxDepth(t *testing.T) {
	left := parse(t, `{"a":{"b":{"c":1}},"d":[1,[2]],"e":{"f":1}}`)
	right := parse(t, `{"a":{"b":{"c":2}},"d":[1,[3]],"e":{"f":1}}`)

	assertDiffs(t, []models.Diff{
		models.Changed("a", parse(t, `{"b":{"c":1}}`), parse(t, `{"b":{"c":2}}`)),
		models.Changed("d", parse(t, `[1,[2]]`), parse(t, `[1,[3]]`)),
	}, Compare(left, right, WithMaxDepth(1)))

	assertDiffs(t, []models.Diff{
		models.Changed("a.b", parse(t, `{"c":1}`), parse(t, `{"c":2}`)),
		models.Changed("d[1]", parse(t, `[2]`), parse(t, `[3]`)),
	}, Compare(left, right, WithMaxDepth(2)))

	assertDiffs(t, []models.Diff{
		models.Changed("a.b.c", num("1"), num("2")),
		models.Changed("d[1][0]", num("2"), num("3")),
	}, Compare(left, right, WithMaxDepth(0)))
}

func TestCompare_ConcurrencyMatchesSequential(t *testing.T) {
	var lb, rb strings.Builder
	lb.WriteString("{")
	rb.WriteString("{")
	for i := 0; i < 200; i++ {
		if i > 0 {
			lb.WriteString(",")
			rb.WriteString(",")
		}
		fmt.Fprintf(&lb, `"k%d":{"n":%d,"l":[%d,%d]}`, i, i, i, i+1)
		if i%7 == 0 {
			fmt.Fprintf(&rb, `"r%d":%d`, i, i)
		} else {
			fmt.Fprintf(&rb, `"k%d":{"n":%d,"l":[%d]}`, i, i+i%3, i)
		}
	}
	lb.WriteString("}")
	rb.WriteString("}")

	left, right := parse(t, lb.String()), parse(t, rb.String())
	sequential := Compare(left, right)
	require.NotEmpty(t, sequential)

	for _, n := range []int{2, 4, 16} {
		assertDiffs(t, sequential, Compare(left, right, WithConcurrency(n)))
	}

	arrLeft, arrRight := parse(t, `[1,[2,3],{"a":1}]`), parse(t, `[0,[2],{"a":2},4]`)
	assertDiffs(t, Compare(arrLeft, arrRight), Compare(arrLeft, arrRight, WithConcurrency(3)))
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "key", KeyPath("", "key"))
	assert.Equal(t, "a.key", KeyPath("a", "key"))
	assert.Equal(t, "[3]", IndexPath("", 3))
	assert.Equal(t, "a.b[0]", IndexPath("a.b", 0))
}

func BenchmarkCompare(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < 1000; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"id":%d,"name":"item %d","tags":["a","b"],"nested":{"x":%d}}`, i, i, i%10)
	}
	sb.WriteString("]")

	left, err := parser.ParseString(sb.String())
	require.NoError(b, err)
	right, err := parser.ParseString(strings.ReplaceAll(sb.String(), `"x":3`, `"x":4`))
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Compare(left, right)
	}
}
