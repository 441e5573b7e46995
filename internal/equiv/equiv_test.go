package equiv

import (
	"container/list"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type boxed struct{ v any }

func (b boxed) Item() any { return b.v }

type point struct {
	X, Y float64
	tag  string
}

type panicky struct{}

func (panicky) Item() any { panic("cannot extract") }

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"float drift", 0.1 + 0.2, 0.3, true},
		{"int and float", 1, 1.0, true},
		{"int and float far apart", 1, 1.1, false},
		{"shorter list", []int{1, 2, 3}, []int{1, 2}, false},
		{"extra key", map[string]int{"a": 1}, map[string]int{"a": 1, "b": 2}, false},
		{"same map", map[string]int{"a": 1, "b": 2}, map[string]int{"b": 2, "a": 1}, true},
		{"different key", map[string]int{"a": 1}, map[string]int{"b": 1}, false},
		{"nested drift", map[string]any{"xs": []any{0.1 + 0.2, "s"}}, map[string]any{"xs": []any{0.3, "s"}}, true},
		{"sequence element types differ", []int{1, 2}, []float64{1, 2}, true},
		{"array and slice", [2]int{1, 2}, []int{1, 2}, true},
		{"nil and nil", nil, nil, true},
		{"nil and value", nil, 0, false},
		{"nil pointer and nil", (*int)(nil), nil, true},
		{"pointer deref", ptr(3), 3, true},
		{"scalar wrapper", boxed{2.0000001}, 2, true},
		{"nested scalar wrapper", boxed{boxed{int64(7)}}, 7.0, true},
		{"bool vs int", true, 1, false},
		{"string vs int", "1", 1, false},
		{"strings", "abc", "abc", true},
		{"strings differ", "abc", "abd", false},
		{"int vs uint", int64(5), uint8(5), true},
		{"negative int vs uint", -1, uint(math.MaxUint64), false},
		{"large ints exact", int64(1 << 60), int64(1<<60 + 1), false},
		{"precision boundary", 1.0, 1.000001, true},
		{"outside precision", 1.0, 1.0001, false},
		{"nan", math.NaN(), math.NaN(), false},
		{"inf", math.Inf(1), math.Inf(1), true},
		{"struct fields close", point{1, 2, "a"}, point{1.0000001, 2, "a"}, true},
		{"struct unexported differ", point{1, 2, "a"}, point{1, 2, "b"}, false},
		{"map any keys", map[any]any{"k": 1}, map[string]float64{"k": 1}, true},
		{"map int vs string keys", map[int]int{65: 1}, map[string]int{"A": 1}, false},
		{"empty slices", []string{}, []string(nil), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b, DefaultPrecision), "Equal(a, b)")
			assert.Equal(t, tt.want, Equal(tt.b, tt.a, DefaultPrecision), "Equal(b, a)")
		})
	}
}

func TestEqualPrecision(t *testing.T) {
	assert.False(t, Equal(1.0, 1.001, 5))
	assert.True(t, Equal(1.0, 1.001, 2))
}

func TestCompareRecoversPanic(t *testing.T) {
	ok, err := Compare(panicky{}, 1, DefaultPrecision)
	require.ErrorIs(t, err, ErrIncomparable)
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		assert.False(t, Equal([]any{panicky{}}, []any{1}, DefaultPrecision))
	})
}

type node struct {
	Value int
	Next  *node
}

func ring(values ...int) *node {
	head := &node{Value: values[0]}
	cur := head
	for _, v := range values[1:] {
		cur.Next = &node{Value: v}
		cur = cur.Next
	}
	cur.Next = head
	return head
}

func TestCompareCyclicValues(t *testing.T) {
	a, b := list.New(), list.New()
	a.PushBack(1)
	b.PushBack(1)
	ok, err := Compare(a, b, DefaultPrecision)
	require.NoError(t, err)
	assert.True(t, ok)

	b.Front().Value = 2
	assert.False(t, Equal(a, b, DefaultPrecision))

	assert.True(t, Equal(ring(1, 2, 3), ring(1, 2, 3), DefaultPrecision))
	assert.False(t, Equal(ring(1, 2, 3), ring(1, 2, 4), DefaultPrecision))

	self := []any{nil}
	self[0] = self
	other := []any{nil}
	other[0] = other
	assert.True(t, Equal(self, other, DefaultPrecision))

	loop := map[string]any{}
	loop["me"] = loop
	assert.False(t, Equal(loop, map[string]any{"me": 1}, DefaultPrecision))
}

func TestCompareDepthLimit(t *testing.T) {
	deep := func() any {
		var v any = 1
		for range maxDepth + 10 {
			v = []any{v}
		}
		return v
	}
	ok, err := Compare(deep(), deep(), DefaultPrecision)
	require.ErrorIs(t, err, ErrIncomparable)
	assert.False(t, ok)
}

func TestIsClose(t *testing.T) {
	assert.True(t, IsClose(1e12, 1e12+1, 1e-9, 0))
	assert.False(t, IsClose(1, 2, 1e-9, 1e-5))
	assert.False(t, IsClose(math.Inf(1), math.Inf(-1), 1e-9, 1))
}

func ptr[T any](v T) *T { return &v }
