// Package equiv decides whether two result values are close enough to count as
// the same output, tolerating float drift and differing numeric types.
package equiv

import (
	"errors"
	"fmt"
	"math"
	"reflect"
)

// DefaultPrecision is the number of decimal places used for the absolute tolerance.
const DefaultPrecision = 5

// RelativeTolerance is applied to every float comparison.
const RelativeTolerance = 1e-9

// maxUnwrap bounds repeated scalar extraction on self-wrapping values.
const maxUnwrap = 8

// maxDepth bounds nesting; deeper values are reported as incomparable.
const maxDepth = 10_000

// ErrIncomparable is reported by Compare when comparing the values panicked
// or nested too deeply.
var ErrIncomparable = errors.New("values are not comparable")

// Scalar is implemented by wrappers around a single value, like a
// zero-dimensional array or a boxed number. The wrapped value is compared instead.
type Scalar interface {
	Item() any
}

type shape int

const (
	shapeNil shape = iota
	shapeInt
	shapeUint
	shapeFloat
	shapeSequence
	shapeMapping
	shapeOther
)

func (s shape) numeric() bool {
	return s == shapeInt || s == shapeUint || s == shapeFloat
}

// Equal reports whether a and b are equivalent at the given precision.
// It never panics.
func Equal(a, b any, precision int) bool {
	ok, _ := Compare(a, b, precision)
	return ok
}

// Compare is Equal that also reports a comparison that blew up.
func Compare(a, b any, precision int) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("%w: %v", ErrIncomparable, r)
		}
	}()

	c := &comparer{absTol: math.Pow10(-precision), visited: map[visit]bool{}}
	return c.equal(reflect.ValueOf(a), reflect.ValueOf(b)), nil
}

// IsClose mirrors the usual relative/absolute tolerance test.
func IsClose(a, b, relTol, absTol float64) bool {
	if a == b {
		return true
	}
	if math.IsInf(a, 0) || math.IsInf(b, 0) || math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	diff := math.Abs(a - b)
	return diff <= math.Max(relTol*math.Max(math.Abs(a), math.Abs(b)), absTol)
}

type comparer struct {
	absTol  float64
	visited map[visit]bool
	depth   int
}

// visit is a pair of values already under comparison. A cycle can only pass
// through an addressable value, a map or a slice.
type visit struct {
	a, b uintptr
	typ  reflect.Type
}

// seen records the pair and reports whether it was recorded before. A
// revisited pair counts as equal, as in reflect.DeepEqual.
func (c *comparer) seen(a, b reflect.Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	var v visit
	switch a.Kind() {
	case reflect.Map, reflect.Slice:
		if a.Pointer() == 0 || b.Pointer() == 0 {
			return false
		}
		v = visit{a.Pointer(), b.Pointer(), a.Type()}
	case reflect.Struct, reflect.Array:
		if !a.CanAddr() || !b.CanAddr() {
			return false
		}
		v = visit{a.UnsafeAddr(), b.UnsafeAddr(), a.Type()}
	default:
		return false
	}
	if c.visited[v] {
		return true
	}
	c.visited[v] = true
	return false
}

func (c *comparer) equal(a, b reflect.Value) bool {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > maxDepth {
		panic(fmt.Sprintf("values nest deeper than %d levels", maxDepth))
	}

	a, b = unwrap(a), unwrap(b)
	sa, sb := shapeOf(a), shapeOf(b)
	if sa != shapeNil && sb != shapeNil && c.seen(a, b) {
		return true
	}

	if sa == shapeNil || sb == shapeNil {
		return sa == sb
	}

	if sa != sb {
		if sa.numeric() && sb.numeric() {
			return c.closeNumbers(a, sa, b, sb)
		}
		return false
	}

	switch sa {
	case shapeMapping:
		return c.equalMaps(a, b)
	case shapeSequence:
		return c.equalSequences(a, b)
	case shapeInt, shapeUint:
		return equalIntegers(a, sa, b, sb)
	case shapeFloat:
		return IsClose(a.Float(), b.Float(), RelativeTolerance, c.absTol)
	}

	if a.Type() != b.Type() {
		return false
	}
	switch a.Kind() {
	case reflect.String:
		return a.String() == b.String()
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Struct:
		for i := 0; i < a.NumField(); i++ {
			if !c.equal(a.Field(i), b.Field(i)) {
				return false
			}
		}
		return true
	}
	if a.CanInterface() && b.CanInterface() {
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
	return false
}

func (c *comparer) closeNumbers(a reflect.Value, sa shape, b reflect.Value, sb shape) bool {
	if sa != shapeFloat && sb != shapeFloat {
		return equalIntegers(a, sa, b, sb)
	}
	return IsClose(toFloat(a, sa), toFloat(b, sb), RelativeTolerance, c.absTol)
}

func (c *comparer) equalMaps(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	keyType := b.Type().Key()
	iter := a.MapRange()
	for iter.Next() {
		key, ok := lookupKey(iter.Key(), keyType)
		if !ok {
			return false
		}
		other := b.MapIndex(key)
		if !other.IsValid() {
			return false
		}
		if !c.equal(iter.Value(), other) {
			return false
		}
	}
	return true
}

func (c *comparer) equalSequences(a, b reflect.Value) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := 0; i < a.Len(); i++ {
		if !c.equal(a.Index(i), b.Index(i)) {
			return false
		}
	}
	return true
}

// lookupKey adapts a key of one map to index another. Conversions are limited
// to the same kind so an int never turns into a one-rune string.
func lookupKey(key reflect.Value, keyType reflect.Type) (reflect.Value, bool) {
	if key.Type().AssignableTo(keyType) {
		return key, true
	}
	if key.Kind() == reflect.Interface {
		if key.IsNil() {
			return reflect.Value{}, false
		}
		key = key.Elem()
		if key.Type().AssignableTo(keyType) {
			return key, true
		}
	}
	if key.Kind() == keyType.Kind() && key.Type().ConvertibleTo(keyType) {
		return key.Convert(keyType), true
	}
	return reflect.Value{}, false
}

// unwrap strips interfaces, pointers and Scalar wrappers.
func unwrap(v reflect.Value) reflect.Value {
	for i := 0; i < maxUnwrap; i++ {
		if !v.IsValid() {
			return v
		}
		switch v.Kind() {
		case reflect.Interface, reflect.Pointer:
			if v.IsNil() {
				return reflect.Value{}
			}
			if v.CanInterface() {
				if s, ok := v.Interface().(Scalar); ok {
					v = reflect.ValueOf(s.Item())
					continue
				}
			}
			v = v.Elem()
			continue
		}
		if v.CanInterface() {
			if s, ok := v.Interface().(Scalar); ok {
				v = reflect.ValueOf(s.Item())
				continue
			}
		}
		return v
	}
	return v
}

func shapeOf(v reflect.Value) shape {
	if !v.IsValid() {
		return shapeNil
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return shapeInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return shapeUint
	case reflect.Float32, reflect.Float64:
		return shapeFloat
	case reflect.Slice, reflect.Array:
		return shapeSequence
	case reflect.Map:
		return shapeMapping
	}
	return shapeOther
}

func equalIntegers(a reflect.Value, sa shape, b reflect.Value, sb shape) bool {
	switch {
	case sa == shapeInt && sb == shapeInt:
		return a.Int() == b.Int()
	case sa == shapeUint && sb == shapeUint:
		return a.Uint() == b.Uint()
	case sa == shapeInt:
		return a.Int() >= 0 && uint64(a.Int()) == b.Uint()
	default:
		return b.Int() >= 0 && uint64(b.Int()) == a.Uint()
	}
}

func toFloat(v reflect.Value, s shape) float64 {
	switch s {
	case shapeInt:
		return float64(v.Int())
	case shapeUint:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}
