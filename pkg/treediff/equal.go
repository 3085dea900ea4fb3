package treediff

import (
	"math"
	"reflect"
)

// equalLeaf compares two leaves as primitive values: numbers by numeric
// value regardless of their Go type, nil only with nil, everything else
// with == (or reflect.DeepEqual when the dynamic type is not comparable).
// Two NaNs are equal so that a tree always diffs empty against itself.
func equalLeaf(a, b any) bool {
	switch va := a.(type) {
	case string:
		vb, ok := b.(string)
		return ok && va == vb
	case bool:
		vb, ok := b.(bool)
		return ok && va == vb
	case int:
		if vb, ok := b.(int); ok {
			return va == vb
		}
	case float64:
		if vb, ok := b.(float64); ok {
			return floatEqual(va, vb)
		}
	case nil:
		return b == nil
	}
	if b == nil {
		return false
	}

	if na, ok := asNumber(a); ok {
		nb, ok := asNumber(b)
		return ok && na.equal(nb)
	}

	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

// number is a normalized numeric leaf.
type number struct {
	kind reflect.Kind // reflect.Int64, reflect.Uint64 or reflect.Float64
	i    int64
	u    uint64
	f    float64
}

func asNumber(v any) (number, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return number{kind: reflect.Int64, i: rv.Int()}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return number{kind: reflect.Uint64, u: rv.Uint()}, true
	case reflect.Float32, reflect.Float64:
		return number{kind: reflect.Float64, f: rv.Float()}, true
	}
	return number{}, false
}

func (n number) equal(o number) bool {
	switch {
	case n.kind == reflect.Int64 && o.kind == reflect.Int64:
		return n.i == o.i
	case n.kind == reflect.Uint64 && o.kind == reflect.Uint64:
		return n.u == o.u
	case n.kind == reflect.Int64 && o.kind == reflect.Uint64:
		return n.i >= 0 && uint64(n.i) == o.u
	case n.kind == reflect.Uint64 && o.kind == reflect.Int64:
		return o.i >= 0 && uint64(o.i) == n.u
	}
	return floatEqual(n.float(), o.float())
}

func floatEqual(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

func (n number) float() float64 {
	switch n.kind {
	case reflect.Int64:
		return float64(n.i)
	case reflect.Uint64:
		return float64(n.u)
	case reflect.Float64:
		return n.f
	}
	return math.NaN()
}
