package fanlog

import (
	"fmt"
	"reflect"
)

// CyclePlaceholder replaces a map, slice or pointer that refers back to a
// value enclosing it.
const CyclePlaceholder = "<cycle>"

const maxAcyclicDepth = 64

// Acyclic returns v unchanged when it holds no reference cycle. Otherwise it
// returns a copy in which each back reference is CyclePlaceholder; copied
// maps become map[string]any and copied slices []any. Struct fields are not
// inspected. Nesting deeper than 64 levels is cut off the same way.
func Acyclic(v any) any {
	out, _ := acyclic(reflect.ValueOf(v), map[uintptr]struct{}{}, 0)
	return out
}

func acyclic(v reflect.Value, path map[uintptr]struct{}, depth int) (any, bool) {
	if !v.IsValid() {
		return nil, false
	}
	if depth > maxAcyclicDepth {
		return CyclePlaceholder, true
	}

	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return valueOf(v), false
		}
		inner, changed := acyclic(v.Elem(), path, depth+1)
		if !changed {
			return valueOf(v), false
		}
		return inner, true

	case reflect.Pointer:
		if v.IsNil() {
			return valueOf(v), false
		}
		if !enter(path, v.Pointer()) {
			return CyclePlaceholder, true
		}
		defer delete(path, v.Pointer())
		inner, changed := acyclic(v.Elem(), path, depth+1)
		if !changed {
			return valueOf(v), false
		}
		return inner, true

	case reflect.Map:
		if v.IsNil() || v.Len() == 0 {
			return valueOf(v), false
		}
		if !enter(path, v.Pointer()) {
			return CyclePlaceholder, true
		}
		defer delete(path, v.Pointer())
		out := make(map[string]any, v.Len())
		changed := false
		iter := v.MapRange()
		for iter.Next() {
			elem, c := acyclic(iter.Value(), path, depth+1)
			changed = changed || c
			out[fmt.Sprint(valueOf(iter.Key()))] = elem
		}
		if !changed {
			return valueOf(v), false
		}
		return out, true

	case reflect.Slice:
		if v.IsNil() || v.Len() == 0 || v.Type().Elem().Kind() == reflect.Uint8 {
			return valueOf(v), false
		}
		if !enter(path, v.Pointer()) {
			return CyclePlaceholder, true
		}
		defer delete(path, v.Pointer())
		return sequence(v, path, depth)

	case reflect.Array:
		if v.Len() == 0 {
			return valueOf(v), false
		}
		return sequence(v, path, depth)
	}
	return valueOf(v), false
}

func sequence(v reflect.Value, path map[uintptr]struct{}, depth int) (any, bool) {
	out := make([]any, v.Len())
	changed := false
	for i := range out {
		elem, c := acyclic(v.Index(i), path, depth+1)
		changed = changed || c
		out[i] = elem
	}
	if !changed {
		return valueOf(v), false
	}
	return out, true
}

func enter(path map[uintptr]struct{}, ptr uintptr) bool {
	if _, seen := path[ptr]; seen {
		return false
	}
	path[ptr] = struct{}{}
	return true
}

func valueOf(v reflect.Value) any {
	if v.CanInterface() {
		return v.Interface()
	}
	return fmt.Sprint(v)
}
