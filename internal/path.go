package internal

import (
	"fmt"
	"reflect"
	"strconv"
)

// ValidatePath requires a non-empty path of strings and non-negative ints.
func ValidatePath(path []any) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}

	for i, seg := range path {
		switch s := seg.(type) {
		case string:
		case int:
			if s < 0 {
				return fmt.Errorf("%w: negative index %d at %d", ErrInvalidPath, s, i)
			}
		default:
			return fmt.Errorf("%w: segment %d has type %T", ErrInvalidPath, i, seg)
		}
	}

	return nil
}

// Pluck walks path through v using own lookups only: map keys, slice and
// array indices, and direct exported struct fields. It stops at the first
// missing segment or untraversable value.
func Pluck(v any, path []any) (any, bool) {
	cur := reflect.ValueOf(v)

	for _, seg := range path {
		cur = indirect(cur)
		if !cur.IsValid() {
			return nil, false
		}

		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}
		cur = next
	}

	if !cur.IsValid() || !cur.CanInterface() {
		return nil, false
	}

	return cur.Interface(), true
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func step(v reflect.Value, seg any) (reflect.Value, bool) {
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}

		key, ok := segmentKey(seg)
		if !ok {
			return reflect.Value{}, false
		}

		mv := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		return mv, mv.IsValid()

	case reflect.Slice, reflect.Array:
		i, ok := segmentIndex(seg)
		if !ok || i >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(i), true

	case reflect.Struct:
		name, ok := seg.(string)
		if !ok {
			return reflect.Value{}, false
		}

		field, ok := v.Type().FieldByName(name)
		if !ok || !field.IsExported() || len(field.Index) != 1 {
			return reflect.Value{}, false
		}
		return v.Field(field.Index[0]), true
	}

	return reflect.Value{}, false
}

func segmentKey(seg any) (string, bool) {
	switch s := seg.(type) {
	case string:
		return s, true
	case int:
		return strconv.Itoa(s), true
	}
	return "", false
}

func segmentIndex(seg any) (int, bool) {
	switch s := seg.(type) {
	case int:
		return s, s >= 0
	case string:
		i, err := strconv.Atoi(s)
		if err != nil || i < 0 || strconv.Itoa(i) != s {
			return 0, false
		}
		return i, true
	}
	return 0, false
}
