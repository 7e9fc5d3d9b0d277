package internal

import "reflect"

// Clone returns a deep copy of v. Values must be acyclic. Structs with
// unexported fields, and pointers to them, are opaque and kept as is.
func Clone(v any) any {
	if v == nil {
		return nil
	}

	out, _ := adopt(reflect.ValueOf(v), reflect.Value{})
	return out.Interface()
}

// Adopt deep-copies next, except that every branch whose contents match the
// corresponding branch of prev is replaced by prev's branch. Unchanged
// subtrees therefore keep their identity across copies.
func Adopt(next, prev any) any {
	if next == nil {
		return nil
	}

	var p reflect.Value
	if prev != nil {
		p = reflect.ValueOf(prev)
	}

	out, _ := adopt(reflect.ValueOf(next), p)
	return out.Interface()
}

// adopt reports true when the returned value is prev itself.
func adopt(next, prev reflect.Value) (reflect.Value, bool) {
	if prev.IsValid() && prev.Type() != next.Type() {
		prev = reflect.Value{}
	}

	if opaque(next.Type()) {
		return leaf(next, prev)
	}

	switch next.Kind() {
	case reflect.Interface:
		if next.IsNil() {
			return next, prev.IsValid() && prev.IsNil()
		}

		var old reflect.Value
		if prev.IsValid() && !prev.IsNil() {
			old = prev.Elem()
		}

		child, reused := adopt(next.Elem(), old)
		if reused {
			return prev, true
		}

		out := reflect.New(next.Type()).Elem()
		out.Set(child)
		return out, false

	case reflect.Pointer:
		if next.IsNil() {
			return next, prev.IsValid() && prev.IsNil()
		}

		var old reflect.Value
		if prev.IsValid() && !prev.IsNil() {
			old = prev.Elem()
		}

		child, reused := adopt(next.Elem(), old)
		if reused {
			return prev, true
		}

		out := reflect.New(next.Type().Elem())
		out.Elem().Set(child)
		return out, false

	case reflect.Map:
		if next.IsNil() {
			return next, prev.IsValid() && prev.IsNil()
		}

		hasPrev := prev.IsValid() && !prev.IsNil()
		same := hasPrev && prev.Len() == next.Len()

		out := reflect.MakeMapWithSize(next.Type(), next.Len())
		iter := next.MapRange()
		for iter.Next() {
			var old reflect.Value
			if hasPrev {
				old = prev.MapIndex(iter.Key())
			}

			child, reused := adopt(iter.Value(), old)
			same = same && reused
			out.SetMapIndex(iter.Key(), child)
		}

		if same {
			return prev, true
		}
		return out, false

	case reflect.Slice:
		if next.IsNil() {
			return next, prev.IsValid() && prev.IsNil()
		}

		hasPrev := prev.IsValid() && !prev.IsNil()
		same := hasPrev && prev.Len() == next.Len()

		out := reflect.MakeSlice(next.Type(), next.Len(), next.Len())
		for i := 0; i < next.Len(); i++ {
			var old reflect.Value
			if hasPrev && i < prev.Len() {
				old = prev.Index(i)
			}

			child, reused := adopt(next.Index(i), old)
			same = same && reused
			out.Index(i).Set(child)
		}

		if same {
			return prev, true
		}
		return out, false

	case reflect.Array:
		same := prev.IsValid()

		out := reflect.New(next.Type()).Elem()
		for i := 0; i < next.Len(); i++ {
			var old reflect.Value
			if prev.IsValid() {
				old = prev.Index(i)
			}

			child, reused := adopt(next.Index(i), old)
			same = same && reused
			out.Index(i).Set(child)
		}

		if same {
			return prev, true
		}
		return out, false

	case reflect.Struct:
		same := prev.IsValid()

		out := reflect.New(next.Type()).Elem()
		for i := 0; i < next.NumField(); i++ {
			var old reflect.Value
			if prev.IsValid() {
				old = prev.Field(i)
			}

			child, reused := adopt(next.Field(i), old)
			same = same && reused
			out.Field(i).Set(child)
		}

		if same {
			return prev, true
		}
		return out, false
	}

	return leaf(next, prev)
}

// opaque reports whether t is a struct with unexported fields (time.Time,
// sync types, errors.New values) or a pointer to one.
func opaque(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return false
	}

	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			return true
		}
	}
	return false
}

func leaf(next, prev reflect.Value) (reflect.Value, bool) {
	if prev.IsValid() && next.CanInterface() && prev.CanInterface() && Equal(next.Interface(), prev.Interface()) {
		return prev, true
	}

	return next, false
}

// Equal is reference equality for maps, slices, pointers and channels and
// strict value equality for everything comparable. Functions are never equal
// unless both are nil.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Func:
		return va.IsNil() && vb.IsNil()
	case reflect.Slice:
		return va.Len() == vb.Len() && va.Pointer() == vb.Pointer()
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}

	if !va.Comparable() || !vb.Comparable() {
		return false
	}

	return a == b
}
