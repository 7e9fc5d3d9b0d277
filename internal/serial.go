package internal

import (
	"encoding"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// SerializationError is raised (as a panic) when a unit checking
// serializability receives a value that cannot round-trip through JSON.
type SerializationError struct {
	Path string
	Type reflect.Type
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("value at %s of type %s is not serializable", e.Path, e.Type)
}

var (
	jsonMarshalerType = reflect.TypeFor[json.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

func CheckSerializable(v any) error {
	return checkSerializable(reflect.ValueOf(v), "$")
}

func checkSerializable(v reflect.Value, path string) error {
	if !v.IsValid() {
		return nil
	}

	t := v.Type()
	if t.Implements(jsonMarshalerType) || t.Implements(textMarshalerType) {
		return nil
	}

	switch v.Kind() {
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return &SerializationError{Path: path, Type: t}

	case reflect.Float32, reflect.Float64:
		if f := v.Float(); math.IsNaN(f) || math.IsInf(f, 0) {
			return &SerializationError{Path: path, Type: t}
		}

	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return checkSerializable(v.Elem(), path)

	case reflect.Map:
		switch t.Key().Kind() {
		case reflect.String,
			reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		default:
			if !t.Key().Implements(textMarshalerType) {
				return &SerializationError{Path: path, Type: t}
			}
		}

		iter := v.MapRange()
		for iter.Next() {
			if err := checkSerializable(iter.Value(), fmt.Sprintf("%s.%v", path, iter.Key())); err != nil {
				return err
			}
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if err := checkSerializable(v.Index(i), path+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}

	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() || field.Tag.Get("json") == "-" {
				continue
			}
			if err := checkSerializable(v.Field(i), path+"."+field.Name); err != nil {
				return err
			}
		}
	}

	return nil
}
