package internal

import (
	"math"
	"reflect"
)

// Kind selects the value validator of a unit. It is fixed at construction.
type Kind uint8

const (
	KindGeneric Kind = iota
	KindBool
	KindNumber
	KindString
	KindDict
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDict:
		return "dict"
	case KindList:
		return "list"
	default:
		return "generic"
	}
}

// Validate reports whether v is an acceptable value for the kind.
func (k Kind) Validate(v any) bool {
	switch k {
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindNumber:
		f, ok := v.(float64)
		return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
	case KindString:
		_, ok := v.(string)
		return ok
	case KindDict:
		rv := reflect.ValueOf(v)
		return rv.Kind() == reflect.Map && !rv.IsNil() && rv.Type().Key().Kind() == reflect.String
	case KindList:
		rv := reflect.ValueOf(v)
		return rv.Kind() == reflect.Slice && !rv.IsNil()
	default:
		return true
	}
}

// Default is the empty value a unit of this kind starts from.
func (k Kind) Default() any {
	switch k {
	case KindBool:
		return false
	case KindNumber:
		return float64(0)
	case KindString:
		return ""
	case KindDict:
		return map[string]any{}
	case KindList:
		return []any{}
	default:
		return nil
	}
}

// IsEmpty reports whether v is the kind's empty value.
func (k Kind) IsEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice:
		return rv.Len() == 0
	}

	return rv.IsZero()
}
