package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePath(t *testing.T) {
	assert.NoError(t, ValidatePath([]any{"a", 0, "b"}))
	assert.ErrorIs(t, ValidatePath(nil), ErrInvalidPath)
	assert.ErrorIs(t, ValidatePath([]any{-1}), ErrInvalidPath)
	assert.ErrorIs(t, ValidatePath([]any{true}), ErrInvalidPath)
}

func TestPluck(t *testing.T) {
	type inner struct{ Values []int }
	type outer struct {
		Inner  *inner
		Labels map[string]string
		hidden int
	}

	v := outer{
		Inner:  &inner{Values: []int{4, 5}},
		Labels: map[string]string{"1": "one"},
	}

	tests := []struct {
		name string
		path []any
		want any
		ok   bool
	}{
		{"field through pointer", []any{"Inner", "Values", 1}, 5, true},
		{"numeric string index", []any{"Inner", "Values", "0"}, 4, true},
		{"int map key", []any{"Labels", 1}, "one", true},
		{"out of range", []any{"Inner", "Values", 2}, nil, false},
		{"padded index", []any{"Inner", "Values", "01"}, nil, false},
		{"unexported field", []any{"hidden"}, nil, false},
		{"missing field", []any{"Nope"}, nil, false},
		{"through scalar", []any{"Inner", "Values", 0, "x"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Pluck(v, tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("nil pointer", func(t *testing.T) {
		_, ok := Pluck(outer{}, []any{"Inner", "Values"})
		assert.False(t, ok)
	})
}
