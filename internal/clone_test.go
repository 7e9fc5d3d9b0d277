package internal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClone(t *testing.T) {
	t.Run("deep copies containers", func(t *testing.T) {
		in := map[string]any{"a": []any{1, map[string]any{"b": 2}}}
		out := Clone(in).(map[string]any)

		assert.Equal(t, in, out)
		out["a"].([]any)[1].(map[string]any)["b"] = 3
		assert.Equal(t, 2, in["a"].([]any)[1].(map[string]any)["b"])
	})

	t.Run("pointers and structs", func(t *testing.T) {
		type node struct {
			Name string
			Next *node
		}
		in := &node{Name: "a", Next: &node{Name: "b"}}
		out := Clone(in).(*node)

		assert.Equal(t, in, out)
		assert.NotSame(t, in.Next, out.Next)
	})

	t.Run("opaque values keep identity", func(t *testing.T) {
		errNotFound := errors.New("not found")
		at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		in := map[string]any{"err": errNotFound, "at": at, "list": []error{errNotFound}}

		out := Clone(in).(map[string]any)

		assert.ErrorIs(t, out["err"].(error), errNotFound)
		assert.ErrorIs(t, out["list"].([]error)[0], errNotFound)
		assert.True(t, at.Equal(out["at"].(time.Time)))
	})

	t.Run("nil and scalars", func(t *testing.T) {
		assert.Nil(t, Clone(nil))
		assert.Equal(t, 3, Clone(3))
		assert.Nil(t, Clone([]int(nil)))
	})
}

func TestAdopt(t *testing.T) {
	t.Run("keeps unchanged branches", func(t *testing.T) {
		prev := map[string]any{"a": map[string]any{"x": 1}, "b": 1}
		next := map[string]any{"a": map[string]any{"x": 1}, "b": 2}

		out := Adopt(next, prev).(map[string]any)

		assert.True(t, Equal(out["a"], prev["a"]))
		assert.False(t, Equal(out["a"], next["a"]))
		assert.False(t, Equal(out, prev))
		assert.Equal(t, 2, out["b"])
	})

	t.Run("returns prev when nothing changed", func(t *testing.T) {
		prev := []any{1, "a"}
		out := Adopt([]any{1, "a"}, prev)

		assert.True(t, Equal(out, prev))
	})

	t.Run("copies changed branches", func(t *testing.T) {
		prev := map[string]any{"a": []any{1}}
		next := map[string]any{"a": []any{2}}

		out := Adopt(next, prev).(map[string]any)
		next["a"].([]any)[0] = 3

		assert.Equal(t, []any{2}, out["a"])
	})

	t.Run("opaque values are reused", func(t *testing.T) {
		errNotFound := errors.New("not found")
		prev := map[string]any{"err": errNotFound}

		out := Adopt(map[string]any{"err": errNotFound}, prev)
		assert.True(t, Equal(out, prev))

		out = Adopt(map[string]any{"err": errors.New("not found")}, prev)
		assert.False(t, Equal(out, prev))
	})

	t.Run("type changes", func(t *testing.T) {
		out := Adopt(map[string]any{"a": "1"}, map[string]any{"a": 1}).(map[string]any)
		assert.Equal(t, "1", out["a"])
	})
}

func TestEqual(t *testing.T) {
	m := map[string]any{}
	s := []int{1}

	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(1, 1))
	assert.False(t, Equal(1, 1.0))
	assert.True(t, Equal(m, m))
	assert.False(t, Equal(m, map[string]any{}))
	assert.True(t, Equal(s, s))
	assert.False(t, Equal(s, []int{1}))
	assert.False(t, Equal(func() {}, func() {}))
	assert.False(t, Equal(nil, 0))
}
