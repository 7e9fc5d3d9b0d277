package internal

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntime(t *testing.T) {
	t.Run("re-entrant", func(t *testing.T) {
		rt := NewRuntime()

		ran := false
		rt.Run(func() {
			rt.Run(func() { ran = true })
		})

		assert.True(t, ran)
	})

	t.Run("serializes goroutines", func(t *testing.T) {
		rt := NewRuntime()

		var wg sync.WaitGroup
		count := 0
		for range 50 {
			wg.Go(func() {
				rt.Run(func() {
					v := count
					rt.Run(func() { count = v + 1 })
				})
			})
		}
		wg.Wait()

		assert.Equal(t, 50, count)
	})

	t.Run("settled callbacks run on the outermost unlock", func(t *testing.T) {
		rt := NewRuntime()

		var got []string
		rt.Run(func() {
			rt.Run(func() {
				rt.OnSettled(func() {
					got = append(got, "first")
					rt.OnSettled(func() { got = append(got, "nested") })
				})
			})
			got = append(got, "body")
		})

		assert.Equal(t, []string{"body", "first", "nested"}, got)
	})

	t.Run("shared runtime", func(t *testing.T) {
		assert.Same(t, GetRuntime(), GetRuntime())
	})
}
