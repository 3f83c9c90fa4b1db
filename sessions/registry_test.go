package sessions

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryLifecycle(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, 0, r.Len())

	s := &ChatSession{ID: "a"}
	r.Add(s)
	got, ok := r.Get("a")
	assert.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, 1, r.Len())

	r.Remove("a")
	_, ok = r.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			r.Add(&ChatSession{ID: id})
			r.Get(id)
			r.Remove(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 0, r.Len())
}
