package cache

import (
	"sync"
	"testing"

	"github.com/asquebay/simple-storefront/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestProductCacheSetGetDelete(t *testing.T) {
	c := NewProductCache()

	_, ok := c.Get("p1")
	assert.False(t, ok)

	c.Set(model.Product{ID: "p1", Title: "Lamp"})
	got, ok := c.Get("p1")
	assert.True(t, ok)
	assert.Equal(t, "Lamp", got.Title)

	c.Delete("p1")
	c.Delete("p1")
	_, ok = c.Get("p1")
	assert.False(t, ok)
}

func TestProductCacheLoadAllConcurrent(t *testing.T) {
	c := NewProductCache()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.LoadAll([]model.Product{{ID: "a"}, {ID: "b"}})
			c.Get("a")
		}()
	}
	wg.Wait()

	_, okA := c.Get("a")
	_, okB := c.Get("b")
	assert.True(t, okA)
	assert.True(t, okB)
}
