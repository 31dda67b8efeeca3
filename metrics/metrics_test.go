package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	c := NewCounter()
	c.Inc(3)
	c.Dec(1)
	assert.Equal(t, int64(2), c.Snapshot().Count())
	c.Clear()
	assert.Equal(t, int64(0), c.Snapshot().Count())
}

func TestGaugeUpdateIfGt(t *testing.T) {
	g := NewGauge()
	g.Update(10)
	g.UpdateIfGt(5)
	assert.Equal(t, int64(10), g.Snapshot().Value())
	g.UpdateIfGt(12)
	assert.Equal(t, int64(12), g.Snapshot().Value())
}

func TestGetOrRegisterReturnsExisting(t *testing.T) {
	r := NewRegistry()
	a := GetOrRegisterCounter("stackvis/test", r)
	b := GetOrRegisterCounter("stackvis/test", r)
	require.Same(t, a, b)

	err := r.Register("stackvis/test", NewCounter())
	assert.Equal(t, DuplicateMetric("stackvis/test"), err)

	r.Unregister("stackvis/test")
	assert.Nil(t, r.Get("stackvis/test"))
}

func TestRegistryEachSorted(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		GetOrRegisterGauge(name, r)
	}
	var names []string
	r.Each(func(name string, _ interface{}) {
		names = append(names, name)
	})
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestConcurrentCounter(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				GetOrRegisterCounter("shared", r).Inc(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800), GetOrRegisterCounter("shared", r).Snapshot().Count())
}

func TestLabel(t *testing.T) {
	l := GetOrRegisterLabel("geometry", NewRegistry())
	l.Mark(map[string]interface{}{"wordsize": 4})
	l.Mark(map[string]interface{}{"endian": "little"})
	snap := l.Snapshot().Value()
	assert.Equal(t, 4, snap["wordsize"])
	assert.Equal(t, "little", snap["endian"])
}
