package bytecache_test

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/gallery/bytecache"
)

func TestPutEvictsOldestToFitCapacity(t *testing.T) {
	c := bytecache.New(50)

	c.Put("A", []byte("a"), 20)
	c.Put("B", []byte("b"), 20)
	c.Put("C", []byte("c"), 20)

	_, ok := c.Get("A")
	assert.False(t, ok, "A should have been evicted")
	assert.Equal(t, []string{"B", "C"}, c.Keys())
	assert.Equal(t, int64(40), c.TotalCost())
}

func TestGetRefreshesRecency(t *testing.T) {
	c := bytecache.New(50)

	c.Put("A", []byte("a"), 20)
	c.Put("B", []byte("b"), 20)
	_, ok := c.Get("A")
	require.True(t, ok)
	c.Put("C", []byte("c"), 20)

	_, ok = c.Get("B")
	assert.False(t, ok, "B was least recently used")
	_, ok = c.Get("A")
	assert.True(t, ok)
}

func TestOversizedEntryIsKeptThenEvictedFirst(t *testing.T) {
	c := bytecache.New(50)

	c.Put("small", []byte("s"), 10)
	c.Put("huge", []byte("h"), 80)

	assert.Equal(t, []string{"huge"}, c.Keys())
	assert.Equal(t, int64(80), c.TotalCost())

	c.Put("next", []byte("n"), 10)

	assert.Equal(t, []string{"next"}, c.Keys())
	assert.Equal(t, int64(10), c.TotalCost())
}

func TestPutReplacesExistingKey(t *testing.T) {
	c := bytecache.New(50)

	c.Put("A", []byte("v1"), 30)
	c.Put("A", []byte("v2"), 10)

	blob, ok := c.Get("A")
	require.True(t, ok)
	assert.Equal(t, []byte("v2"), blob)
	assert.Equal(t, int64(10), c.TotalCost())
	assert.Equal(t, 1, c.Len())
}

func TestCostUnit(t *testing.T) {
	tests := []struct {
		name  string
		opts  []bytecache.Option
		bytes int
		want  int64
	}{
		{name: "below one unit is free", bytes: 999_999, want: 0},
		{name: "exactly one unit", bytes: 1_000_000, want: 1},
		{name: "rounds down", bytes: 2_999_999, want: 2},
		{name: "custom unit", opts: []bytecache.Option{bytecache.WithUnit(1024)}, bytes: 4096, want: 4},
		{name: "non-positive unit ignored", opts: []bytecache.Option{bytecache.WithUnit(0)}, bytes: 3_000_000, want: 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := bytecache.New(10, tc.opts...)
			assert.Equal(t, tc.want, c.Cost(tc.bytes))
		})
	}
}

func TestTotalCostBoundHoldsForRandomPuts(t *testing.T) {
	const capacity = 100
	c := bytecache.New(capacity)
	rng := rand.New(rand.NewPCG(1, 2))

	for i := range 2000 {
		cost := rng.Int64N(130)
		key := fmt.Sprintf("k%d", rng.IntN(40))
		if rng.IntN(3) == 0 {
			c.Get(key)
		}
		c.Put(key, nil, cost)

		assert.LessOrEqual(t, c.TotalCost(), int64(capacity)+cost, "iteration %d", i)
	}
}

func TestEvictionFollowsAccessOrder(t *testing.T) {
	c := bytecache.New(30)
	for _, k := range []string{"a", "b", "c"} {
		c.Put(k, nil, 10)
	}
	c.Get("a")
	c.Get("b")

	c.Put("d", nil, 10)

	assert.Equal(t, []string{"a", "b", "d"}, c.Keys(), "c was least recently accessed")
}

func TestStatsAndCollector(t *testing.T) {
	c := bytecache.New(10)
	c.Put("a", nil, 6)
	c.Put("b", nil, 6)
	c.Get("b")
	c.Get("a")

	s := c.Stats()
	assert.Equal(t, 1, s.Entries)
	assert.Equal(t, uint64(1), s.Hits)
	assert.Equal(t, uint64(1), s.Misses)
	assert.Equal(t, uint64(1), s.Evictions)
	assert.Equal(t, int64(10), s.Capacity)

	assert.Equal(t, 6, testutil.CollectAndCount(bytecache.NewCollector("gallery", c)))
}

func TestConcurrentAccess(t *testing.T) {
	c := bytecache.New(50)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 500 {
				key := fmt.Sprintf("%d-%d", w, i%20)
				c.Put(key, []byte(key), int64(i%7))
				c.Get(key)
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, c.TotalCost(), int64(50+6))
}

func TestLoadSharesConcurrentReads(t *testing.T) {
	c := bytecache.New(50)

	var (
		mu    sync.Mutex
		reads int
		gate  = make(chan struct{})
	)
	read := func() ([]byte, error) {
		mu.Lock()
		reads++
		mu.Unlock()
		<-gate
		return []byte("payload"), nil
	}

	var wg sync.WaitGroup
	results := make([][]byte, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			blob, _, err := c.Load("path", read)
			assert.NoError(t, err)
			results[i] = blob
		}()
	}
	// let the goroutines pile up on the in-flight read before releasing it
	for {
		mu.Lock()
		n := reads
		mu.Unlock()
		if n > 0 {
			break
		}
	}
	close(gate)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, []byte("payload"), r)
	}
	blob, hit, err := c.Load("path", read)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []byte("payload"), blob)
}

func TestLoadErrorIsNotCached(t *testing.T) {
	c := bytecache.New(50)

	_, _, err := c.Load("k", func() ([]byte, error) { return nil, assert.AnError })
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, c.Len())
}

func TestRemove(t *testing.T) {
	c := bytecache.New(50)
	c.Put("A", []byte("a"), 20)
	c.Put("B", []byte("b"), 10)

	c.Remove("A")
	c.Remove("missing")

	_, ok := c.Get("A")
	assert.False(t, ok)
	assert.Equal(t, int64(10), c.TotalCost())
	assert.Equal(t, []string{"B"}, c.Keys())
}

func TestFillStoresWithoutCountingLookups(t *testing.T) {
	c := bytecache.New(50)

	blob, err := c.Fill("k", func() ([]byte, error) { return []byte("v"), nil })
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), blob)
	assert.Equal(t, uint64(0), c.Stats().Misses)

	_, hit, err := c.Load("k", func() ([]byte, error) { return nil, assert.AnError })
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, uint64(1), c.Stats().Hits)
}
