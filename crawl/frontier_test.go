package crawl_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/siteaudit/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontier_Push_rejects_duplicate_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	ok := f.Push("https://example.com/page1")
	assert.True(t, ok, "first push should succeed")

	ok = f.Push("https://example.com/page1")
	assert.False(t, ok, "duplicate URL should be rejected")

	ok = f.Push("https://example.com/page1#section")
	assert.False(t, ok, "URL differing only by fragment should be rejected")
}

func TestFrontier_Pop_returns_URLs_in_insertion_order(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	f.Push("https://example.com/c")
	f.Push("https://example.com/a")
	f.Push("https://example.com/b")

	for _, want := range []string{"https://example.com/c", "https://example.com/a", "https://example.com/b"} {
		got, ok := f.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := f.Pop()
	assert.False(t, ok, "pop on empty frontier should return false")
}

func TestFrontier_Len_tracks_queue_size(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.Equal(t, 0, f.Len(), "new frontier should be empty")

	f.Push("https://example.com/a")
	assert.Equal(t, 1, f.Len())

	f.Push("https://example.com/b")
	assert.Equal(t, 2, f.Len())

	f.Pop()
	assert.Equal(t, 1, f.Len())

	f.Pop()
	assert.Equal(t, 0, f.Len())
}

func TestFrontier_Seen_tracks_all_pushed_URLs(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(1000, 0.01)

	assert.False(t, f.Seen("https://example.com/page"), "unseen URL should return false")

	f.Push("https://example.com/page")
	assert.True(t, f.Seen("https://example.com/page"), "pushed URL should be seen")

	f.Pop()
	assert.True(t, f.Seen("https://example.com/page"), "popped URL should still be seen")
}

func TestFrontier_undersized_filter_never_drops_URLs(t *testing.T) {
	t.Parallel()

	// A tiny filter saturates quickly and reports false positives.
	f := crawl.NewFrontier(1, 0.5)

	const n = 500
	for i := range n {
		assert.True(t, f.Push(fmt.Sprintf("https://example.com/%d", i)))
	}
	assert.Equal(t, n, f.Len())
	assert.Positive(t, f.FalsePositives())
}

func TestFrontier_concurrent_access(t *testing.T) {
	t.Parallel()

	f := crawl.NewFrontier(10000, 0.01)

	const numGoroutines = 10
	const numOpsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := range numGoroutines {
		go func(id int) {
			defer wg.Done()
			for j := range numOpsPerGoroutine {
				f.Push(fmt.Sprintf("https://example.com/%d/%d", id, j))
				// Every goroutine also pushes a shared URL.
				f.Push("https://example.com/shared")
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines*numOpsPerGoroutine+1, f.Len())
}
