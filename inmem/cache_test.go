package inmem_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/siteaudit"
	"github.com/fwojciec/siteaudit/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(startURL string) *siteaudit.SiteAuditReport {
	return &siteaudit.SiteAuditReport{Metadata: siteaudit.Metadata{StartURL: startURL}}
}

func TestReportCache(t *testing.T) {
	t.Parallel()

	t.Run("returns stored reports", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := inmem.NewReportCache(2)
		r := report("https://a.com/")

		require.NoError(t, c.Put(ctx, "r1", r))
		got, err := c.Get(ctx, "r1")

		require.NoError(t, err)
		assert.Same(t, r, got)
	})

	t.Run("miss is ENOTFOUND", func(t *testing.T) {
		t.Parallel()

		_, err := inmem.NewReportCache(2).Get(context.Background(), "nope")

		assert.Equal(t, siteaudit.ENOTFOUND, siteaudit.ErrorCode(err))
	})

	t.Run("evicts oldest insertion beyond capacity", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := inmem.NewReportCache(2)
		require.NoError(t, c.Put(ctx, "r1", report("https://1.com/")))
		require.NoError(t, c.Put(ctx, "r2", report("https://2.com/")))

		// Reads do not refresh position.
		_, err := c.Get(ctx, "r1")
		require.NoError(t, err)

		require.NoError(t, c.Put(ctx, "r3", report("https://3.com/")))

		assert.Equal(t, 2, c.Len())
		_, err = c.Get(ctx, "r1")
		assert.Equal(t, siteaudit.ENOTFOUND, siteaudit.ErrorCode(err))
		_, err = c.Get(ctx, "r3")
		assert.NoError(t, err)
	})

	t.Run("replacing keeps insertion position", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := inmem.NewReportCache(2)
		require.NoError(t, c.Put(ctx, "r1", report("https://1.com/")))
		require.NoError(t, c.Put(ctx, "r2", report("https://2.com/")))
		updated := report("https://1.com/v2")
		require.NoError(t, c.Put(ctx, "r1", updated))

		got, err := c.Get(ctx, "r1")
		require.NoError(t, err)
		assert.Same(t, updated, got)

		require.NoError(t, c.Put(ctx, "r3", report("https://3.com/")))
		_, err = c.Get(ctx, "r1")
		assert.Equal(t, siteaudit.ENOTFOUND, siteaudit.ErrorCode(err))
	})

	t.Run("defaults capacity", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := inmem.NewReportCache(0)
		for i := range inmem.DefaultCacheCapacity + 5 {
			require.NoError(t, c.Put(ctx, fmt.Sprint(i), report("https://a.com/")))
		}

		assert.Equal(t, inmem.DefaultCacheCapacity, c.Len())
	})

	t.Run("rejects empty key", func(t *testing.T) {
		t.Parallel()

		err := inmem.NewReportCache(1).Put(context.Background(), "", report("https://a.com/"))

		assert.Equal(t, siteaudit.EINVALID, siteaudit.ErrorCode(err))
	})

	t.Run("is safe for concurrent use", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		c := inmem.NewReportCache(10)
		var wg sync.WaitGroup
		for i := range 50 {
			wg.Go(func() {
				id := fmt.Sprint(i)
				_ = c.Put(ctx, id, report("https://a.com/"))
				_, _ = c.Get(ctx, id)
			})
		}
		wg.Wait()

		assert.Equal(t, 10, c.Len())
	})
}
