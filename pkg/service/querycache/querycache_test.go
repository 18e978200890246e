package querycache_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/service/querycache"
)

func TestCache(t *testing.T) {
	c := querycache.New()

	c.Set(querycache.PrefixRisks+"page=1", []string{"a"})
	c.Set(querycache.PrefixRisks+"page=2", []string{"b"})
	c.Set(querycache.PrefixDashboard+"summary", 42)

	v, ok := querycache.Get[[]string](c, querycache.PrefixRisks+"page=1")
	gt.Bool(t, ok).True()
	gt.Value(t, v).Equal([]string{"a"})

	t.Run("type mismatch is a miss", func(t *testing.T) {
		_, ok := querycache.Get[string](c, querycache.PrefixDashboard+"summary")
		gt.Bool(t, ok).False()
	})

	t.Run("invalidate by prefix", func(t *testing.T) {
		n := c.Invalidate(querycache.PrefixRisks)
		gt.Number(t, n).Equal(2)
		_, ok := querycache.Get[[]string](c, querycache.PrefixRisks+"page=1")
		gt.Bool(t, ok).False()
		gt.Number(t, c.Len()).Equal(1)
	})

	t.Run("purge", func(t *testing.T) {
		c.Purge()
		gt.Number(t, c.Len()).Equal(0)
	})
}

func TestCacheExpiry(t *testing.T) {
	c := querycache.New(querycache.WithTTL(10 * time.Millisecond))
	c.Set("k", 1)
	time.Sleep(50 * time.Millisecond)
	_, ok := querycache.Get[int](c, "k")
	gt.Bool(t, ok).False()
}

func TestNilCache(t *testing.T) {
	var c *querycache.Cache
	c.Set("k", 1)
	_, ok := querycache.Get[int](c, "k")
	gt.Bool(t, ok).False()
	gt.Number(t, c.Invalidate("k")).Equal(0)
}
