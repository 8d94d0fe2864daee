package cache

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestCacheBasicOperations(t *testing.T) {
	c := New[string](5*time.Minute, 10*time.Minute)
	defer c.Stop()

	c.Set("key1", "value1")

	value, found := c.Get("key1")
	if !found {
		t.Error("Expected to find key1")
	}
	if value != "value1" {
		t.Errorf("Expected 'value1', got %v", value)
	}

	if _, found = c.Get("nonexistent"); found {
		t.Error("Expected not to find nonexistent key")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New[string](5*time.Minute, 10*time.Minute)
	defer c.Stop()

	c.SetWithTTL("expiring", "value", 100*time.Millisecond)

	if _, found := c.Get("expiring"); !found {
		t.Error("Expected to find item before expiration")
	}

	time.Sleep(150 * time.Millisecond)

	if _, found := c.Get("expiring"); found {
		t.Error("Expected item to be expired")
	}
}

func TestCacheDeletePrefix(t *testing.T) {
	c := New[int](5*time.Minute, 0)
	defer c.Stop()

	c.Set("cp:42000", 5)
	c.Set("cp:42080", 3)
	c.Set("combos", 4)

	if deleted := c.DeletePrefix("cp:"); deleted != 2 {
		t.Errorf("Expected to delete 2 items, got %d", deleted)
	}
	if _, found := c.Get("combos"); !found {
		t.Error("combos should not be deleted")
	}
	if c.Count() != 1 {
		t.Errorf("Expected 1 item, got %d", c.Count())
	}
}

func TestCacheGetOrLoad(t *testing.T) {
	c := New[[]string](time.Minute, 0)
	defer c.Stop()

	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"Centro", "Revolución"}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad("cp:42000", load)
		if err != nil {
			t.Fatalf("GetOrLoad: %v", err)
		}
		if len(v) != 2 {
			t.Errorf("Expected 2 values, got %d", len(v))
		}
	}
	if calls != 1 {
		t.Errorf("Expected 1 load, got %d", calls)
	}

	failing := func() ([]string, error) { return nil, errors.New("sin red") }
	if _, err := c.GetOrLoad("cp:99999", failing); err == nil {
		t.Error("Expected error from load")
	}
	if _, found := c.Get("cp:99999"); found {
		t.Error("Errors must not be cached")
	}
}

func TestCacheStats(t *testing.T) {
	c := New[string](time.Minute, 0)
	defer c.Stop()

	c.Set("a", "1")
	c.SetWithTTL("b", "2", time.Nanosecond)
	time.Sleep(time.Millisecond)

	c.Get("a")
	c.Get("a")
	c.Get("zzz")

	stats := c.GetStats()
	if stats.TotalItems != 2 || stats.ValidItems != 1 || stats.ExpiredItems != 1 {
		t.Errorf("Unexpected item stats %+v", stats)
	}
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("Unexpected hit stats %+v", stats)
	}
}

func TestCacheCleanup(t *testing.T) {
	c := New[string](20*time.Millisecond, 10*time.Millisecond)
	defer c.Stop()

	c.Set("a", "1")
	time.Sleep(100 * time.Millisecond)

	if c.Count() != 0 {
		t.Errorf("Expected expired items to be cleaned up, got %d", c.Count())
	}
}

func TestCacheConcurrency(t *testing.T) {
	c := New[int](time.Minute, 0)
	defer c.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			c.Set("k", n)
			c.Get("k")
		}(i)
	}
	wg.Wait()

	if _, found := c.Get("k"); !found {
		t.Error("Expected key after concurrent writes")
	}
}

func TestCacheStopIsIdempotent(t *testing.T) {
	c := New[int](time.Minute, time.Minute)
	c.Stop()
	c.Stop()
}
