package cache

import (
	"fmt"
	"testing"

	"crateview/app/query"
	"crateview/app/tabular"
)

// viewOfSize builds a view whose Size() lands near n bytes.
func viewOfSize(n int) *query.View {
	pad := make([]byte, n)
	for i := range pad {
		pad[i] = 'x'
	}
	return &query.View{
		Rows: []tabular.Row{{"": tabular.StringValue(string(pad))}},
	}
}

func TestGetStoreAndCounters(t *testing.T) {
	c := New(1024 * 1024)

	if _, ok := c.Get("k1"); ok {
		t.Fatalf("empty cache returned a hit")
	}

	v := &query.View{TotalRows: 7}
	c.Store("k1", v)

	got, ok := c.Get("k1")
	if !ok || got.TotalRows != 7 {
		t.Fatalf("Get after Store = (%+v, %v)", got, ok)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Entries != 1 {
		t.Errorf("stats = %+v, want 1 hit, 1 miss, 1 entry", stats)
	}
}

func TestStoreReplacesExistingKey(t *testing.T) {
	c := New(1024 * 1024)
	c.Store("k", &query.View{TotalRows: 1})
	c.Store("k", &query.View{TotalRows: 2})

	got, ok := c.Get("k")
	if !ok || got.TotalRows != 2 {
		t.Errorf("Get = (%+v, %v), want replaced view", got, ok)
	}
	if stats := c.Stats(); stats.Entries != 1 {
		t.Errorf("entries = %d, want 1", stats.Entries)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	// Each view is ~600 bytes, cache fits two
	c := New(1500)
	c.Store("a", viewOfSize(600))
	c.Store("b", viewOfSize(600))

	// Touch a so b becomes the eviction candidate
	if _, ok := c.Get("a"); !ok {
		t.Fatalf("a missing before eviction")
	}

	c.Store("c", viewOfSize(600))

	if _, ok := c.Get("b"); ok {
		t.Errorf("b survived, want it evicted as least recently used")
	}
	if _, ok := c.Get("a"); !ok {
		t.Errorf("a evicted, want it retained")
	}
	if _, ok := c.Get("c"); !ok {
		t.Errorf("c missing after store")
	}
}

func TestOversizedViewNotStored(t *testing.T) {
	c := New(100)
	c.Store("huge", viewOfSize(10_000))
	if _, ok := c.Get("huge"); ok {
		t.Errorf("oversized view was cached")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(1024 * 1024)
	for i := 0; i < 3; i++ {
		c.Store(BuildKey("hashA", fmt.Sprintf("state%d", i)), &query.View{TotalRows: i})
	}
	c.Store(BuildKey("hashB", "state0"), &query.View{TotalRows: 9})

	if removed := c.InvalidatePrefix(DatasetPrefix("hashA")); removed != 3 {
		t.Errorf("removed = %d, want 3", removed)
	}
	if _, ok := c.Get(BuildKey("hashA", "state0")); ok {
		t.Errorf("hashA entry survived invalidation")
	}
	if _, ok := c.Get(BuildKey("hashB", "state0")); !ok {
		t.Errorf("hashB entry was invalidated by hashA prefix")
	}
}

func TestClear(t *testing.T) {
	c := New(1024 * 1024)
	c.Store("a", &query.View{})
	c.Store("b", &query.View{})
	c.Clear()

	stats := c.Stats()
	if stats.Entries != 0 || stats.CurrentSize != 0 {
		t.Errorf("stats after Clear = %+v, want empty", stats)
	}
}
