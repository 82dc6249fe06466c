package cache

import (
	"testing"
	"time"

	"cctracker/internal/core"
	"cctracker/internal/log"
)

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should be cached")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUCacheExpiry(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[string](10, time.Minute)
	c.now = func() time.Time { return now }

	c.Set("a", "x")
	c.Set("b", "y")
	now = now.Add(30 * time.Second)
	c.Set("b", "z")
	now = now.Add(45 * time.Second)

	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", n)
	}
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if v, ok := c.Get("b"); !ok || v != "z" {
		t.Fatalf("b = %q, %v", v, ok)
	}

	c.Purge()
	if c.Size() != 0 {
		t.Fatal("Purge left entries behind")
	}
}

func TestDashboardCacheKeysByRevisionAndDay(t *testing.T) {
	d := NewDashboardCache(8, time.Minute)
	calls := 0
	compute := func() Dashboard { calls++; return Dashboard{} }

	d.Get(1, "2024-01-20", compute)
	if _, hit := d.Get(1, "2024-01-20", compute); !hit {
		t.Fatal("expected a cache hit")
	}
	d.Get(2, "2024-01-20", compute)
	d.Get(2, "2024-01-21", compute)
	if calls != 3 {
		t.Fatalf("compute called %d times, want 3", calls)
	}
}

func TestBuildDashboard(t *testing.T) {
	s := core.SeedSnapshot("c1", "e1", "2024-01-20")
	s.Cards = append(s.Cards, core.NewCard("c2"))

	got := BuildDashboard(s, "2024-01-20")
	if got.Summary.CardCount != 2 || got.Summary.TotalBalance != 2500 {
		t.Fatalf("unexpected summary %+v", got.Summary)
	}
	if len(got.Calendar) != 7*core.CalendarWeeks {
		t.Fatalf("calendar has %d days", len(got.Calendar))
	}
	if !got.Metrics["c1"].HasEntry || got.Metrics["c2"].HasEntry {
		t.Fatalf("unexpected metrics %+v", got.Metrics)
	}

	d := got.Display
	if d.TotalBalance != "$2,500.00" || d.TotalAvailable != "$7,500.00" || d.TotalRemaining != "$2,500.00" {
		t.Fatalf("unexpected totals %+v", d)
	}
	if d.AvgUtilization != "12.5%" || d.DueSoon != "$0.00" {
		t.Fatalf("unexpected display %+v", d)
	}
	want := map[string]CardDisplay{
		"c1": {Limit: "$10,000.00", Balance: "$2,500.00", Utilization: "25.0%"},
		"c2": {Limit: "$10,000.00", Balance: "$0.00", Utilization: "0.0%", EstimatedInterest: "$0.00"},
	}
	for id, w := range want {
		c := d.Cards[id]
		if c.Limit != w.Limit || c.Balance != w.Balance || c.Utilization != w.Utilization {
			t.Fatalf("card %s display = %+v, want %+v", id, c, w)
		}
		if w.EstimatedInterest != "" && c.EstimatedInterest != w.EstimatedInterest {
			t.Fatalf("card %s interest = %q", id, c.EstimatedInterest)
		}
	}
}

func TestManagerCleanNow(t *testing.T) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	c := NewLRUCache[int](4, time.Second)
	c.now = func() time.Time { return now }
	c.Set("a", 1)
	now = now.Add(2 * time.Second)

	m := NewManager(log.Discard())
	m.Register(c)
	if n := m.CleanNow(); n != 1 {
		t.Fatalf("CleanNow() = %d", n)
	}
	m.StartCleanup(time.Hour)
	m.Stop()
}
