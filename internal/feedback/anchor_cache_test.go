package feedback

import (
	"fmt"
	"testing"
)

func TestAnchorCacheRoundTrip(t *testing.T) {
	c := NewAnchorCache(4, 4)
	c.Append("a1", "how do indexes work?", "they trade write cost for read speed")

	got := c.Get("a1")
	if len(got) != 2 {
		t.Fatalf("Get returned %d exchanges, want 2", len(got))
	}
	if got[0].Role != "user" || got[1].Role != "model" {
		t.Fatalf("unexpected roles: %q, %q", got[0].Role, got[1].Role)
	}
}

func TestAnchorCacheMissIsNil(t *testing.T) {
	c := NewAnchorCache(4, 4)
	if got := c.Get("never-stored"); got != nil {
		t.Fatalf("Get on miss = %v, want nil", got)
	}
	if got := c.Get(""); got != nil {
		t.Fatalf("Get on empty anchor = %v, want nil", got)
	}
}

func TestAnchorCacheEvictsOldestAnchor(t *testing.T) {
	c := NewAnchorCache(2, 4)
	c.Append("a1", "q1", "r1")
	c.Append("a2", "q2", "r2")
	c.Append("a3", "q3", "r3")

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if got := c.Get("a1"); got != nil {
		t.Fatalf("oldest anchor survived eviction: %v", got)
	}
	if got := c.Get("a3"); len(got) != 2 {
		t.Fatalf("newest anchor missing after eviction")
	}
}

func TestAnchorCacheTrimsTurns(t *testing.T) {
	c := NewAnchorCache(4, 3)
	for i := 0; i < 10; i++ {
		c.Append("a1", fmt.Sprintf("q%d", i), fmt.Sprintf("r%d", i))
	}
	got := c.Get("a1")
	if len(got) != 6 {
		t.Fatalf("kept %d exchanges, want 6", len(got))
	}
	if got[len(got)-1].Text != "r9" {
		t.Fatalf("trim dropped the newest exchange: %q", got[len(got)-1].Text)
	}
}

func TestAnchorCacheDrop(t *testing.T) {
	c := NewAnchorCache(4, 4)
	c.Append("a1", "q", "r")
	c.Drop("a1")
	if c.Len() != 0 {
		t.Fatalf("Len after Drop = %d, want 0", c.Len())
	}
	c.Append("a2", "q", "r")
	if c.Len() != 1 {
		t.Fatalf("cache unusable after Drop: Len = %d, want 1", c.Len())
	}
}

func TestAnchorCacheGetReturnsCopy(t *testing.T) {
	c := NewAnchorCache(4, 4)
	c.Append("a1", "q", "r")
	got := c.Get("a1")
	got[0].Text = "mutated"
	if again := c.Get("a1"); again[0].Text != "q" {
		t.Fatalf("Get leaked internal storage: %q", again[0].Text)
	}
}
