package feedback

import (
	"sync"
)

// Exchange is one prior request/response pair kept for context replay.
type Exchange struct {
	Role string // "user" or "model"
	Text string
}

// AnchorCache is the bounded, concurrency-safe conversation-context cache a
// provider instance shares across concurrently served sessions. Entries are
// keyed by anchor id; when the anchor cap is hit the oldest anchor is
// evicted (FIFO), and each anchor keeps at most maxTurns exchanges. A cache
// miss is not an error: context degrades, the call proceeds.
type AnchorCache struct {
	mu        sync.Mutex
	entries   map[string][]Exchange
	order     []string
	maxAnchor int
	maxTurns  int
}

const (
	defaultMaxAnchors = 256
	defaultMaxTurns   = 12
)

func NewAnchorCache(maxAnchors, maxTurns int) *AnchorCache {
	if maxAnchors <= 0 {
		maxAnchors = defaultMaxAnchors
	}
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &AnchorCache{
		entries:   make(map[string][]Exchange),
		maxAnchor: maxAnchors,
		maxTurns:  maxTurns,
	}
}

// Get returns a copy of the exchanges behind anchor, or nil on a miss.
func (c *AnchorCache) Get(anchor string) []Exchange {
	if anchor == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	stored, ok := c.entries[anchor]
	if !ok {
		return nil
	}
	out := make([]Exchange, len(stored))
	copy(out, stored)
	return out
}

// Append records a user/model exchange pair under anchor, creating the
// entry when absent and evicting the oldest anchor at capacity.
func (c *AnchorCache) Append(anchor string, userText, modelText string) {
	if anchor == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[anchor]; !ok {
		for len(c.order) >= c.maxAnchor {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, anchor)
	}

	turns := append(c.entries[anchor],
		Exchange{Role: "user", Text: userText},
		Exchange{Role: "model", Text: modelText})
	if max := c.maxTurns * 2; len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	c.entries[anchor] = turns
}

// Drop removes an anchor, typically when its session finishes.
func (c *AnchorCache) Drop(anchor string) {
	if anchor == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[anchor]; !ok {
		return
	}
	delete(c.entries, anchor)
	for i, a := range c.order {
		if a == anchor {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *AnchorCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
