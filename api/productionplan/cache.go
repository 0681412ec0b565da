package productionplan

import (
	lru "github.com/hashicorp/golang-lru"
)

// cachedPlan is a response ready to be replayed.
type cachedPlan struct {
	body      []byte
	remaining string
	planID    string
}

// responseCache keeps the most recently computed responses keyed by the
// canonical payload. A nil cache stores nothing.
type responseCache struct {
	lru *lru.Cache
}

func newResponseCache(size int) (*responseCache, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &responseCache{lru: c}, nil
}

func (c *responseCache) get(key string) (cachedPlan, bool) {
	if c == nil {
		return cachedPlan{}, false
	}
	v, ok := c.lru.Get(key)
	if !ok {
		return cachedPlan{}, false
	}
	return v.(cachedPlan), true
}

func (c *responseCache) add(key string, p cachedPlan) {
	if c == nil {
		return
	}
	c.lru.Add(key, p)
}

func (c *responseCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
