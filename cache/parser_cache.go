package cache

import (
	"sort"
	"sync"

	"github.com/scalebig/sequelize/datatypes"
)

// ParserCache maps backend type tags to the parse function currently active
// for them. It has a single writer (the owning manager) and any number of
// readers.
type ParserCache struct {
	mu      sync.RWMutex
	parsers map[string]datatypes.ParseFunc
}

func NewParserCache() *ParserCache {
	return &ParserCache{
		parsers: make(map[string]datatypes.ParseFunc),
	}
}

// Refresh makes the cache reflect defs. Every tag named by defs ends up
// mapped to the parse function of the last definition carrying it, or is
// removed when none of them parses. Tags not named by defs are untouched.
func (c *ParserCache) Refresh(defs ...datatypes.Definition) {
	next := make(map[string]datatypes.ParseFunc)
	for _, def := range defs {
		for _, tag := range def.Tags {
			if def.Parse != nil {
				next[tag] = def.Parse
			} else if _, ok := next[tag]; !ok {
				next[tag] = nil
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for tag, parse := range next {
		if parse == nil {
			delete(c.parsers, tag)
			continue
		}
		c.parsers[tag] = parse
	}
}

// Clear empties the cache.
func (c *ParserCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.parsers)
}

func (c *ParserCache) Get(tag string) (datatypes.ParseFunc, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	parse, ok := c.parsers[tag]
	return parse, ok
}

func (c *ParserCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.parsers)
}

// Tags returns the cached tags in sorted order.
func (c *ParserCache) Tags() []string {
	c.mu.RLock()
	tags := make([]string, 0, len(c.parsers))
	for tag := range c.parsers {
		tags = append(tags, tag)
	}
	c.mu.RUnlock()

	sort.Strings(tags)
	return tags
}
