package predicate

import (
	"container/list"
	"fmt"
	"sync"

	"github.com/expr-lang/expr/vm"
)

// DefaultCacheSize is the default maximum number of compiled expressions
// retained by the shared program cache.
const DefaultCacheSize = 512

// programs is shared by every agent in the process. Agents tick on separate
// goroutines, so unlike the rest of the package it is locked.
var programs = NewProgramCache(DefaultCacheSize)

// SetCacheSize changes the size of the shared program cache, evicting the
// least recently used programs if it shrinks.
func SetCacheSize(size int) {
	programs.Resize(size)
}

// ProgramCache is a bounded LRU of compiled expr programs, keyed by source.
type ProgramCache struct {
	mu      sync.Mutex
	index   map[string]*list.Element
	lru     *list.List
	maxSize int
	hits    int64
	misses  int64
}

type cacheEntry struct {
	source  string
	program *vm.Program
}

// NewProgramCache returns an empty cache holding at most maxSize programs.
func NewProgramCache(maxSize int) *ProgramCache {
	if maxSize < 1 {
		maxSize = DefaultCacheSize
	}
	return &ProgramCache{
		index:   make(map[string]*list.Element, maxSize),
		lru:     list.New(),
		maxSize: maxSize,
	}
}

// Get returns the program compiled from source, marking it most recently
// used.
func (c *ProgramCache) Get(source string) (*vm.Program, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.index[source]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.lru.MoveToFront(elem)
	return elem.Value.(*cacheEntry).program, true
}

// Put stores a program, evicting the least recently used entry when full.
func (c *ProgramCache) Put(source string, program *vm.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.index[source]; ok {
		c.lru.MoveToFront(elem)
		elem.Value.(*cacheEntry).program = program
		return
	}
	c.index[source] = c.lru.PushFront(&cacheEntry{source: source, program: program})
	c.evict()
}

// Resize changes the capacity of the cache.
func (c *ProgramCache) Resize(maxSize int) {
	if maxSize < 1 {
		maxSize = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maxSize = maxSize
	c.evict()
}

func (c *ProgramCache) evict() {
	for c.lru.Len() > c.maxSize {
		elem := c.lru.Back()
		delete(c.index, elem.Value.(*cacheEntry).source)
		c.lru.Remove(elem)
	}
}

// Len returns the number of cached programs.
func (c *ProgramCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Stats returns the cache size and its hit/miss counters.
func (c *ProgramCache) Stats() (size int, hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len(), c.hits, c.misses
}

func (c *ProgramCache) String() string {
	size, hits, misses := c.Stats()
	return fmt.Sprintf("ProgramCache{size=%d, hits=%d, misses=%d}", size, hits, misses)
}
