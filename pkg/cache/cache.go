package cache

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrKeyExists           = errors.New("key already exists in cache")
	ErrWeightExceedsBudget = errors.New("item weight exceeds cache budget")
)

// Cache is a weighted LRU cache. Once the total weight of entries goes over
// budget, the least recently used entries are evicted.
type Cache interface {
	// GetWeight returns the total weight of cached entries
	GetWeight() int

	// GetBudget returns the maximum total weight
	GetBudget() int

	// Insert adds a new entry. ErrKeyExists is returned if key is already
	// present.
	Insert(key string, value interface{}, weight int) error

	// Retrieve gets an entry and marks it as recently used
	Retrieve(key string) (interface{}, bool)

	// Remove deletes an entry, returning whether it was present
	Remove(key string) bool

	// Clear removes all entries
	Clear()
}

type entry struct {
	prev, next *entry

	key    string
	value  interface{}
	weight int
}

type cache struct {
	log *logrus.Entry

	mu      sync.Mutex
	head    *entry
	tail    *entry
	entries map[string]*entry
	weight  int
	budget  int
}

// NewCache returns a new cache with the provided weight budget
func NewCache(budget int) Cache {
	return &cache{
		log:     logrus.StandardLogger().WithField("type", "cache"),
		entries: make(map[string]*entry),
		budget:  budget,
	}
}

func (c *cache) GetWeight() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.weight
}

func (c *cache) GetBudget() int {
	return c.budget
}

func (c *cache) Insert(key string, value interface{}, weight int) error {
	if weight > c.budget {
		return ErrWeightExceedsBudget
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		return ErrKeyExists
	}

	e := &entry{key: key, value: value, weight: weight}
	c.pushFront(e)
	c.entries[key] = e
	c.weight += weight

	for c.weight > c.budget && c.tail != nil {
		evicted := c.tail
		c.unlink(evicted)
		delete(c.entries, evicted.key)
		c.weight -= evicted.weight

		c.log.WithFields(logrus.Fields{
			"key":          evicted.key,
			"weight":       evicted.weight,
			"spare_weight": c.budget - c.weight,
		}).Trace("evicted cache entry")
	}

	return nil
}

func (c *cache) Retrieve(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	if e != c.head {
		c.unlink(e)
		c.pushFront(e)
	}
	return e.value, true
}

func (c *cache) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return false
	}

	c.unlink(e)
	delete(c.entries, key)
	c.weight -= e.weight
	return true
}

func (c *cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.head = nil
	c.tail = nil
	c.entries = make(map[string]*entry)
	c.weight = 0
}

func (c *cache) pushFront(e *entry) {
	e.prev = nil
	e.next = c.head
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *cache) unlink(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
