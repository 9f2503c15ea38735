package sync

import (
	"sort"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides concurrent data access while also
// limiting the total memory footprint.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(stripes, hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.stripe(key)]
}

func (l *StripedLock) stripe(key []byte) int {
	return l.hashRing.stripe(key)
}

// KeySet is a set of keys to lock together. Keys requested for both reading
// and writing are locked for writing.
type KeySet struct {
	stripes map[int]bool
}

// NewKeySet returns an empty KeySet for l.
func (l *StripedLock) NewKeySet() *KeySet {
	return &KeySet{stripes: make(map[int]bool)}
}

// Add adds a key to the set.
func (l *StripedLock) Add(set *KeySet, key []byte, write bool) {
	stripe := l.stripe(key)
	set.stripes[stripe] = set.stripes[stripe] || write
}

// TryLock attempts to acquire every stripe in the set without blocking.
// Stripes are always acquired in index order. On failure, any acquired
// stripes are released and false is returned.
func (l *StripedLock) TryLock(set *KeySet) (unlock func(), ok bool) {
	ordered := make([]int, 0, len(set.stripes))
	for stripe := range set.stripes {
		ordered = append(ordered, stripe)
	}
	sort.Ints(ordered)

	release := func(acquired []int) {
		for i := len(acquired) - 1; i >= 0; i-- {
			stripe := acquired[i]
			if set.stripes[stripe] {
				l.locks[stripe].Unlock()
			} else {
				l.locks[stripe].RUnlock()
			}
		}
	}

	for i, stripe := range ordered {
		var acquired bool
		if set.stripes[stripe] {
			acquired = l.locks[stripe].TryLock()
		} else {
			acquired = l.locks[stripe].TryRLock()
		}

		if !acquired {
			release(ordered[:i])
			return nil, false
		}
	}

	var once base.Once
	return func() { once.Do(func() { release(ordered) }) }, true
}
