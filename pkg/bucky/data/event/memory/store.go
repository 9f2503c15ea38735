package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/event"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

type store struct {
	mu      sync.Mutex
	records []*event.Record
	last    uint64
}

type ById []*event.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

// New returns a new in memory event.Store
func New() event.Store {
	return &store{}
}

// Append implements event.Store.Append
func (s *store) Append(_ context.Context, records ...*event.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, record := range records {
		if s.find(record) != nil {
			return event.ErrEventExists
		}

		for _, other := range records[:i] {
			if isSameEvent(record, other) {
				return event.ErrEventExists
			}
		}
	}

	now := time.Now()
	for _, record := range records {
		s.last++
		record.Id = s.last
		record.CreatedAt = now

		s.records = append(s.records, record.Clone())
	}

	return nil
}

// GetAll implements event.Store.GetAll
func (s *store) GetAll(_ context.Context, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*event.Record, len(s.records))
	copy(all, s.records)

	res := filterPaged(all, cursor, limit, direction)
	if len(res) == 0 {
		return nil, event.ErrEventNotFound
	}
	return res, nil
}

// GetAllByBank implements event.Store.GetAllByBank
func (s *store) GetAllByBank(_ context.Context, bank string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*event.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*event.Record
	for _, item := range s.records {
		if item.Bank == bank {
			all = append(all, item)
		}
	}

	res := filterPaged(all, cursor, limit, direction)
	if len(res) == 0 {
		return nil, event.ErrEventNotFound
	}
	return res, nil
}

func (s *store) find(record *event.Record) *event.Record {
	for _, item := range s.records {
		if isSameEvent(item, record) {
			return item
		}
	}
	return nil
}

func isSameEvent(a, b *event.Record) bool {
	return a.Signature == b.Signature && a.InstructionIndex == b.InstructionIndex && a.EventIndex == b.EventIndex
}

func filterPaged(items []*event.Record, cursor query.Cursor, limit uint64, direction query.Ordering) []*event.Record {
	if direction == query.Ascending {
		sort.Sort(ById(items))
	} else {
		sort.Sort(sort.Reverse(ById(items)))
	}

	var start uint64
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*event.Record
	for _, item := range items {
		if len(cursor) > 0 {
			if direction == query.Ascending && item.Id <= start {
				continue
			}
			if direction == query.Descending && item.Id >= start {
				continue
			}
		}

		res = append(res, item.Clone())
		if limit > 0 && uint64(len(res)) >= limit {
			break
		}
	}
	return res
}

func (s *store) reset() {
	s.mu.Lock()
	s.records = nil
	s.last = 0
	s.mu.Unlock()
}
