package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/ledger"
	"github.com/code-payments/bucky-bank-server/pkg/database/query"
)

type store struct {
	mu      sync.Mutex
	records map[string]*ledger.Record
	last    uint64
}

type ById []*ledger.Record

func (a ById) Len() int           { return len(a) }
func (a ById) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ById) Less(i, j int) bool { return a[i].Id < a[j].Id }

// New returns a new in memory ledger.Store
func New() ledger.Store {
	return &store{
		records: make(map[string]*ledger.Record),
	}
}

// Save implements ledger.Store.Save
func (s *store) Save(_ context.Context, records ...*ledger.Record) error {
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}

		if _, ok := seen[record.Address]; ok {
			return errors.Errorf("duplicate account %s in save", record.Address)
		}
		seen[record.Address] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		var storedVersion uint64
		if item, ok := s.records[record.Address]; ok {
			storedVersion = item.Version
		}

		if storedVersion != record.Version {
			return ledger.ErrStaleAccountState
		}
	}

	now := time.Now()
	for _, record := range records {
		item, ok := s.records[record.Address]
		if !ok {
			s.last++
			item = &ledger.Record{Id: s.last}
			s.records[record.Address] = item
		}

		id := item.Id
		record.CopyTo(item)
		item.Id = id
		item.Version++
		item.LastUpdatedAt = now

		item.CopyTo(record)
	}

	return nil
}

// Get implements ledger.Store.Get
func (s *store) Get(_ context.Context, address string) (*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.records[address]; ok {
		return item.Clone(), nil
	}
	return nil, ledger.ErrAccountNotFound
}

// GetBatch implements ledger.Store.GetBatch
func (s *store) GetBatch(_ context.Context, addresses ...string) (map[string]*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make(map[string]*ledger.Record)
	for _, address := range addresses {
		if item, ok := s.records[address]; ok {
			res[address] = item.Clone()
		}
	}
	return res, nil
}

// GetAllByOwner implements ledger.Store.GetAllByOwner
func (s *store) GetAllByOwner(_ context.Context, owner string, cursor query.Cursor, limit uint64, direction query.Ordering) ([]*ledger.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*ledger.Record
	for _, item := range s.records {
		if item.Owner == owner {
			all = append(all, item)
		}
	}

	res := filterPaged(all, cursor, limit, direction)
	if len(res) == 0 {
		return nil, ledger.ErrAccountNotFound
	}
	return res, nil
}

func filterPaged(items []*ledger.Record, cursor query.Cursor, limit uint64, direction query.Ordering) []*ledger.Record {
	if direction == query.Ascending {
		sort.Sort(ById(items))
	} else {
		sort.Sort(sort.Reverse(ById(items)))
	}

	var start uint64
	if len(cursor) > 0 {
		start = cursor.ToUint64()
	}

	var res []*ledger.Record
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
	s.records = make(map[string]*ledger.Record)
	s.last = 0
	s.mu.Unlock()
}
