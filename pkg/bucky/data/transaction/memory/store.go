package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/bucky-bank-server/pkg/bucky/data/transaction"
)

type store struct {
	mu          sync.Mutex
	bySignature map[string]*transaction.Record
	latestSlot  uint64
	last        uint64
}

// New returns a new in memory transaction.Store
func New() transaction.Store {
	return &store{
		bySignature: make(map[string]*transaction.Record),
	}
}

// Put implements transaction.Store.Put
func (s *store) Put(_ context.Context, record *transaction.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bySignature[record.Signature]; ok {
		return transaction.ErrExists
	}

	s.last++
	record.Id = s.last
	record.CreatedAt = time.Now()

	s.bySignature[record.Signature] = record.Clone()
	if record.Slot > s.latestSlot {
		s.latestSlot = record.Slot
	}
	return nil
}

// Get implements transaction.Store.Get
func (s *store) Get(_ context.Context, signature string) (*transaction.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.bySignature[signature]; ok {
		return item.Clone(), nil
	}
	return nil, transaction.ErrNotFound
}

// GetLatestSlot implements transaction.Store.GetLatestSlot
func (s *store) GetLatestSlot(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.latestSlot, nil
}

func (s *store) reset() {
	s.mu.Lock()
	s.bySignature = make(map[string]*transaction.Record)
	s.latestSlot = 0
	s.last = 0
	s.mu.Unlock()
}
