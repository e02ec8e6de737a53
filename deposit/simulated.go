package deposit

import (
	"context"
	"fmt"
	"sync"
)

// SimulatedStore is an in-memory Store used in tests and as a reference
// implementation of the contract.
type SimulatedStore struct {
	mu       sync.RWMutex
	deposits map[string]*Deposit
}

func NewSimulatedStore() *SimulatedStore {
	return &SimulatedStore{
		deposits: make(map[string]*Deposit),
	}
}

func (s *SimulatedStore) GetById(_ context.Context, id string) (*Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deposits[id]
	if !ok {
		return nil, nil
	}
	return d.Clone(), nil
}

func (s *SimulatedStore) GetByStatus(_ context.Context, status DepositStatus, chainId uint64) ([]*Deposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Deposit
	for _, d := range s.deposits {
		if d.Status == status && d.ChainId == chainId {
			out = append(out, d.Clone())
		}
	}
	return out, nil
}

func (s *SimulatedStore) Create(_ context.Context, d *Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deposits[d.Id]; ok {
		return fmt.Errorf("deposit %s already exists", d.Id)
	}
	s.deposits[d.Id] = d.Clone()
	return nil
}

func (s *SimulatedStore) Update(_ context.Context, d *Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deposits[d.Id]; !ok {
		return fmt.Errorf("deposit %s not found", d.Id)
	}
	s.deposits[d.Id] = d.Clone()
	return nil
}

// Count is a test helper.
func (s *SimulatedStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.deposits)
}
