package repository

import (
	"sync"

	"loan-referral/domain"
)

// LeadRepositoryMemory is an in-memory implementation of LeadRepository.
type LeadRepositoryMemory struct {
	mu   sync.Mutex
	data []domain.LeadRecord
}

// NewLeadRepositoryMemory creates a new in-memory lead repository.
func NewLeadRepositoryMemory() *LeadRepositoryMemory {
	return &LeadRepositoryMemory{
		data: []domain.LeadRecord{},
	}
}

// Save appends the record to the ledger.
func (r *LeadRepositoryMemory) Save(record domain.LeadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, record)
	return nil
}

// List returns a copy of every saved record in insertion order.
func (r *LeadRepositoryMemory) List() []domain.LeadRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LeadRecord, len(r.data))
	copy(out, r.data)
	return out
}
