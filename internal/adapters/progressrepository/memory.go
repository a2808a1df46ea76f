package progressrepository

import (
	"context"
	"fmt"
	"sync"

	"github.com/anki0476/rigveda-explorer/internal/domain"
)

// MemoryProgressRepository keeps encoded records in memory. Records go through the codec so
// that it behaves like the database backends.
type MemoryProgressRepository struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryProgressRepository() *MemoryProgressRepository {
	return &MemoryProgressRepository{
		records: make(map[string][]byte),
	}
}

func (m *MemoryProgressRepository) LoadProgress(ctx context.Context, playerID string) (domain.ProgressRecord, error) {
	m.mu.Lock()
	data, ok := m.records[playerID]
	m.mu.Unlock()

	if !ok {
		return domain.ProgressRecord{}, domain.ErrProgressNotFound
	}

	record, err := DecodeProgress(data)
	if err != nil {
		return domain.ProgressRecord{}, fmt.Errorf("failed to decode progress: %w", err)
	}
	return record, nil
}

func (m *MemoryProgressRepository) SaveProgress(ctx context.Context, playerID string, record domain.ProgressRecord) error {
	data, err := EncodeProgress(record)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[playerID] = data
	return nil
}

func (m *MemoryProgressRepository) DeleteProgress(ctx context.Context, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, playerID)
	return nil
}
