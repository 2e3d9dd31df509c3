package users

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Profile
}

// NewMemoryRepository constructs an in-memory profile repository.
func NewMemoryRepository() ProfileRepository {
	return &memoryRepository{byID: make(map[uuid.UUID]*Profile)}
}

func (m *memoryRepository) Create(_ context.Context, profile *Profile) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneProfile(profile)
	m.byID[cloned.ID] = cloned
	return cloneProfile(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, profile *Profile) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[profile.ID]; !ok {
		return nil, &NotFoundError{Resource: "profile", Key: profile.ID.String()}
	}
	cloned := cloneProfile(profile)
	m.byID[cloned.ID] = cloned
	return cloneProfile(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "profile", Key: id.String()}
	}
	return cloneProfile(record), nil
}

func (m *memoryRepository) List(_ context.Context) ([]*Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Profile, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, cloneProfile(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].CreatedAt.After(records[j].CreatedAt)
		}
		return records[i].ID.String() < records[j].ID.String()
	})
	return records, nil
}
