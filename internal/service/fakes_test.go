package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/unitrack-api/internal/models"
)

// memoryStore is an in-memory UniversityStore with the same ownership rules
// as the real stores.
type memoryStore struct {
	mu      sync.Mutex
	records map[string]models.University
	clock   time.Time
	calls   int
	err     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		records: map[string]models.University{},
		clock:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memoryStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memoryStore) ListByUser(_ context.Context, userID string) ([]models.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	out := []models.University{}
	for _, u := range m.records {
		if u.UserID == userID {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memoryStore) FindByID(_ context.Context, id, userID string) (*models.University, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.records[id]
	if !ok || u.UserID != userID {
		return nil, fmt.Errorf("find university %s: %w", id, sql.ErrNoRows)
	}
	return &u, nil
}

func (m *memoryStore) Create(_ context.Context, u *models.University) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	u.ID = uuid.NewString()
	u.CreatedAt = m.tick()
	u.UpdatedAt = u.CreatedAt
	m.records[u.ID] = *u
	return nil
}

func (m *memoryStore) Update(_ context.Context, u *models.University) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return m.err
	}
	existing, ok := m.records[u.ID]
	if !ok || existing.UserID != u.UserID {
		return fmt.Errorf("update university %s: %w", u.ID, sql.ErrNoRows)
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = m.tick()
	m.records[u.ID] = *u
	return nil
}

func (m *memoryStore) Delete(_ context.Context, id, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return false, m.err
	}
	existing, ok := m.records[id]
	if !ok || existing.UserID != userID {
		return false, nil
	}
	delete(m.records, id)
	return true, nil
}

func (m *memoryStore) get(id string) (models.University, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.records[id]
	return u, ok
}
