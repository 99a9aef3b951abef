package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is an in-process Repository for local runs and tests.
type Memory struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) List(ctx context.Context, username string) ([]Entry, error) {
	if username == "" {
		return nil, ErrNoUser
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0)
	for _, e := range m.entries {
		if e.Username == username {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *Memory) Insert(ctx context.Context, e Entry) (Entry, error) {
	if e.Username == "" {
		return Entry{}, ErrNoUser
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return e, nil
}

func (m *Memory) Healthy(ctx context.Context) bool { return true }
