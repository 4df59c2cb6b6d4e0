package memory

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemoryRepository keeps entries in process memory.
// Used by tests and by the MCP binary when no database is configured.
type InMemoryRepository struct {
	mu      sync.Mutex
	entries map[string][]Entry
}

// NewInMemoryRepository creates an empty repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[string][]Entry)}
}

func (r *InMemoryRepository) Append(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := append(r.entries[entry.SessionID], entry)
	sort.SliceStable(list, func(i, j int) bool { return list[i].Timestamp.Before(list[j].Timestamp) })
	r.entries[entry.SessionID] = list
	return nil
}

func (r *InMemoryRepository) Recent(_ context.Context, sessionID string, limit int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[sessionID]
	if limit > 0 && len(list) > limit {
		list = list[len(list)-limit:]
	}
	out := make([]Entry, len(list))
	copy(out, list)
	return out, nil
}

func (r *InMemoryRepository) Prune(_ context.Context, sessionID string, keep int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[sessionID]
	if keep < 0 || len(list) <= keep {
		return 0, nil
	}
	removed := len(list) - keep
	r.entries[sessionID] = append([]Entry(nil), list[removed:]...)
	return int64(removed), nil
}

func (r *InMemoryRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, list := range r.entries {
		kept := list[:0]
		for _, e := range list {
			if e.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		r.entries[id] = kept
	}
	return removed, nil
}
