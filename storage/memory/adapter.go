package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/casafx/madrates/storage/types"
)

// Storage is the in-memory snapshot store. Each saved snapshot replaces
// the previous one atomically; there is no merging between cycles
type Storage struct {
	latest *types.Snapshot

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{}
}

func (s *Storage) SaveSnapshot(_ context.Context, snapshot *types.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Guard against out-of-order saves from an abandoned cycle
	if s.latest != nil && snapshot.RefreshedAt.Before(s.latest.RefreshedAt) {
		return nil
	}

	s.latest = snapshot

	return nil
}

func (s *Storage) LatestSnapshot(_ context.Context) (*types.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.latest, nil
}

func (s *Storage) ListSources(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil {
		return nil, nil
	}

	out := make([]string, 0, len(s.latest.Sets))
	for _, set := range s.latest.Sets {
		out = append(out, set.SourceName)
	}

	sort.Strings(out)

	return out, nil
}
