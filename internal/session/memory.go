package session

import (
	"context"
	"maps"
	"sync"

	"github.com/Skr3d3/holidaze-project-exam-2/pkg/logger"
)

type memoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates a Store that lives only as long as the process
func NewMemoryStore(log *logger.Logger) Store {
	return newStore(&memoryBackend{values: make(map[string]string)}, log)
}

func (m *memoryBackend) load(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.values), nil
}

func (m *memoryBackend) save(ctx context.Context, set map[string]string, del []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range set {
		m.values[k] = v
	}
	for _, k := range del {
		delete(m.values, k)
	}
	return nil
}

func (m *memoryBackend) close() error { return nil }
