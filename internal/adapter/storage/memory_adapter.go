package storage

import (
	"context"
	"encoding/json"
	"maps"
	"sync"

	"github.com/rl1809/botshop/internal/port"
)

// MemoryAdapter keeps collections in process memory. Used for local runs
// and the stress tool.
type MemoryAdapter struct {
	mu          sync.Mutex
	collections map[string]port.Snapshot
}

func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{collections: map[string]port.Snapshot{}}
}

func (m *MemoryAdapter) Load(ctx context.Context, name string) (port.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, ok := m.collections[name]
	if !ok {
		snap = port.Snapshot{Records: map[string]json.RawMessage{}}
		m.collections[name] = snap
	}
	return port.Snapshot{Records: maps.Clone(snap.Records), Version: snap.Version}, nil
}

func (m *MemoryAdapter) Save(ctx context.Context, name string, records map[string]json.RawMessage, version int64) error {
	return m.SaveAll(ctx, []port.Write{{Name: name, Records: records, Version: version}})
}

func (m *MemoryAdapter) SaveAll(ctx context.Context, writes []port.Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, w := range writes {
		if m.collections[w.Name].Version != w.Version {
			return ErrOptimisticLock
		}
	}
	for _, w := range writes {
		m.collections[w.Name] = port.Snapshot{
			Records: maps.Clone(w.Records),
			Version: w.Version + 1,
		}
	}
	return nil
}
