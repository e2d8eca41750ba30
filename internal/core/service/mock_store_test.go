package service

import (
	"context"
	"encoding/json"
	"maps"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/port"
)

type mockStore struct {
	mu        sync.Mutex
	snaps     map[string]port.Snapshot
	loadErr   error
	saveErr   error
	conflicts int
	saves     int
}

func newMockStore() *mockStore {
	return &mockStore{snaps: map[string]port.Snapshot{}}
}

func (m *mockStore) Load(ctx context.Context, name string) (port.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return port.Snapshot{}, m.loadErr
	}
	snap := m.snaps[name]
	return port.Snapshot{Records: maps.Clone(snap.Records), Version: snap.Version}, nil
}

func (m *mockStore) Save(ctx context.Context, name string, records map[string]json.RawMessage, version int64) error {
	return m.SaveAll(ctx, []port.Write{{Name: name, Records: records, Version: version}})
}

func (m *mockStore) SaveAll(ctx context.Context, writes []port.Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.conflicts > 0 {
		m.conflicts--
		// Simulate another process bumping the versions.
		for _, w := range writes {
			snap := m.snaps[w.Name]
			snap.Version++
			m.snaps[w.Name] = snap
		}
		return port.ErrVersionConflict
	}
	for _, w := range writes {
		if m.snaps[w.Name].Version != w.Version {
			return port.ErrVersionConflict
		}
	}
	for _, w := range writes {
		m.snaps[w.Name] = port.Snapshot{Records: maps.Clone(w.Records), Version: w.Version + 1}
	}
	m.saves++
	return nil
}

func (m *mockStore) setLoadErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *mockStore) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *mockStore) setConflicts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = n
}

func (m *mockStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

type recordingNotifier struct {
	mu      sync.Mutex
	created []domain.Order
	changed []domain.Order
}

func (n *recordingNotifier) OrderCreated(ctx context.Context, o domain.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, o)
}

func (n *recordingNotifier) StatusChanged(ctx context.Context, o domain.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, o)
}

type engine struct {
	store    *mockStore
	cols     *Collections
	notifier *recordingNotifier
	catalog  *CatalogService
	carts    *CartService
	orders   *OrderService
	users    *UserService
	clock    *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newEngine(strict bool) *engine {
	store := newMockStore()
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts := Options{Now: clock.Now, StrictValidation: strict}
	cols := NewCollections(store, nil)
	notifier := &recordingNotifier{}
	catalog := NewCatalogService(cols, opts)
	return &engine{
		store:    store,
		cols:     cols,
		notifier: notifier,
		catalog:  catalog,
		carts:    NewCartService(cols, catalog, opts),
		orders:   NewOrderService(cols, notifier, opts),
		users:    NewUserService(cols),
		clock:    clock,
	}
}

func (e *engine) mustCreateProduct(name, price string, stock int) string {
	id, err := e.catalog.CreateProduct(context.Background(), domain.ProductFields{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	if err != nil {
		panic(err)
	}
	return id
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
