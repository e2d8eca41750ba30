package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/core/domain"
	"github.com/rl1809/botshop/internal/port"
)

const maxConflictRetries = 5

// Collection is a typed view over one persisted collection. Every mutation
// runs load, modify, save under the collection's mutex, so a process never
// loses its own updates. Saves are versioned: a concurrent writer in another
// process surfaces as port.ErrVersionConflict and the mutation is replayed
// on fresh data.
type Collection[T any] struct {
	name   string
	store  port.CollectionStore
	logger *zap.Logger
	mu     sync.Mutex
}

func NewCollection[T any](name string, store port.CollectionStore, logger *zap.Logger) *Collection[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collection[T]{name: name, store: store, logger: logger}
}

// All returns every record. Storage failures degrade to an empty mapping.
func (c *Collection[T]) All(ctx context.Context) map[string]T {
	records, _, err := c.load(ctx)
	if err != nil {
		c.logger.Warn("collection unreadable, using empty collection",
			zap.String("collection", c.name), zap.Error(err))
		return map[string]T{}
	}
	return records
}

// Get returns the record stored under id.
func (c *Collection[T]) Get(ctx context.Context, id string) (T, bool) {
	v, ok := c.All(ctx)[id]
	return v, ok
}

// Update applies fn to the whole collection and saves it when fn reports a
// change. fn may run more than once and must not keep state between runs.
func (c *Collection[T]) Update(ctx context.Context, fn func(records map[string]T) (bool, error)) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var changed bool
	err := retryOnConflict(ctx, func() error {
		records, version, err := c.load(ctx)
		if err != nil {
			return err
		}
		changed, err = fn(records)
		if err != nil || !changed {
			return err
		}
		encoded, err := encodeRecords(records)
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.name, err)
		}
		if err := c.store.Save(ctx, c.name, encoded, version); err != nil {
			return fmt.Errorf("save %s: %w", c.name, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func (c *Collection[T]) load(ctx context.Context) (map[string]T, int64, error) {
	snap, err := c.store.Load(ctx, c.name)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", c.name, err)
	}
	records := make(map[string]T, len(snap.Records))
	for id, raw := range snap.Records {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			c.logger.Warn("dropping undecodable record",
				zap.String("collection", c.name), zap.String("id", id), zap.Error(err))
			continue
		}
		records[id] = v
	}
	return records, snap.Version, nil
}

// UpdatePair mutates two collections of the same store as one unit. Locks
// are always taken first then second; callers must keep that order fixed
// for a given pair.
func UpdatePair[A, B any](ctx context.Context, first *Collection[A], second *Collection[B],
	fn func(a map[string]A, b map[string]B) (bool, error)) (bool, error) {
	first.mu.Lock()
	defer first.mu.Unlock()
	second.mu.Lock()
	defer second.mu.Unlock()

	var changed bool
	err := retryOnConflict(ctx, func() error {
		a, va, err := first.load(ctx)
		if err != nil {
			return err
		}
		b, vb, err := second.load(ctx)
		if err != nil {
			return err
		}
		changed, err = fn(a, b)
		if err != nil || !changed {
			return err
		}
		encA, err := encodeRecords(a)
		if err != nil {
			return fmt.Errorf("encode %s: %w", first.name, err)
		}
		encB, err := encodeRecords(b)
		if err != nil {
			return fmt.Errorf("encode %s: %w", second.name, err)
		}
		err = first.store.SaveAll(ctx, []port.Write{
			{Name: first.name, Records: encA, Version: va},
			{Name: second.name, Records: encB, Version: vb},
		})
		if err != nil {
			return fmt.Errorf("save %s and %s: %w", first.name, second.name, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}

func encodeRecords[T any](records map[string]T) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(records))
	for id, v := range records {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[id] = raw
	}
	return out, nil
}

func retryOnConflict(ctx context.Context, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 5 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(b, maxConflictRetries), ctx)

	return backoff.Retry(func() error {
		err := op()
		if err != nil && !errors.Is(err, port.ErrVersionConflict) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

// Collections groups the four engine collections over one store. Services
// sharing a collection must share the same *Collection so they share its lock.
type Collections struct {
	Products *Collection[domain.Product]
	Users    *Collection[domain.User]
	Carts    *Collection[domain.Cart]
	Orders   *Collection[domain.Order]
}

func NewCollections(store port.CollectionStore, logger *zap.Logger) *Collections {
	return &Collections{
		Products: NewCollection[domain.Product](port.CollectionProducts, store, logger),
		Users:    NewCollection[domain.User](port.CollectionUsers, store, logger),
		Carts:    NewCollection[domain.Cart](port.CollectionCarts, store, logger),
		Orders:   NewCollection[domain.Order](port.CollectionOrders, store, logger),
	}
}
