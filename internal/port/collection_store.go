package port

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names persisted by the engine.
const (
	CollectionProducts = "products"
	CollectionUsers    = "users"
	CollectionCarts    = "carts"
	CollectionOrders   = "orders"
)

// ErrVersionConflict is returned by Save when the stored collection changed
// since the snapshot was loaded.
var ErrVersionConflict = errors.New("collection version conflict")

// Snapshot is a whole collection as of one version.
type Snapshot struct {
	Records map[string]json.RawMessage
	Version int64
}

// Write is one collection replacement inside SaveAll.
type Write struct {
	Name    string
	Records map[string]json.RawMessage
	Version int64
}

type CollectionStore interface {
	// Load returns the whole collection, creating it empty if it does not
	// exist. Undecodable stored data yields an empty collection.
	Load(ctx context.Context, name string) (Snapshot, error)

	// Save replaces the whole collection if it is still at version.
	Save(ctx context.Context, name string, records map[string]json.RawMessage, version int64) error

	// SaveAll applies several writes, atomically where the backend allows it.
	SaveAll(ctx context.Context, writes []Write) error
}
