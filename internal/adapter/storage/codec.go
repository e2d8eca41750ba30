package storage

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/port"
)

// ErrOptimisticLock is the storage-level name for a stale collection write.
var ErrOptimisticLock = port.ErrVersionConflict

// decodePayload parses a stored collection. Malformed data is logged and
// treated as an empty collection.
func decodePayload(logger *zap.Logger, name string, payload []byte) map[string]json.RawMessage {
	records := map[string]json.RawMessage{}
	if len(payload) == 0 {
		return records
	}
	if err := json.Unmarshal(payload, &records); err != nil {
		logger.Error("malformed collection data, using empty collection",
			zap.String("collection", name), zap.Error(err))
		return map[string]json.RawMessage{}
	}
	if records == nil {
		records = map[string]json.RawMessage{}
	}
	return records
}

func encodePayload(records map[string]json.RawMessage) ([]byte, error) {
	if records == nil {
		records = map[string]json.RawMessage{}
	}
	return json.Marshal(records)
}
