package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/botshop/internal/port"
)

const collectionKeyPrefix = "collection:"

// KEYS come in (payload, version) pairs, ARGV in (payload, expected
// version) pairs. Nothing is written unless every version matches.
var saveCollectionsScript = redis.NewScript(`
local n = #KEYS / 2

for i = 1, n do
	local current = tonumber(redis.call('GET', KEYS[2 * i]) or '0')
	if current ~= tonumber(ARGV[2 * i]) then
		return 0
	end
end

for i = 1, n do
	local current = tonumber(redis.call('GET', KEYS[2 * i]) or '0')
	redis.call('SET', KEYS[2 * i - 1], ARGV[2 * i - 1])
	redis.call('SET', KEYS[2 * i], current + 1)
end

return 1
`)

type RedisAdapter struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

func NewRedisAdapter(client *redis.Client, keyPrefix string, logger *zap.Logger) *RedisAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisAdapter{client: client, keyPrefix: keyPrefix, logger: logger}
}

func (r *RedisAdapter) payloadKey(name string) string {
	return r.keyPrefix + collectionKeyPrefix + name
}

func (r *RedisAdapter) versionKey(name string) string {
	return r.payloadKey(name) + ":version"
}

// Load reads payload and version with a single MGET so a commit from
// another process cannot land between the two reads.
func (r *RedisAdapter) Load(ctx context.Context, name string) (port.Snapshot, error) {
	values, err := r.client.MGet(ctx, r.payloadKey(name), r.versionKey(name)).Result()
	if err != nil {
		return port.Snapshot{}, fmt.Errorf("get collection: %w", err)
	}

	var payload []byte
	if raw, ok := values[0].(string); ok {
		payload = []byte(raw)
	} else if err := r.client.SetNX(ctx, r.payloadKey(name), "{}", 0).Err(); err != nil {
		return port.Snapshot{}, fmt.Errorf("create collection: %w", err)
	}

	var version int64
	if raw, ok := values[1].(string); ok {
		version, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return port.Snapshot{}, fmt.Errorf("parse collection version: %w", err)
		}
	}

	return port.Snapshot{Records: decodePayload(r.logger, name, payload), Version: version}, nil
}

func (r *RedisAdapter) Save(ctx context.Context, name string, records map[string]json.RawMessage, version int64) error {
	return r.SaveAll(ctx, []port.Write{{Name: name, Records: records, Version: version}})
}

func (r *RedisAdapter) SaveAll(ctx context.Context, writes []port.Write) error {
	keys := make([]string, 0, 2*len(writes))
	args := make([]any, 0, 2*len(writes))
	for _, w := range writes {
		payload, err := encodePayload(w.Records)
		if err != nil {
			return fmt.Errorf("encode %s: %w", w.Name, err)
		}
		keys = append(keys, r.payloadKey(w.Name), r.versionKey(w.Name))
		args = append(args, string(payload), strconv.FormatInt(w.Version, 10))
	}

	result, err := saveCollectionsScript.Run(ctx, r.client, keys, args...).Int()
	if err != nil {
		return fmt.Errorf("save collections: %w", err)
	}
	if result != 1 {
		return ErrOptimisticLock
	}
	return nil
}
