package store

import (
	"context"
	"fmt"

	"github.com/dropzone-protocol/dropzone/bridge"
	"github.com/dropzone-protocol/dropzone/drop"
	"github.com/redis/go-redis/v9"
)

// RedisStore is the alternate store driver for deployments that already run
// a redis. Transfers are indexed in one sorted set per state, scored by
// update time, so listing preserves the badger timed-key ordering.
type RedisStore struct {
	db *redis.Client
}

func OpenRedis(ctx context.Context, connString string) (*RedisStore, error) {
	opts, err := redis.ParseURL(connString)
	if err != nil {
		return nil, err
	}
	db := redis.NewClient(opts)
	err = db.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}
	return &RedisStore{db: db}, nil
}

func (rs *RedisStore) Close() error {
	return rs.db.Close()
}

func (rs *RedisStore) WriteProperty(key, val []byte) error {
	ctx := context.Background()
	return rs.db.Set(ctx, prefixProperty+string(key), val, 0).Err()
}

func (rs *RedisStore) ReadProperty(key []byte) ([]byte, error) {
	ctx := context.Background()
	val, err := rs.db.Get(ctx, prefixProperty+string(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	return val, nil
}

func (rs *RedisStore) WriteDrop(d *drop.Drop) error {
	ctx := context.Background()
	return rs.db.Set(ctx, string(dropKey(d.Id)), bridge.MsgpackMarshalPanic(d), 0).Err()
}

func (rs *RedisStore) ReadDrop(id uint64) (*drop.Drop, error) {
	ctx := context.Background()
	val, err := rs.db.Get(ctx, string(dropKey(id))).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var d drop.Drop
	err = bridge.MsgpackUnmarshal(val, &d)
	return &d, err
}

func (rs *RedisStore) NextDropId() (uint64, error) {
	ctx := context.Background()
	next, err := rs.db.Incr(ctx, keyDropSequence).Result()
	return uint64(next), err
}

func (rs *RedisStore) WriteTransfer(t *bridge.Transfer) error {
	ctx := context.Background()
	old, err := rs.readTransfer(ctx, t.TraceId)
	if err != nil {
		return err
	}
	_, err = rs.db.Pipelined(ctx, func(p redis.Pipeliner) error {
		if old != nil && old.State != t.State {
			if err := p.ZRem(ctx, transferStatePrefix(old.State), old.TraceId).Err(); err != nil {
				return err
			}
		}
		if err := p.Set(ctx, prefixTransferPayload+t.TraceId, bridge.MsgpackMarshalPanic(t), 0).Err(); err != nil {
			return err
		}
		return p.ZAdd(ctx, transferStatePrefix(t.State), redis.Z{
			Score:  float64(t.UpdatedAt.UnixNano()),
			Member: t.TraceId,
		}).Err()
	})
	return err
}

func (rs *RedisStore) ReadTransfer(traceId string) (*bridge.Transfer, error) {
	return rs.readTransfer(context.Background(), traceId)
}

func (rs *RedisStore) ListTransfers(state int, limit int) ([]*bridge.Transfer, error) {
	ctx := context.Background()
	count := int64(limit)
	if count == 0 {
		count = -1
	}
	ids, err := rs.db.ZRangeArgs(ctx, redis.ZRangeArgs{
		Key:     transferStatePrefix(state),
		Start:   "-inf",
		Stop:    "+inf",
		ByScore: true,
		Count:   count,
	}).Result()
	if err != nil {
		return nil, err
	}
	var txs []*bridge.Transfer
	for _, id := range ids {
		t, err := rs.readTransfer(ctx, id)
		if err != nil {
			return nil, err
		}
		if t == nil {
			return nil, fmt.Errorf("store: transfer %s indexed but missing", id)
		}
		txs = append(txs, t)
	}
	return txs, nil
}

func (rs *RedisStore) DeleteTransfer(t *bridge.Transfer) error {
	ctx := context.Background()
	old, err := rs.readTransfer(ctx, t.TraceId)
	if err != nil || old == nil {
		return err
	}
	_, err = rs.db.Pipelined(ctx, func(p redis.Pipeliner) error {
		if err := p.ZRem(ctx, transferStatePrefix(old.State), old.TraceId).Err(); err != nil {
			return err
		}
		return p.Del(ctx, prefixTransferPayload+old.TraceId).Err()
	})
	return err
}

func (rs *RedisStore) readTransfer(ctx context.Context, traceId string) (*bridge.Transfer, error) {
	val, err := rs.db.Get(ctx, prefixTransferPayload+traceId).Bytes()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	var t bridge.Transfer
	err = bridge.MsgpackUnmarshal(val, &t)
	return &t, err
}
