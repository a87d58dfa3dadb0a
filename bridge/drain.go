package bridge

import (
	"context"
	"encoding/binary"
	"time"
)

const depositsDrainingKey = "deposits-draining-checkpoint"

func (grp *Group) drainDeposits(ctx context.Context, batch int) {
	for {
		checkpoint, err := grp.readDepositsDrainingCheckpoint(ctx)
		if err != nil {
			time.Sleep(3 * time.Second)
			continue
		}
		deposits, err := grp.client.ListDeposits(ctx, checkpoint, batch)
		if err != nil {
			time.Sleep(3 * time.Second)
			continue
		}

		for _, dep := range deposits {
			for _, wkr := range grp.workers {
				wkr.ProcessDeposit(ctx, dep)
			}
			checkpoint = dep.CreatedAt
		}

		grp.writeDepositsDrainingCheckpoint(ctx, checkpoint)
		if len(deposits) < batch/2 {
			break
		}
	}
}

func (grp *Group) readDepositsDrainingCheckpoint(ctx context.Context) (time.Time, error) {
	key := []byte(depositsDrainingKey)
	val, err := grp.store.ReadProperty(key)
	if err != nil || len(val) == 0 {
		return time.Time{}, err
	}
	ts := int64(binary.BigEndian.Uint64(val))
	return time.Unix(0, ts), nil
}

func (grp *Group) writeDepositsDrainingCheckpoint(ctx context.Context, ckpt time.Time) error {
	val := make([]byte, 8)
	key := []byte(depositsDrainingKey)
	ts := uint64(ckpt.UnixNano())
	binary.BigEndian.PutUint64(val, ts)
	return grp.store.WriteProperty(key, val)
}
