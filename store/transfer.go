package store

import (
	"encoding/binary"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dropzone-protocol/dropzone/bridge"
)

const (
	prefixTransferPayload = "TRANSFER:PAYLOAD:"
	prefixTransferState   = "TRANSFER:STATE:"
)

func (bs *BadgerStore) WriteTransfer(t *bridge.Transfer) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		err := bs.resetOldTransfer(txn, t)
		if err != nil {
			return err
		}
		key := []byte(prefixTransferPayload + t.TraceId)
		val := bridge.MsgpackMarshalPanic(t)
		err = txn.Set(key, val)
		if err != nil {
			return err
		}

		key = buildTransferTimedKey(t)
		return txn.Set(key, []byte{1})
	})
}

func (bs *BadgerStore) ReadTransfer(traceId string) (*bridge.Transfer, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	return bs.readTransfer(txn, traceId)
}

func (bs *BadgerStore) ListTransfers(state int, limit int) ([]*bridge.Transfer, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = []byte(transferStatePrefix(state))
	it := txn.NewIterator(opts)
	defer it.Close()

	var txs []*bridge.Transfer
	for it.Seek(opts.Prefix); it.Valid(); it.Next() {
		key := it.Item().Key()
		id := string(key[len(opts.Prefix)+8:])
		t, err := bs.readTransfer(txn, id)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
		if len(txs) == limit {
			break
		}
	}
	return txs, nil
}

func (bs *BadgerStore) DeleteTransfer(t *bridge.Transfer) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		old, err := bs.readTransfer(txn, t.TraceId)
		if err != nil || old == nil {
			return err
		}
		err = txn.Delete(buildTransferTimedKey(old))
		if err != nil {
			return err
		}
		return txn.Delete([]byte(prefixTransferPayload + t.TraceId))
	})
}

func (bs *BadgerStore) readTransfer(txn *badger.Txn, traceId string) (*bridge.Transfer, error) {
	key := []byte(prefixTransferPayload + traceId)
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var t bridge.Transfer
	err = bridge.MsgpackUnmarshal(val, &t)
	return &t, err
}

func (bs *BadgerStore) resetOldTransfer(txn *badger.Txn, t *bridge.Transfer) error {
	old, err := bs.readTransfer(txn, t.TraceId)
	if err != nil || old == nil {
		return err
	}
	if old.State == t.State {
		return nil
	}

	key := buildTransferTimedKey(old)
	return txn.Delete(key)
}

func buildTransferTimedKey(t *bridge.Transfer) []byte {
	buf := tsToBytes(t.UpdatedAt)
	prefix := transferStatePrefix(t.State)
	key := append([]byte(prefix), buf...)
	return append(key, []byte(t.TraceId)...)
}

func tsToBytes(ts time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(ts.UnixNano()))
	return buf
}

func transferStatePrefix(state int) string {
	prefix := prefixTransferState
	switch state {
	case bridge.TransferStateInitial:
		return prefix + "initiall"
	case bridge.TransferStateResolved:
		return prefix + "resolved"
	}
	panic(state)
}
