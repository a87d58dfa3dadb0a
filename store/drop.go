package store

import (
	"encoding/binary"
	"fmt"

	"github.com/dgraph-io/badger/v3"
	"github.com/dropzone-protocol/dropzone/bridge"
	"github.com/dropzone-protocol/dropzone/drop"
)

const (
	prefixProperty    = "PROPERTY:"
	prefixDropPayload = "DROP:PAYLOAD:"
	keyDropSequence   = "DROP:SEQUENCE"
)

func dropKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixDropPayload, id))
}

func (bs *BadgerStore) WriteDrop(d *drop.Drop) error {
	return bs.db.Update(func(txn *badger.Txn) error {
		val := bridge.MsgpackMarshalPanic(d)
		return txn.Set(dropKey(d.Id), val)
	})
}

func (bs *BadgerStore) ReadDrop(id uint64) (*drop.Drop, error) {
	txn := bs.db.NewTransaction(false)
	defer txn.Discard()

	item, err := txn.Get(dropKey(id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}
	var d drop.Drop
	err = bridge.MsgpackUnmarshal(val, &d)
	return &d, err
}

func (bs *BadgerStore) NextDropId() (uint64, error) {
	var next uint64
	err := bs.db.Update(func(txn *badger.Txn) error {
		key := []byte(keyDropSequence)
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			next = 1
		} else if err != nil {
			return err
		} else {
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			next = binary.BigEndian.Uint64(val) + 1
		}
		val := make([]byte, 8)
		binary.BigEndian.PutUint64(val, next)
		return txn.Set(key, val)
	})
	return next, err
}
