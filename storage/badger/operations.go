package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/storage"
)

func upsert(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		val, err := encodeEntity(entity)
		if err != nil {
			return err
		}

		err = tx.Set(key, val)
		if err != nil {
			return fmt.Errorf("could not store data: %w", err)
		}
		return nil
	}
}

func retrieve(key []byte, entity interface{}) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("could not load data: %w", err)
		}

		return item.Value(func(val []byte) error {
			return decodeEntity(val, entity)
		})
	}
}

// retrieveRaw decompresses the value stored under key.  The value is nil if
// the key does not exist.
func retrieveRaw(key []byte, value *[]byte) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			*value = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not load data: %w", err)
		}

		return item.Value(func(val []byte) error {
			raw, err := decompress(val)
			if err != nil {
				return err
			}
			// snappy decodes an empty value to nil
			if raw == nil {
				raw = []byte{}
			}
			*value = raw
			return nil
		})
	}
}

// txnWriter adapts a badger transaction to storage.Writer, compressing values.
type txnWriter struct {
	tx *badger.Txn
}

var _ storage.Writer = txnWriter{}

func (w txnWriter) Set(key []byte, value []byte) error {
	return w.tx.Set(key, compress(value))
}

func (w txnWriter) Delete(key []byte) error {
	return w.tx.Delete(key)
}

// txnSnapshot reads state through a badger transaction.
type txnSnapshot struct {
	tx *badger.Txn
}

func (s txnSnapshot) Get(key types.StateKey) ([]byte, error) {
	var value []byte
	err := retrieveRaw(storage.StateValueKey(key), &value)(s.tx)
	return value, err
}
