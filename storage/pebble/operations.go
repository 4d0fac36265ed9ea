package pebble

import (
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/vmihailenco/msgpack"

	"github.com/onflow/flow-vmext/storage"
)

func insert(key []byte, val interface{}) func(pebble.Writer) error {
	return func(w pebble.Writer) error {
		value, err := msgpack.Marshal(val)
		if err != nil {
			return fmt.Errorf("failed to encode value: %w", err)
		}

		err = w.Set(key, value, nil)
		if err != nil {
			return fmt.Errorf("failed to store data: %w", err)
		}

		return nil
	}
}

func retrieve(key []byte, sc interface{}) func(r pebble.Reader) error {
	return func(r pebble.Reader) error {
		val, closer, err := r.Get(key)
		if err != nil {
			return convertNotFoundError(err)
		}
		defer closer.Close()

		err = msgpack.Unmarshal(val, sc)
		if err != nil {
			return fmt.Errorf("failed to decode value: %w", err)
		}
		return nil
	}
}

// retrieveRaw copies the value stored under key.  The value is nil if the
// key does not exist.
func retrieveRaw(key []byte, value *[]byte) func(r pebble.Reader) error {
	return func(r pebble.Reader) error {
		val, closer, err := r.Get(key)
		if errors.Is(err, pebble.ErrNotFound) {
			*value = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not load data: %w", err)
		}
		defer closer.Close()

		*value = append([]byte{}, val...)
		return nil
	}
}

func convertNotFoundError(err error) error {
	if errors.Is(err, pebble.ErrNotFound) {
		return storage.ErrNotFound
	}
	return err
}

// batchWriter adapts a pebble batch to storage.Writer.
type batchWriter struct {
	batch *pebble.Batch
}

var _ storage.Writer = batchWriter{}

func (w batchWriter) Set(key []byte, value []byte) error {
	return w.batch.Set(key, value, nil)
}

func (w batchWriter) Delete(key []byte) error {
	return w.batch.Delete(key, nil)
}
