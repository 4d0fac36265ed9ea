package badger

import (
	"errors"
	"fmt"

	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack"
)

var errUncompressedValue = errors.New("could not uncompress data")

// encodeEntity encodes the given entity using msgpack and compresses the
// result.
func encodeEntity(entity interface{}) ([]byte, error) {
	val, err := msgpack.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("could not encode entity: %w", err)
	}
	return snappy.Encode(nil, val), nil
}

func decodeEntity(val []byte, entity interface{}) error {
	raw, err := decompress(val)
	if err != nil {
		return err
	}
	err = msgpack.Unmarshal(raw, entity)
	if err != nil {
		return fmt.Errorf("could not decode entity: %w", err)
	}
	return nil
}

func compress(val []byte) []byte {
	return snappy.Encode(nil, val)
}

func decompress(val []byte) ([]byte, error) {
	raw, err := snappy.Decode(nil, val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", err, errUncompressedValue)
	}
	return raw, nil
}
