package resolver

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
)

// StateResolver is the read-only capability through which a session reads
// on-chain state.
//
// Reads must be pure and must return the same answer for the lifetime of a
// session.  Absence is not an error: a missing value is reported as a nil
// slice (or found == false) with a nil error.  A non-nil error means the
// resolver could not answer, and is fatal to the calling execute request.
type StateResolver interface {
	GetResource(address types.Address, tag types.StructTag) ([]byte, error)
	GetModule(address types.Address, name string) ([]byte, error)
	GetTableItem(handle types.TableHandle, key []byte) ([]byte, error)
	GetAggregatorValue(id types.AggregatorID) (value uint64, found bool, err error)
}

// StorageSnapshot is a flat, read-only view of storage keyed by state key.
// A nil value means the key does not exist.
type StorageSnapshot interface {
	Get(key types.StateKey) ([]byte, error)
}

// StorageSnapshotFunc adapts a function to a StorageSnapshot.
type StorageSnapshotFunc func(key types.StateKey) ([]byte, error)

func (f StorageSnapshotFunc) Get(key types.StateKey) ([]byte, error) {
	return f(key)
}

// Get reads any state key through a resolver.  It is the inverse of the key
// constructors in model/types.
func Get(resolver StateResolver, key types.StateKey) ([]byte, error) {
	switch key.Kind {
	case types.StateKeyResource:
		tag, err := types.ParseStructTag(key.Path)
		if err != nil {
			return nil, err
		}
		return resolver.GetResource(key.Owner, tag)
	case types.StateKeyModule:
		return resolver.GetModule(key.Owner, key.Path)
	case types.StateKeyTableItem:
		return resolver.GetTableItem(types.TableHandle(key.Owner), []byte(key.Path))
	case types.StateKeyAggregator:
		value, found, err := resolver.GetAggregatorValue(types.AggregatorID(key.Owner))
		if err != nil || !found {
			return nil, err
		}
		return types.EncodeAggregatorValue(value), nil
	default:
		return nil, fmt.Errorf("unknown state key kind %s", key.Kind)
	}
}
