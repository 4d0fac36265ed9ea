package types

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

type StateKeyKind uint8

const (
	StateKeyResource StateKeyKind = iota + 1
	StateKeyModule
	StateKeyTableItem
	StateKeyAggregator
)

func (k StateKeyKind) String() string {
	switch k {
	case StateKeyResource:
		return "resource"
	case StateKeyModule:
		return "module"
	case StateKeyTableItem:
		return "table_item"
	case StateKeyAggregator:
		return "aggregator"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// TableHandle identifies a table.  Handles are derived from the session seed
// of the session which created the table.
type TableHandle Address

func (h TableHandle) String() string {
	return Address(h).String()
}

// StateKey addresses a single state value.  StateKey is comparable and is
// used directly as a map key.
//
//   - resource:   Owner is the account, Path is the struct tag
//   - module:     Owner is the publisher, Path is the module name
//   - table item: Owner is the table handle, Path is the raw item key
//   - aggregator: Owner is the aggregator id, Path is empty
type StateKey struct {
	Kind  StateKeyKind
	Owner Address
	Path  string
}

func ResourceKey(address Address, tag StructTag) StateKey {
	return StateKey{Kind: StateKeyResource, Owner: address, Path: tag.String()}
}

func ModuleKey(address Address, name string) StateKey {
	return StateKey{Kind: StateKeyModule, Owner: address, Path: name}
}

func TableItemKey(handle TableHandle, key []byte) StateKey {
	return StateKey{Kind: StateKeyTableItem, Owner: Address(handle), Path: string(key)}
}

// AggregatorKey is the storage location of a materialized aggregator value.
// Sessions never write it; only the materialization step does.
func AggregatorKey(id AggregatorID) StateKey {
	return StateKey{Kind: StateKeyAggregator, Owner: Address(id)}
}

// Bytes returns the canonical encoding of the key:
// kind (1 byte) | owner (32 bytes) | uvarint(len(path)) | path
func (k StateKey) Bytes() []byte {
	buf := make([]byte, 0, 1+AddressLength+binary.MaxVarintLen64+len(k.Path))
	buf = append(buf, byte(k.Kind))
	buf = append(buf, k.Owner[:]...)
	buf = binary.AppendUvarint(buf, uint64(len(k.Path)))
	buf = append(buf, k.Path...)
	return buf
}

// StateKeyFromBytes decodes a key encoded with Bytes.
func StateKeyFromBytes(b []byte) (StateKey, error) {
	if len(b) < 1+AddressLength {
		return StateKey{}, fmt.Errorf("state key too short: %d bytes", len(b))
	}
	kind := StateKeyKind(b[0])
	if kind < StateKeyResource || kind > StateKeyAggregator {
		return StateKey{}, fmt.Errorf("unknown state key kind %d", b[0])
	}

	var owner Address
	copy(owner[:], b[1:1+AddressLength])

	rest := b[1+AddressLength:]
	size, n := binary.Uvarint(rest)
	if n <= 0 {
		return StateKey{}, fmt.Errorf("invalid state key path length")
	}
	rest = rest[n:]
	if uint64(len(rest)) != size {
		return StateKey{}, fmt.Errorf(
			"state key path length mismatch: expected %d, got %d",
			size,
			len(rest))
	}

	return StateKey{Kind: kind, Owner: owner, Path: string(rest)}, nil
}

// Size is the number of bytes metered for the key.
func (k StateKey) Size() uint64 {
	return uint64(AddressLength + len(k.Path))
}

// Compare orders keys by their canonical encoding.
func (k StateKey) Compare(other StateKey) int {
	return bytes.Compare(k.Bytes(), other.Bytes())
}

func (k StateKey) String() string {
	switch k.Kind {
	case StateKeyTableItem:
		return fmt.Sprintf("%s/%s/%s", k.Kind, k.Owner, hex.EncodeToString([]byte(k.Path)))
	default:
		return fmt.Sprintf("%s/%s/%s", k.Kind, k.Owner, k.Path)
	}
}
