package types

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ChangeSet maps state keys to their final write operation.  A ChangeSet is
// never mutated once handed out by the session output builder.
type ChangeSet struct {
	writes map[StateKey]WriteOp
}

func NewChangeSet(writes map[StateKey]WriteOp) ChangeSet {
	copied := make(map[StateKey]WriteOp, len(writes))
	for key, op := range writes {
		copied[key] = op
	}
	return ChangeSet{writes: copied}
}

func (cs ChangeSet) Len() int {
	return len(cs.writes)
}

func (cs ChangeSet) IsEmpty() bool {
	return len(cs.writes) == 0
}

func (cs ChangeSet) Get(key StateKey) (WriteOp, bool) {
	op, ok := cs.writes[key]
	return op.clone(), ok
}

// Keys returns the keys in canonical order.
func (cs ChangeSet) Keys() []StateKey {
	keys := maps.Keys(cs.writes)
	slices.SortFunc(keys, StateKey.Compare)
	return keys
}

// ForEach visits every write in canonical key order, stopping at the first
// error.
func (cs ChangeSet) ForEach(f func(StateKey, WriteOp) error) error {
	for _, key := range cs.Keys() {
		if err := f(key, cs.writes[key].clone()); err != nil {
			return err
		}
	}
	return nil
}

// Writes returns a copy of the underlying map.
func (cs ChangeSet) Writes() map[StateKey]WriteOp {
	copied := make(map[StateKey]WriteOp, len(cs.writes))
	for key, op := range cs.writes {
		copied[key] = op.clone()
	}
	return copied
}

type encodedWrite struct {
	_     struct{} `cbor:",toarray"`
	Key   []byte
	Kind  WriteOpKind
	Value []byte
}

// Encode returns the canonical encoding of the change set.  Two change sets
// with the same content always encode to identical bytes.
func (cs ChangeSet) Encode() ([]byte, error) {
	encoded := make([]encodedWrite, 0, len(cs.writes))
	for _, key := range cs.Keys() {
		op := cs.writes[key]
		encoded = append(encoded, encodedWrite{
			Key:   key.Bytes(),
			Kind:  op.Kind,
			Value: op.Value,
		})
	}
	data, err := Marshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to encode change set: %w", err)
	}
	return data, nil
}

// DecodeChangeSet decodes a change set produced by Encode.
func DecodeChangeSet(data []byte) (ChangeSet, error) {
	var encoded []encodedWrite
	err := Unmarshal(data, &encoded)
	if err != nil {
		return ChangeSet{}, fmt.Errorf("failed to decode change set: %w", err)
	}

	writes := make(map[StateKey]WriteOp, len(encoded))
	for _, w := range encoded {
		key, err := StateKeyFromBytes(w.Key)
		if err != nil {
			return ChangeSet{}, fmt.Errorf("failed to decode change set: %w", err)
		}
		if _, ok := writes[key]; ok {
			return ChangeSet{}, fmt.Errorf("duplicate key %s in change set", key)
		}
		writes[key] = WriteOp{Kind: w.Kind, Value: w.Value}
	}
	return ChangeSet{writes: writes}, nil
}
