package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AggregatorID identifies an aggregator.
type AggregatorID Address

func (id AggregatorID) String() string {
	return Address(id).String()
}

// AggregatorDeltaSet maps aggregators to an accumulated signed delta.  Deltas
// are merged additively and are never resolved to a value by the core.
type AggregatorDeltaSet struct {
	deltas map[AggregatorID]int64
}

func NewAggregatorDeltaSet() AggregatorDeltaSet {
	return AggregatorDeltaSet{deltas: map[AggregatorID]int64{}}
}

// Add merges delta into the accumulated delta of id.
func (set *AggregatorDeltaSet) Add(id AggregatorID, delta int64) error {
	if set.deltas == nil {
		set.deltas = map[AggregatorID]int64{}
	}
	current := set.deltas[id]
	sum, ok := AddDelta(current, delta)
	if !ok {
		return fmt.Errorf(
			"delta overflow for aggregator %s: %d + %d",
			id,
			current,
			delta)
	}
	set.deltas[id] = sum
	return nil
}

// Merge adds every delta of other into the set.
func (set *AggregatorDeltaSet) Merge(other AggregatorDeltaSet) error {
	for _, id := range other.IDs() {
		err := set.Add(id, other.deltas[id])
		if err != nil {
			return err
		}
	}
	return nil
}

func (set AggregatorDeltaSet) Get(id AggregatorID) (int64, bool) {
	delta, ok := set.deltas[id]
	return delta, ok
}

func (set AggregatorDeltaSet) Len() int {
	return len(set.deltas)
}

func (set AggregatorDeltaSet) IsEmpty() bool {
	return len(set.deltas) == 0
}

// IDs returns the aggregator ids in canonical order.
func (set AggregatorDeltaSet) IDs() []AggregatorID {
	ids := maps.Keys(set.deltas)
	slices.SortFunc(ids, func(a, b AggregatorID) int {
		return bytes.Compare(a[:], b[:])
	})
	return ids
}

func (set AggregatorDeltaSet) Clone() AggregatorDeltaSet {
	copied := maps.Clone(set.deltas)
	if copied == nil {
		copied = map[AggregatorID]int64{}
	}
	return AggregatorDeltaSet{deltas: copied}
}

// Deltas returns a copy of the underlying map.
func (set AggregatorDeltaSet) Deltas() map[AggregatorID]int64 {
	return set.Clone().deltas
}

// AddDelta adds two signed deltas, reporting false on overflow.
func AddDelta(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// ApplyDelta applies a delta to a materialized aggregator value, reporting
// false if the result leaves the uint64 range.
func ApplyDelta(base uint64, delta int64) (uint64, bool) {
	if delta >= 0 {
		d := uint64(delta)
		if base > math.MaxUint64-d {
			return 0, false
		}
		return base + d, true
	}

	d := uint64(-(delta + 1)) + 1
	if base < d {
		return 0, false
	}
	return base - d, true
}

// EncodeAggregatorValue encodes a materialized aggregator value for storage.
func EncodeAggregatorValue(value uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	return buf[:]
}

// DecodeAggregatorValue decodes a value produced by EncodeAggregatorValue.
func DecodeAggregatorValue(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid aggregator value length: %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
