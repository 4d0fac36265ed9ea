package resolver_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/resolver"
	"github.com/onflow/flow-vmext/vmext/resolver/mock"
)

var coinStore = types.MustParseStructTag("0x1::coin::CoinStore")

func TestSnapshotResolver(t *testing.T) {
	alice := types.MustParseAddress("0xa")
	handle := types.TableHandle(types.MustParseAddress("0x77"))
	aggregator := types.AggregatorID(types.MustParseAddress("0x88"))

	snapshot := resolver.MapStorageSnapshot{
		types.ResourceKey(alice, coinStore):     []byte("coins"),
		types.ModuleKey(alice, "counter"):       []byte("code"),
		types.TableItemKey(handle, []byte("k")): []byte("item"),
		types.AggregatorKey(aggregator):         types.EncodeAggregatorValue(7),
	}

	r := resolver.NewSnapshotResolver(snapshot)

	value, err := r.GetResource(alice, coinStore)
	require.NoError(t, err)
	require.Equal(t, []byte("coins"), value)

	value, err = r.GetModule(alice, "counter")
	require.NoError(t, err)
	require.Equal(t, []byte("code"), value)

	value, err = r.GetTableItem(handle, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("item"), value)

	v, found, err := r.GetAggregatorValue(aggregator)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(7), v)

	t.Run("absence is not an error", func(t *testing.T) {
		value, err := r.GetResource(types.MustParseAddress("0xc"), coinStore)
		require.NoError(t, err)
		require.Nil(t, value)

		_, found, err := r.GetAggregatorValue(types.AggregatorID{})
		require.NoError(t, err)
		require.False(t, found)
	})

	t.Run("nil snapshot is empty", func(t *testing.T) {
		value, err := resolver.NewSnapshotResolver(nil).GetModule(alice, "counter")
		require.NoError(t, err)
		require.Nil(t, value)
	})

	t.Run("access failure is an error", func(t *testing.T) {
		failing := resolver.NewSnapshotResolver(
			resolver.StorageSnapshotFunc(func(types.StateKey) ([]byte, error) {
				return nil, fmt.Errorf("disk on fire")
			}))
		_, err := failing.GetResource(alice, coinStore)
		require.ErrorContains(t, err, "disk on fire")
	})

	t.Run("get by key", func(t *testing.T) {
		for key, expected := range snapshot {
			value, err := resolver.Get(r, key)
			require.NoError(t, err)
			require.Equal(t, expected, value, key.String())
		}
	})
}

func TestMapStorageSnapshot_Apply(t *testing.T) {
	a := types.ModuleKey(types.MustParseAddress("0xa"), "m")
	b := types.ModuleKey(types.MustParseAddress("0xb"), "m")

	base := resolver.MapStorageSnapshot{a: []byte("a")}
	next := base.Apply(types.NewChangeSet(map[types.StateKey]types.WriteOp{
		a: types.Deletion(),
		b: types.Creation([]byte("b")),
	}))

	require.Equal(t, resolver.MapStorageSnapshot{b: []byte("b")}, next)
	require.Equal(t, resolver.MapStorageSnapshot{a: []byte("a")}, base)
}

func TestOverlayResolver(t *testing.T) {
	alice := types.MustParseAddress("0xa")
	bob := types.MustParseAddress("0xb")

	base := mock.NewStateResolver(t)
	base.On("GetResource", bob, coinStore).Return([]byte("base-bob"), nil).Once()

	overlay := resolver.NewOverlayResolver(
		base,
		types.NewChangeSet(map[types.StateKey]types.WriteOp{
			types.ResourceKey(alice, coinStore): types.Deletion(),
			types.ModuleKey(alice, "m"):         types.Creation([]byte("pending")),
		}))

	// deletions hide the base value without consulting it
	value, err := overlay.GetResource(alice, coinStore)
	require.NoError(t, err)
	require.Nil(t, value)

	value, err = overlay.GetModule(alice, "m")
	require.NoError(t, err)
	require.Equal(t, []byte("pending"), value)

	value, err = overlay.GetResource(bob, coinStore)
	require.NoError(t, err)
	require.Equal(t, []byte("base-bob"), value)
}

func TestOverlayResolver_Aggregators(t *testing.T) {
	created := types.AggregatorID(types.MustParseAddress("0x91"))
	deleted := types.AggregatorID(types.MustParseAddress("0x92"))
	untouched := types.AggregatorID(types.MustParseAddress("0x93"))

	base := resolver.NewSnapshotResolver(resolver.MapStorageSnapshot{
		types.AggregatorKey(deleted):   types.EncodeAggregatorValue(7),
		types.AggregatorKey(untouched): types.EncodeAggregatorValue(3),
	})

	overlay := resolver.NewOverlayResolver(
		base,
		types.NewChangeSet(map[types.StateKey]types.WriteOp{
			types.AggregatorKey(created): types.Creation(types.EncodeAggregatorValue(500)),
			types.AggregatorKey(deleted): types.Deletion(),
		}))

	value, found, err := overlay.GetAggregatorValue(created)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(500), value)

	value, found, err = overlay.GetAggregatorValue(deleted)
	require.NoError(t, err)
	require.False(t, found)
	require.Equal(t, uint64(0), value)

	value, found, err = overlay.GetAggregatorValue(untouched)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(3), value)

	t.Run("malformed pending value", func(t *testing.T) {
		broken := resolver.NewOverlayResolver(
			base,
			types.NewChangeSet(map[types.StateKey]types.WriteOp{
				types.AggregatorKey(created): types.Creation([]byte{1, 2}),
			}))
		_, _, err := broken.GetAggregatorValue(created)
		require.Error(t, err)
	})
}

func TestDeltaResolver(t *testing.T) {
	id := types.AggregatorID(types.MustParseAddress("0x99"))
	other := types.AggregatorID(types.MustParseAddress("0x98"))

	base := resolver.NewSnapshotResolver(resolver.MapStorageSnapshot{
		types.AggregatorKey(id):    types.EncodeAggregatorValue(10),
		types.AggregatorKey(other): types.EncodeAggregatorValue(1),
	})

	deltas := types.NewAggregatorDeltaSet()
	require.NoError(t, deltas.Add(id, 3))

	r := resolver.NewDeltaResolver(base, deltas)

	// later mutations of the caller's delta set are not observed
	require.NoError(t, deltas.Add(id, 100))

	value, found, err := r.GetAggregatorValue(id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(13), value)

	value, found, err = r.GetAggregatorValue(other)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(1), value)

	underflow := types.NewAggregatorDeltaSet()
	require.NoError(t, underflow.Add(other, -2))
	_, _, err = resolver.NewDeltaResolver(base, underflow).GetAggregatorValue(other)
	require.Error(t, err)

	t.Run("delta over absent aggregator", func(t *testing.T) {
		missing := types.AggregatorID(types.MustParseAddress("0x97"))
		pending := types.NewAggregatorDeltaSet()
		require.NoError(t, pending.Add(missing, 5))

		r := resolver.NewDeltaResolver(resolver.NewSnapshotResolver(nil), pending)
		value, found, err := r.GetAggregatorValue(missing)
		require.NoError(t, err)
		require.False(t, found)
		require.Equal(t, uint64(0), value)
	})
}

func TestCachedStorageSnapshot(t *testing.T) {
	key := types.ModuleKey(types.MustParseAddress("0xa"), "m")
	missing := types.ModuleKey(types.MustParseAddress("0xa"), "missing")

	reads := map[types.StateKey]int{}
	fail := false
	backend := resolver.StorageSnapshotFunc(func(k types.StateKey) ([]byte, error) {
		if fail {
			return nil, fmt.Errorf("unavailable")
		}
		reads[k]++
		if k == key {
			return []byte("code"), nil
		}
		return nil, nil
	})

	cached, err := resolver.NewCachedStorageSnapshot(backend, 2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		value, err := cached.Get(key)
		require.NoError(t, err)
		require.Equal(t, []byte("code"), value)

		value, err = cached.Get(missing)
		require.NoError(t, err)
		require.Nil(t, value)
	}
	require.Equal(t, 1, reads[key])
	require.Equal(t, 1, reads[missing])

	// errors are not cached
	fail = true
	_, err = cached.Get(types.ModuleKey(types.MustParseAddress("0xb"), "m"))
	require.Error(t, err)
	fail = false
	_, err = cached.Get(types.ModuleKey(types.MustParseAddress("0xb"), "m"))
	require.NoError(t, err)

	r, err := resolver.NewCachedResolver(backend, 0)
	require.NoError(t, err)
	value, err := r.GetModule(types.MustParseAddress("0xa"), "m")
	require.NoError(t, err)
	require.Equal(t, []byte("code"), value)
}
