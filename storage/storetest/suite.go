// Package storetest holds the behaviour shared by every storage.Store
// backend, run by each backend's tests.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/storage"
	"github.com/onflow/flow-vmext/utils/unittest"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/resolver"
	"github.com/onflow/flow-vmext/vmext/stdlib"
)

var (
	accountA = types.MustParseAddress("0xa")
	accountB = types.MustParseAddress("0xb")
)

func coinStore(t *testing.T, value uint64) []byte {
	data, err := types.Marshal(stdlib.CoinStore{Value: value})
	require.NoError(t, err)
	return data
}

func newVM(t *testing.T) *vmext.VirtualMachine {
	vm, err := vmext.NewVirtualMachine(vmext.NewContext(
		vmext.WithLogger(unittest.Logger()),
		vmext.WithNatives(stdlib.Natives()...)))
	require.NoError(t, err)
	return vm
}

func run(
	t *testing.T,
	vm *vmext.VirtualMachine,
	snapshot resolver.StorageSnapshot,
	id types.SessionID,
	requests ...vmext.Request,
) *vmext.SessionOutput {
	session := vm.NewSession(resolver.NewSnapshotResolver(snapshot), id)
	for _, req := range requests {
		result, err := session.Execute(context.Background(), req)
		require.NoError(t, err)
		require.True(t, result.Status.IsSuccess(), result.Status.String())
	}
	output, err := session.Finish()
	require.NoError(t, err)
	return output
}

func genesis(t *testing.T) vmext.WriteSetPayload {
	return vmext.WriteSetPayload{
		Writes: []vmext.WriteSetEntry{
			{
				Key:   types.ResourceKey(accountA, stdlib.CoinStoreTag),
				Value: coinStore(t, 100),
			},
			{
				Key:   types.AggregatorKey(stdlib.CoinSupplyAggregator),
				Value: types.EncodeAggregatorValue(100),
			},
		},
	}
}

// Run runs the shared store tests.  newStore returns an empty store which
// the test closes.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Run("empty store", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()

		_, err := store.LastCommit()
		require.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.Events(1)
		require.ErrorIs(t, err, storage.ErrNotFound)

		value, err := store.Get(unittest.ResourceKeyFixture())
		require.NoError(t, err)
		require.Nil(t, value)
	})

	t.Run("commit outputs", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		vm := newVM(t)

		output := run(t, vm, store, types.GenesisSessionID(unittest.SeedFixture()), genesis(t))
		meta, err := store.Commit(output)
		require.NoError(t, err)
		require.Equal(t, uint64(1), meta.Sequence)
		require.Equal(t, 2, meta.Writes)

		output = run(t, vm, store, types.TxnSessionID(accountA, 0, unittest.SeedFixture()),
			vmext.EntryFunction{
				Module:   stdlib.CoinModule,
				Function: "transfer",
				Args:     stdlib.MustEncodeArgs(accountA, accountB, uint64(10)),
			},
			vmext.EntryFunction{
				Module:   stdlib.CoinModule,
				Function: "mint",
				Args:     stdlib.MustEncodeArgs(accountB, uint64(5)),
			})

		meta, err = store.Commit(output)
		require.NoError(t, err)
		require.Equal(t, uint64(2), meta.Sequence)
		require.Equal(t, output.SessionID().String(), meta.SessionID)
		require.Equal(t, 2, meta.Writes)
		require.Equal(t, 2, meta.Events)
		require.Equal(t, 1, meta.AggregatorDeltas)

		last, err := store.LastCommit()
		require.NoError(t, err)
		require.Equal(t, meta, last)

		value, err := store.Get(types.ResourceKey(accountA, stdlib.CoinStoreTag))
		require.NoError(t, err)
		require.Equal(t, coinStore(t, 90), value)

		value, err = store.Get(types.ResourceKey(accountB, stdlib.CoinStoreTag))
		require.NoError(t, err)
		require.Equal(t, coinStore(t, 15), value)

		events, err := store.Events(2)
		require.NoError(t, err)
		require.Equal(t, output.Events(), events)

		// deltas are not applied by Commit
		value, err = store.Get(types.AggregatorKey(stdlib.CoinSupplyAggregator))
		require.NoError(t, err)
		require.Equal(t, types.EncodeAggregatorValue(100), value)

		err = store.MaterializeDeltas(output.AggregatorDeltas())
		require.NoError(t, err)

		value, err = store.Get(types.AggregatorKey(stdlib.CoinSupplyAggregator))
		require.NoError(t, err)
		require.Equal(t, types.EncodeAggregatorValue(105), value)
	})

	t.Run("deletions", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		vm := newVM(t)

		key := types.ResourceKey(accountA, stdlib.CoinStoreTag)

		_, err := store.Commit(run(t, vm, store, types.VoidSessionID(), genesis(t)))
		require.NoError(t, err)

		_, err = store.Commit(run(t, vm, store, types.VoidSessionID(), vmext.WriteSetPayload{
			Writes: []vmext.WriteSetEntry{{Key: key}},
		}))
		require.NoError(t, err)

		value, err := store.Get(key)
		require.NoError(t, err)
		require.Nil(t, value)
	})

	t.Run("empty values exist", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		vm := newVM(t)

		key := unittest.ResourceKeyFixture()
		_, err := store.Commit(run(t, vm, store, types.VoidSessionID(), vmext.WriteSetPayload{
			Writes: []vmext.WriteSetEntry{{Key: key, Value: []byte{}}},
		}))
		require.NoError(t, err)

		value, err := store.Get(key)
		require.NoError(t, err)
		require.NotNil(t, value)
		require.Empty(t, value)
	})

	t.Run("materialize deltas", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		vm := newVM(t)

		_, err := store.Commit(run(t, vm, store, types.VoidSessionID(), genesis(t)))
		require.NoError(t, err)

		missing := types.NewAggregatorDeltaSet()
		require.NoError(t, missing.Add(stdlib.CoinSupplyAggregator, 1))
		require.NoError(t, missing.Add(unittest.AggregatorIDFixture(), 1))

		err = store.MaterializeDeltas(missing)
		require.ErrorIs(t, err, storage.ErrNotFound)

		underflow := types.NewAggregatorDeltaSet()
		require.NoError(t, underflow.Add(stdlib.CoinSupplyAggregator, -101))

		err = store.MaterializeDeltas(underflow)
		require.True(t, errors.IsAggregatorOverflowError(err))

		// failed materializations leave the value untouched
		value, err := store.Get(types.AggregatorKey(stdlib.CoinSupplyAggregator))
		require.NoError(t, err)
		require.Equal(t, types.EncodeAggregatorValue(100), value)
	})

	t.Run("snapshot reads", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		vm := newVM(t)

		key := types.ResourceKey(accountA, stdlib.CoinStoreTag)

		_, err := store.Commit(run(t, vm, store, types.VoidSessionID(), genesis(t)))
		require.NoError(t, err)

		snapshot, err := store.Snapshot()
		require.NoError(t, err)

		output := run(t, vm, snapshot, types.TxnSessionID(accountA, 0, unittest.SeedFixture()),
			vmext.EntryFunction{
				Module:   stdlib.CoinModule,
				Function: "transfer",
				Args:     stdlib.MustEncodeArgs(accountA, accountB, uint64(10)),
			})
		_, err = store.Commit(output)
		require.NoError(t, err)

		// the commit is visible to the store but not to the snapshot
		value, err := store.Get(key)
		require.NoError(t, err)
		require.Equal(t, coinStore(t, 90), value)

		value, err = snapshot.Get(key)
		require.NoError(t, err)
		require.Equal(t, coinStore(t, 100), value)

		value, err = snapshot.Get(types.ResourceKey(accountB, stdlib.CoinStoreTag))
		require.NoError(t, err)
		require.Nil(t, value)

		require.NoError(t, snapshot.Close())
	})

	t.Run("concurrent commits", func(t *testing.T) {
		store := newStore(t)
		defer store.Close()
		vm := newVM(t)

		const commits = 8
		sequences := make([]uint64, commits)

		var group errgroup.Group
		for i := 0; i < commits; i++ {
			i := i
			output := run(t, vm, store, types.VoidSessionID(), vmext.WriteSetPayload{
				Writes: []vmext.WriteSetEntry{
					{Key: unittest.ResourceKeyFixture(), Value: []byte{byte(i)}},
				},
			})
			group.Go(func() error {
				meta, err := store.Commit(output)
				sequences[i] = meta.Sequence
				return err
			})
		}
		require.NoError(t, group.Wait())

		slices.Sort(sequences)
		for i, sequence := range sequences {
			require.Equal(t, uint64(i+1), sequence)
		}
	})
}
