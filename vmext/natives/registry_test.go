package natives_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/natives"
)

func noop(natives.Runtime, []types.TypeTag, [][]byte) ([][]byte, error) {
	return nil, nil
}

func TestRegistry(t *testing.T) {
	coin := types.ModuleID{Address: types.FrameworkAddress, Name: "coin"}
	table := types.ModuleID{Address: types.FrameworkAddress, Name: "table"}

	t.Run("lookup", func(t *testing.T) {
		registry, err := natives.NewRegistry(
			natives.NativeFunction{Module: coin, Name: "transfer", Cost: 10, Fn: noop},
			natives.NativeFunction{Module: table, Name: "new", Cost: 1, Fn: noop},
		)
		require.NoError(t, err)
		require.Equal(t, 2, registry.Len())
		require.Equal(
			t,
			[]string{"0x1::coin::transfer", "0x1::table::new"},
			registry.Keys())

		native, ok := registry.Lookup(coin, "transfer")
		require.True(t, ok)
		require.Equal(t, uint64(10), native.Cost)

		_, ok = registry.Lookup(coin, "burn")
		require.False(t, ok)
	})

	t.Run("duplicate key", func(t *testing.T) {
		_, err := natives.NewRegistry(
			natives.NativeFunction{Module: coin, Name: "transfer", Fn: noop},
			natives.NativeFunction{Module: coin, Name: "transfer", Fn: noop},
		)
		require.True(t, errors.IsConfigurationError(err))
		require.True(t, errors.IsFailure(err))
	})

	t.Run("same name in different modules", func(t *testing.T) {
		_, err := natives.NewRegistry(
			natives.NativeFunction{Module: coin, Name: "new", Fn: noop},
			natives.NativeFunction{Module: table, Name: "new", Fn: noop},
		)
		require.NoError(t, err)
	})

	t.Run("missing implementation", func(t *testing.T) {
		_, err := natives.NewRegistry(
			natives.NativeFunction{Module: coin, Name: "transfer"},
		)
		require.True(t, errors.IsConfigurationError(err))
	})

	t.Run("nil registry", func(t *testing.T) {
		var registry *natives.Registry
		_, ok := registry.Lookup(coin, "transfer")
		require.False(t, ok)
		require.Equal(t, 0, registry.Len())
	})
}

func TestExtensions(t *testing.T) {
	counter := natives.ExtensionFunc{
		ExtensionName: "counter",
		New: func(id types.SessionID) interface{} {
			return &struct{ ID types.SessionID }{ID: id}
		},
	}

	t.Run("per session contexts", func(t *testing.T) {
		table, err := natives.NewExtensions(counter)
		require.NoError(t, err)
		require.Equal(t, []string{"counter"}, table.Names())

		first := table.NewSessionContexts(types.VoidSessionID())
		second := table.NewSessionContexts(types.VoidSessionID())
		require.Len(t, first, 1)
		require.NotSame(t, first["counter"], second["counter"])
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := natives.NewExtensions(counter, counter)
		require.True(t, errors.IsConfigurationError(err))
	})
}
