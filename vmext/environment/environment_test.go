package environment_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/utils/unittest"
	"github.com/onflow/flow-vmext/vmext/environment"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/natives"
	"github.com/onflow/flow-vmext/vmext/storage/state"
)

type abortFlag struct {
	reason string
}

func (flag *abortFlag) Aborted() (string, bool) {
	return flag.reason, flag.reason != ""
}

var testModule = types.ModuleID{Address: types.FrameworkAddress, Name: "test"}

func newEnvironment(
	t *testing.T,
	functions ...natives.NativeFunction,
) (
	*environment.Environment,
	*state.ExecutionState,
) {
	registry, err := natives.NewRegistry(functions...)
	require.NoError(t, err)

	params := environment.NewEnvironmentParams(
		types.VoidSessionID(),
		unittest.Logger(),
		registry,
		nil)

	txnState := state.NewExecutionState(nil, state.DefaultParameters())
	return environment.NewEnvironment(params, txnState, nil), txnState
}

func TestEnvironment_State(t *testing.T) {
	env, txnState := newEnvironment(t)

	owner := unittest.AddressFixture()
	tag := types.MustParseStructTag("0x1::test::Resource")

	value, err := env.GetResource(owner, tag)
	require.NoError(t, err)
	require.Nil(t, value)

	require.NoError(t, env.SetResource(owner, tag, []byte("r")))
	value, err = env.GetResource(owner, tag)
	require.NoError(t, err)
	require.Equal(t, []byte("r"), value)

	handle, err := env.NewTableHandle()
	require.NoError(t, err)
	require.NoError(t, env.SetTableItem(handle, []byte("k"), []byte("v")))
	require.NoError(t, env.DeleteResource(owner, tag))

	require.NoError(t, env.EmitEvent("0x1::test::Event", []byte("e")))
	require.NoError(t, env.AddToAggregator(unittest.AggregatorIDFixture(), 1))

	snapshot := txnState.Finalize()
	require.Len(t, snapshot.WriteSet, 2)
	require.Nil(t, snapshot.WriteSet[types.ResourceKey(owner, tag)])
	require.Equal(t, []byte("v"), snapshot.WriteSet[types.TableItemKey(handle, []byte("k"))])
	require.Len(t, snapshot.Events, 1)
	require.Equal(t, 1, snapshot.Deltas.Len())
	// one unit per host operation
	require.Equal(t, uint64(8), snapshot.ComputationUsed)
}

func TestEnvironment_SetResourceWithEmptyValue(t *testing.T) {
	env, txnState := newEnvironment(t)

	owner := unittest.AddressFixture()
	tag := types.MustParseStructTag("0x1::test::Marker")

	require.NoError(t, env.SetResource(owner, tag, nil))

	exists, err := txnState.Exists(types.ResourceKey(owner, tag))
	require.NoError(t, err)
	require.True(t, exists)
}

func TestEnvironment_CallNative(t *testing.T) {
	echo := natives.NativeFunction{
		Module: testModule,
		Name:   "echo",
		Cost:   5,
		Fn: func(
			rt natives.Runtime,
			_ []types.TypeTag,
			args [][]byte,
		) (
			[][]byte,
			error,
		) {
			return args, nil
		},
	}

	recurse := natives.NativeFunction{
		Module: testModule,
		Name:   "recurse",
		Fn: func(
			rt natives.Runtime,
			typeArgs []types.TypeTag,
			args [][]byte,
		) (
			[][]byte,
			error,
		) {
			return rt.CallNative(testModule, "recurse", typeArgs, args)
		},
	}

	t.Run("dispatch", func(t *testing.T) {
		env, _ := newEnvironment(t, echo)

		ret, err := env.CallNative(testModule, "echo", nil, [][]byte{[]byte("x")})
		require.NoError(t, err)
		require.Equal(t, [][]byte{[]byte("x")}, ret)
		require.Equal(t, uint64(5), env.ComputationUsed())
	})

	t.Run("unknown native", func(t *testing.T) {
		env, _ := newEnvironment(t, echo)

		_, err := env.CallNative(testModule, "missing", nil, nil)
		require.True(t, errors.IsLinkerError(err))
		require.False(t, errors.IsFailure(err))
	})

	t.Run("call depth", func(t *testing.T) {
		env, _ := newEnvironment(t, recurse)

		_, err := env.CallNative(testModule, "recurse", nil, nil)
		require.True(t, errors.IsRuntimeFaultError(err))
	})
}

func TestCancellableMeter(t *testing.T) {
	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		txnState := state.NewExecutionState(nil, state.DefaultParameters())
		meter := environment.NewCancellableMeter(ctx, nil, txnState)

		require.NoError(t, meter.MeterComputation(1))
		cancel()

		err := meter.MeterComputation(1)
		require.True(t, errors.IsExecutionCancelledError(err))
		require.Equal(t, uint64(1), meter.ComputationUsed())
	})

	t.Run("session aborted", func(t *testing.T) {
		flag := &abortFlag{}
		txnState := state.NewExecutionState(nil, state.DefaultParameters())
		meter := environment.NewCancellableMeter(context.Background(), flag, txnState)

		require.NoError(t, meter.MeterComputation(1))
		flag.reason = "operator request"

		err := meter.MeterComputation(1)
		require.True(t, errors.IsExecutionCancelledError(err))
		require.Contains(t, err.Error(), "operator request")
	})
}
