package vmext_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"pgregory.net/rapid"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/utils/unittest"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/errors"
	vmextmock "github.com/onflow/flow-vmext/vmext/mock"
	"github.com/onflow/flow-vmext/vmext/natives"
	"github.com/onflow/flow-vmext/vmext/resolver"
	"github.com/onflow/flow-vmext/vmext/stdlib"
)

var (
	accountA = types.MustParseAddress("0xa")
	accountB = types.MustParseAddress("0xb")
	accountC = types.MustParseAddress("0xc")

	testModule = types.ModuleID{Address: types.MustParseAddress("0xf00"), Name: "test"}
)

func coinStoreKey(address types.Address) types.StateKey {
	return types.ResourceKey(address, stdlib.CoinStoreTag)
}

func coinStore(t testing.TB, value uint64) []byte {
	data, err := types.Marshal(stdlib.CoinStore{Value: value})
	require.NoError(t, err)
	return data
}

func transfer(from, to types.Address, amount uint64) vmext.EntryFunction {
	return vmext.EntryFunction{
		Module:   stdlib.CoinModule,
		Function: "transfer",
		Args:     stdlib.MustEncodeArgs(from, to, amount),
	}
}

func txnID() types.SessionID {
	return types.TxnSessionID(unittest.AddressFixture(), 0, unittest.SeedFixture())
}

func fundedResolver(t testing.TB) resolver.StateResolver {
	return resolver.NewSnapshotResolver(resolver.MapStorageSnapshot{
		coinStoreKey(accountA): coinStore(t, 100),
	})
}

func execute(
	t *testing.T,
	session *vmext.Session,
	req vmext.Request,
) vmext.ExecutionResult {
	result, err := session.Execute(context.Background(), req)
	require.NoError(t, err)
	return result
}

func TestSession_Transfer(t *testing.T) {
	vm := newVM(t)
	session := vm.NewSession(fundedResolver(t), txnID())

	result := execute(t, session, transfer(accountA, accountB, 10))
	require.True(t, result.Status.IsSuccess(), result.Status.String())
	require.Greater(t, result.ComputationUsed, uint64(0))

	output, err := session.Finish()
	require.NoError(t, err)
	require.True(t, output.Status().IsSuccess())

	changes := output.ChangeSet()
	require.Equal(t, 2, changes.Len())

	op, ok := changes.Get(coinStoreKey(accountA))
	require.True(t, ok)
	require.Equal(t, types.Modification(coinStore(t, 90)), op)

	op, ok = changes.Get(coinStoreKey(accountB))
	require.True(t, ok)
	require.Equal(t, types.Creation(coinStore(t, 10)), op)

	events := output.Events()
	require.Len(t, events, 1)
	require.Equal(t, stdlib.TransferEventType, events[0].Type)
	require.Equal(t, uint32(0), events[0].Index)

	var event stdlib.TransferEvent
	require.NoError(t, types.Unmarshal(events[0].Payload, &event))
	require.Equal(t, stdlib.TransferEvent{From: accountA, To: accountB, Amount: 10}, event)

	require.True(t, output.AggregatorDeltas().IsEmpty())
	require.Contains(t, output.ReadSet(), coinStoreKey(accountA))
}

func TestSession_MissingData(t *testing.T) {
	vm := newVM(t)
	session := vm.NewSession(fundedResolver(t), txnID())

	result := execute(t, session, transfer(accountC, accountB, 1))
	require.Equal(t, vmext.StatusAborted, result.Status.Kind)
	require.Equal(t, errors.ErrCodeMissingDataError, result.Status.Code)
	require.Equal(t, vmext.KeepEffects, result.Status.Policy)

	output, err := session.Finish()
	require.NoError(t, err)
	require.Equal(t, vmext.StatusAborted, output.Status().Kind)
	require.Equal(t, errors.ErrCodeMissingDataError, output.Status().Code)
	require.True(t, output.ChangeSet().IsEmpty())
	require.Empty(t, output.Events())
}

func TestSession_AbortedCallKeepsEarlierEffects(t *testing.T) {
	vm := newVM(t)
	session := vm.NewSession(fundedResolver(t), txnID())

	execute(t, session, transfer(accountA, accountB, 10))

	result := execute(t, session, transfer(accountB, accountC, 11))
	require.Equal(t, errors.ErrCodeNativeAbortError, result.Status.Code)

	result = execute(t, session, transfer(accountB, accountC, 5))
	require.True(t, result.Status.IsSuccess())

	output, err := session.Finish()
	require.NoError(t, err)

	// the first call which did not succeed determines the status
	require.Equal(t, vmext.StatusAborted, output.Status().Kind)
	require.Equal(t, errors.ErrCodeNativeAbortError, output.Status().Code)

	changes := output.ChangeSet()
	require.Equal(t, 3, changes.Len())
	op, _ := changes.Get(coinStoreKey(accountB))
	require.Equal(t, types.Creation(coinStore(t, 5)), op)
	op, _ = changes.Get(coinStoreKey(accountC))
	require.Equal(t, types.Creation(coinStore(t, 5)), op)
	require.Len(t, output.Events(), 2)
	require.Equal(t, uint32(1), output.Events()[1].Index)
}

func TestSession_DeferredAggregator(t *testing.T) {
	id := unittest.AggregatorIDFixture()

	add := func(delta int64) vmext.EntryFunction {
		return vmext.EntryFunction{
			Module:   stdlib.AggregatorModule,
			Function: "add",
			Args:     stdlib.MustEncodeArgs(types.Address(id), delta),
		}
	}

	vm := newVM(t)
	session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

	require.True(t, execute(t, session, add(5)).Status.IsSuccess())
	require.True(t, execute(t, session, add(-2)).Status.IsSuccess())

	output, err := session.Finish()
	require.NoError(t, err)
	require.True(t, output.ChangeSet().IsEmpty())

	deltas := output.AggregatorDeltas()
	require.Equal(t, 1, deltas.Len())
	delta, ok := deltas.Get(id)
	require.True(t, ok)
	require.Equal(t, int64(3), delta)
}

func TestSession_ZeroNetDeltaIsKept(t *testing.T) {
	id := unittest.AggregatorIDFixture()

	vm := newVM(t)
	session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

	for _, delta := range []int64{4, -4} {
		execute(t, session, vmext.EntryFunction{
			Module:   stdlib.AggregatorModule,
			Function: "add",
			Args:     stdlib.MustEncodeArgs(types.Address(id), delta),
		})
	}

	output, err := session.Finish()
	require.NoError(t, err)
	delta, ok := output.AggregatorDeltas().Get(id)
	require.True(t, ok)
	require.Equal(t, int64(0), delta)
}

func TestSession_SingleUseFinish(t *testing.T) {
	vm := newVM(t)
	session := vm.NewSession(fundedResolver(t), txnID())

	execute(t, session, transfer(accountA, accountB, 10))

	output, err := session.Finish()
	require.NoError(t, err)
	require.NotNil(t, output)

	output, err = session.Finish()
	require.Nil(t, output)
	require.True(t, errors.IsInvalidStateError(err))

	_, err = session.Execute(context.Background(), transfer(accountA, accountB, 1))
	require.True(t, errors.IsInvalidStateError(err))
	require.True(t, errors.IsFailure(err))
}

func TestSession_FinishWithoutCalls(t *testing.T) {
	vm := newVM(t)
	session := vm.NewSession(fundedResolver(t), types.VoidSessionID())

	output, err := session.Finish()
	require.NoError(t, err)
	require.True(t, output.Status().IsSuccess())
	require.True(t, output.IsEmpty())
	require.Equal(t, types.VoidSessionID(), output.SessionID())
}

func TestSession_Isolation(t *testing.T) {
	vm := newVM(t)
	base := resolver.MapStorageSnapshot{
		coinStoreKey(accountA): coinStore(t, 100),
	}
	shared := resolver.NewSnapshotResolver(base)

	const sessions = 8
	outputs := make([]*vmext.SessionOutput, sessions)

	var group errgroup.Group
	for i := 0; i < sessions; i++ {
		i := i
		group.Go(func() error {
			session := vm.NewSession(shared, txnID())
			recipient := types.BytesToAddress([]byte{byte(0x10 + i)})

			result, err := session.Execute(
				context.Background(),
				transfer(accountA, recipient, uint64(i+1)))
			if err != nil {
				return err
			}
			if !result.Status.IsSuccess() {
				return fmt.Errorf("session %d: %s", i, result.Status)
			}

			outputs[i], err = session.Finish()
			return err
		})
	}
	require.NoError(t, group.Wait())

	for i, output := range outputs {
		op, ok := output.ChangeSet().Get(coinStoreKey(accountA))
		require.True(t, ok)
		// every session sees the untouched base balance
		require.Equal(t, types.Modification(coinStore(t, 100-uint64(i+1))), op)
		require.Equal(t, 2, output.ChangeSet().Len())
	}

	// the resolver's state is never written
	require.Equal(t, coinStore(t, 100), base[coinStoreKey(accountA)])
	require.Len(t, base, 1)
}

func TestSession_Determinism(t *testing.T) {
	vm := newVM(t)
	id := txnID()

	run := func(t *testing.T) *vmext.SessionOutput {
		session := vm.NewSession(fundedResolver(t), id)
		execute(t, session, transfer(accountA, accountB, 10))
		execute(t, session, transfer(accountA, accountC, 20))
		execute(t, session, vmext.EntryFunction{
			Module:   stdlib.TableModule,
			Function: "new",
		})
		execute(t, session, vmext.EntryFunction{
			Module:   stdlib.RandomnessModule,
			Function: "u64",
		})
		output, err := session.Finish()
		require.NoError(t, err)
		return output
	}

	first := run(t)
	second := run(t)

	firstBytes, err := first.ChangeSet().Encode()
	require.NoError(t, err)
	secondBytes, err := second.ChangeSet().Encode()
	require.NoError(t, err)
	require.Equal(t, firstBytes, secondBytes)

	if diff := cmp.Diff(first.Events(), second.Events()); diff != "" {
		t.Fatalf("events differ (-first +second):\n%s", diff)
	}
}

func TestSession_DeterminismProperty(t *testing.T) {
	vm := newVM(t)
	accounts := []types.Address{accountA, accountB, accountC}
	base := resolver.MapStorageSnapshot{
		coinStoreKey(accountA): coinStore(t, 100),
	}

	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 20).Draw(t, "calls")

		requests := make([]vmext.Request, 0, n)
		for i := 0; i < n; i++ {
			from := accounts[rapid.IntRange(0, 2).Draw(t, "from")]
			to := accounts[rapid.IntRange(0, 2).Draw(t, "to")]
			amount := rapid.Uint64Range(0, 60).Draw(t, "amount")

			if rapid.Bool().Draw(t, "mint") {
				requests = append(requests, vmext.EntryFunction{
					Module:   stdlib.CoinModule,
					Function: "mint",
					Args:     stdlib.MustEncodeArgs(to, amount),
				})
				continue
			}
			requests = append(requests, transfer(from, to, amount))
		}

		run := func() ([]byte, types.EventLog, vmext.Status) {
			session := vm.NewSession(resolver.NewSnapshotResolver(base), types.VoidSessionID())
			for _, req := range requests {
				_, err := session.Execute(context.Background(), req)
				require.NoError(t, err)
			}
			output, err := session.Finish()
			require.NoError(t, err)

			encoded, err := output.ChangeSet().Encode()
			require.NoError(t, err)
			return encoded, output.Events(), output.Status()
		}

		firstBytes, firstEvents, firstStatus := run()
		secondBytes, secondEvents, secondStatus := run()

		require.Equal(t, firstBytes, secondBytes)
		require.Equal(t, firstEvents, secondEvents)
		require.Equal(t, firstStatus, secondStatus)
	})
}

func TestSession_FatalFailureDiscardsEverything(t *testing.T) {
	unavailable := coinStoreKey(accountC)

	storage := resolver.StorageSnapshotFunc(func(key types.StateKey) ([]byte, error) {
		switch key {
		case coinStoreKey(accountA):
			return coinStore(t, 100), nil
		case unavailable:
			return nil, fmt.Errorf("storage node unreachable")
		default:
			return nil, nil
		}
	})

	vm := newVM(t)
	session := vm.NewSession(resolver.NewSnapshotResolver(storage), txnID())

	result := execute(t, session, transfer(accountA, accountB, 10))
	require.True(t, result.Status.IsSuccess())

	result, err := session.Execute(context.Background(), transfer(accountA, accountC, 10))
	require.Error(t, err)
	require.True(t, errors.IsFailure(err))
	require.True(t, errors.IsResolverUnavailableFailure(err))
	require.Equal(t, vmext.StatusFailed, result.Status.Kind)

	// a failed session accepts no further calls
	_, err = session.Execute(context.Background(), transfer(accountA, accountB, 1))
	require.True(t, errors.IsInvalidStateError(err))

	output, err := session.Finish()
	require.NoError(t, err)
	require.Equal(t, vmext.StatusFailed, output.Status().Kind)
	require.Equal(t, vmext.DiscardAll, output.Status().Policy)
	require.Equal(t, errors.FailureCodeResolverUnavailableFailure, output.Status().Code)
	require.True(t, output.ChangeSet().IsEmpty())
	require.Empty(t, output.Events())
	require.True(t, output.AggregatorDeltas().IsEmpty())
}

func TestSession_NativePanicIsFatal(t *testing.T) {
	panicking := natives.NativeFunction{
		Module: testModule,
		Name:   "panic",
		Fn: func(natives.Runtime, []types.TypeTag, [][]byte) ([][]byte, error) {
			panic("boom")
		},
	}

	vm := newVM(t, vmext.WithNatives(panicking))
	session := vm.NewSession(fundedResolver(t), txnID())

	_, err := session.Execute(context.Background(), vmext.EntryFunction{
		Module:   testModule,
		Function: "panic",
	})
	require.True(t, errors.IsFailure(err))
	require.Contains(t, err.Error(), "boom")

	output, err := session.Finish()
	require.NoError(t, err)
	require.Equal(t, vmext.StatusFailed, output.Status().Kind)
}

func TestSession_CreateThenDelete(t *testing.T) {
	key := []byte("k")

	vm := newVM(t)
	session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

	result := execute(t, session, vmext.EntryFunction{Module: stdlib.TableModule, Function: "new"})
	var handle types.Address
	require.NoError(t, types.Unmarshal(result.ReturnValues[0], &handle))

	execute(t, session, vmext.EntryFunction{
		Module:   stdlib.TableModule,
		Function: "add",
		Args:     stdlib.MustEncodeArgs(handle, key, []byte("v")),
	})
	execute(t, session, vmext.EntryFunction{
		Module:   stdlib.TableModule,
		Function: "remove",
		Args:     stdlib.MustEncodeArgs(handle, key),
	})

	output, err := session.Finish()
	require.NoError(t, err)
	require.True(t, output.ChangeSet().IsEmpty())
}

func TestSession_DeleteExisting(t *testing.T) {
	handle := unittest.TableHandleFixture()
	key := []byte("k")
	itemKey := types.TableItemKey(handle, key)

	vm := newVM(t)
	session := vm.NewSession(
		resolver.NewSnapshotResolver(resolver.MapStorageSnapshot{
			itemKey: []byte("v"),
		}),
		txnID())

	result := execute(t, session, vmext.EntryFunction{
		Module:   stdlib.TableModule,
		Function: "remove",
		Args:     stdlib.MustEncodeArgs(types.Address(handle), key),
	})
	require.True(t, result.Status.IsSuccess())

	output, err := session.Finish()
	require.NoError(t, err)
	op, ok := output.ChangeSet().Get(itemKey)
	require.True(t, ok)
	require.Equal(t, types.Deletion(), op)
}

func TestSession_Abort(t *testing.T) {
	t.Run("abort before execute", func(t *testing.T) {
		vm := newVM(t)
		session := vm.NewSession(fundedResolver(t), txnID())

		execute(t, session, transfer(accountA, accountB, 10))
		session.Abort("shutting down")

		result := execute(t, session, transfer(accountA, accountB, 10))
		require.Equal(t, errors.ErrCodeExecutionCancelledError, result.Status.Code)

		output, err := session.Finish()
		require.NoError(t, err)
		require.Equal(t, vmext.StatusAborted, output.Status().Kind)
		require.Equal(t, vmext.KeepEffects, output.Status().Policy)
		require.Contains(t, output.Status().Message, "shutting down")

		op, ok := output.ChangeSet().Get(coinStoreKey(accountA))
		require.True(t, ok)
		require.Equal(t, types.Modification(coinStore(t, 90)), op)
	})

	t.Run("abort in flight", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})

		blocking := natives.NativeFunction{
			Module: testModule,
			Name:   "block",
			Fn: func(rt natives.Runtime, _ []types.TypeTag, _ [][]byte) ([][]byte, error) {
				err := rt.SetResource(accountC, stdlib.CoinStoreTag, []byte{1})
				if err != nil {
					return nil, err
				}
				close(started)
				<-release
				return nil, rt.MeterComputation(1)
			},
		}

		vm := newVM(t, vmext.WithNatives(blocking))
		session := vm.NewSession(fundedResolver(t), txnID())

		execute(t, session, transfer(accountA, accountB, 10))

		done := make(chan vmext.ExecutionResult, 1)
		errs := make(chan error, 1)
		go func() {
			result, err := session.Execute(context.Background(), vmext.EntryFunction{
				Module:   testModule,
				Function: "block",
			})
			errs <- err
			done <- result
		}()

		<-started
		session.Abort("")
		close(release)

		var result vmext.ExecutionResult
		var err error
		unittest.RequireReturnsBefore(t, func() {
			err = <-errs
			result = <-done
		}, 5*time.Second)
		require.NoError(t, err)
		require.Equal(t, errors.ErrCodeExecutionCancelledError, result.Status.Code)

		output, err := session.Finish()
		require.NoError(t, err)
		require.Equal(t, vmext.StatusAborted, output.Status().Kind)

		_, ok := output.ChangeSet().Get(coinStoreKey(accountC))
		require.False(t, ok)
		_, ok = output.ChangeSet().Get(coinStoreKey(accountB))
		require.True(t, ok)
	})

	t.Run("abort without calls", func(t *testing.T) {
		vm := newVM(t)
		session := vm.NewSession(fundedResolver(t), txnID())
		session.Abort("never mind")

		output, err := session.Finish()
		require.NoError(t, err)
		require.Equal(t, vmext.StatusAborted, output.Status().Kind)
		require.Equal(t, errors.ErrCodeExecutionCancelledError, output.Status().Code)
		require.True(t, output.IsEmpty())
	})
}

func TestSession_ContextCancelled(t *testing.T) {
	vm := newVM(t)
	session := vm.NewSession(fundedResolver(t), txnID())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := session.Execute(ctx, transfer(accountA, accountB, 10))
	require.NoError(t, err)
	require.Equal(t, errors.ErrCodeExecutionCancelledError, result.Status.Code)
}

func TestSession_Limits(t *testing.T) {
	vm := newVM(t, vmext.WithLimits(vmext.Limits{MaxComputation: 20}))
	session := vm.NewSession(fundedResolver(t), txnID())

	result := execute(t, session, transfer(accountA, accountB, 10))
	require.Equal(t, errors.ErrCodeComputationLimitExceededError, result.Status.Code)

	output, err := session.Finish()
	require.NoError(t, err)
	require.True(t, output.ChangeSet().IsEmpty())
}

func TestSession_Extensions(t *testing.T) {
	type counter struct {
		calls int
	}

	ext := natives.ExtensionFunc{
		ExtensionName: "counter",
		New: func(types.SessionID) interface{} {
			return &counter{}
		},
	}

	count := natives.NativeFunction{
		Module: testModule,
		Name:   "count",
		Fn: func(rt natives.Runtime, _ []types.TypeTag, _ [][]byte) ([][]byte, error) {
			value, ok := rt.Extension("counter")
			if !ok {
				return nil, fmt.Errorf("extension not found")
			}
			c := value.(*counter)
			c.calls++
			return stdlib.EncodeArgs(uint64(c.calls))
		},
	}

	vm := newVM(t, vmext.WithNatives(count), vmext.WithExtensions(ext))

	req := vmext.EntryFunction{Module: testModule, Function: "count"}

	first := vm.NewSession(fundedResolver(t), txnID())
	execute(t, first, req)
	result := execute(t, first, req)
	require.Equal(t, stdlib.MustEncodeArgs(uint64(2)), result.ReturnValues)

	// a new session gets a new context
	second := vm.NewSession(fundedResolver(t), txnID())
	result = execute(t, second, req)
	require.Equal(t, stdlib.MustEncodeArgs(uint64(1)), result.ReturnValues)
}

func TestSession_Interpreter(t *testing.T) {
	code := []byte{0xde, 0xad}

	t.Run("entry function of a published module", func(t *testing.T) {
		interpreter := vmextmock.NewInterpreter(t)
		interpreter.
			On("InvokeFunction", mock.Anything, testModule, code, "run", []types.TypeTag(nil), [][]byte(nil)).
			Return([][]byte{[]byte("ok")}, nil).
			Once()

		vm := newVM(t, vmext.WithInterpreter(interpreter))
		session := vm.NewSession(
			resolver.NewSnapshotResolver(resolver.MapStorageSnapshot{
				types.ModuleKey(testModule.Address, testModule.Name): code,
			}),
			txnID())

		result := execute(t, session, vmext.EntryFunction{Module: testModule, Function: "run"})
		require.True(t, result.Status.IsSuccess())
		require.Equal(t, [][]byte{[]byte("ok")}, result.ReturnValues)
	})

	t.Run("unpublished module", func(t *testing.T) {
		vm := newVM(t, vmext.WithInterpreter(vmextmock.NewInterpreter(t)))
		session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

		result := execute(t, session, vmext.EntryFunction{Module: testModule, Function: "run"})
		require.Equal(t, errors.ErrCodeLinkerError, result.Status.Code)
	})

	t.Run("interpreter errors are runtime faults", func(t *testing.T) {
		interpreter := vmextmock.NewInterpreter(t)
		interpreter.
			On("ExecuteScript", mock.Anything, code, mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("arithmetic error")).
			Once()

		vm := newVM(t, vmext.WithInterpreter(interpreter))
		session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

		result := execute(t, session, vmext.Script{Code: code})
		require.Equal(t, errors.ErrCodeRuntimeFaultError, result.Status.Code)
	})

	t.Run("script without interpreter", func(t *testing.T) {
		vm := newVM(t)
		session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

		result := execute(t, session, vmext.Script{Code: code})
		require.Equal(t, errors.ErrCodeOperationNotSupportedError, result.Status.Code)
	})

	t.Run("publish then call in the same session", func(t *testing.T) {
		interpreter := vmextmock.NewInterpreter(t)
		interpreter.
			On("VerifyModule", testModule, code).
			Return(nil).
			Once()
		interpreter.
			On("InvokeFunction", mock.Anything, testModule, code, "run", mock.Anything, mock.Anything).
			Return(nil, nil).
			Once()

		vm := newVM(t, vmext.WithInterpreter(interpreter))
		session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

		result := execute(t, session, vmext.ModuleBundle{
			Sender:  testModule.Address,
			Modules: []vmext.Module{{Name: testModule.Name, Code: code}},
		})
		require.True(t, result.Status.IsSuccess())

		result = execute(t, session, vmext.EntryFunction{Module: testModule, Function: "run"})
		require.True(t, result.Status.IsSuccess())

		output, err := session.Finish()
		require.NoError(t, err)
		op, ok := output.ChangeSet().Get(types.ModuleKey(testModule.Address, testModule.Name))
		require.True(t, ok)
		require.Equal(t, types.Creation(code), op)
	})

	t.Run("module verification failure", func(t *testing.T) {
		interpreter := vmextmock.NewInterpreter(t)
		interpreter.
			On("VerifyModule", testModule, code).
			Return(fmt.Errorf("invalid bytecode")).
			Once()

		vm := newVM(t, vmext.WithInterpreter(interpreter))
		session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

		result := execute(t, session, vmext.ModuleBundle{
			Sender:  testModule.Address,
			Modules: []vmext.Module{{Name: testModule.Name, Code: code}},
		})
		require.Equal(t, errors.ErrCodeModuleVerificationError, result.Status.Code)
	})
}

func TestSession_ModuleBundleValidation(t *testing.T) {
	vm := newVM(t)
	session := vm.NewSession(resolver.NewSnapshotResolver(nil), txnID())

	for _, bundle := range []vmext.ModuleBundle{
		{Sender: accountA},
		{Sender: accountA, Modules: []vmext.Module{{Name: "m"}}},
		{Sender: accountA, Modules: []vmext.Module{{Code: []byte{1}}}},
		{Sender: accountA, Modules: []vmext.Module{
			{Name: "m", Code: []byte{1}},
			{Name: "m", Code: []byte{2}},
		}},
	} {
		result := execute(t, session, bundle)
		require.Equal(t, errors.ErrCodeInvalidModuleBundleError, result.Status.Code, bundle.String())
	}

	output, err := session.Finish()
	require.NoError(t, err)
	require.True(t, output.ChangeSet().IsEmpty())
}

func TestSession_WriteSetPayload(t *testing.T) {
	supply := stdlib.CoinSupplyAggregator

	vm := newVM(t)
	session := vm.NewSession(resolver.NewSnapshotResolver(nil), types.GenesisSessionID(unittest.SeedFixture()))

	result := execute(t, session, vmext.WriteSetPayload{
		Writes: []vmext.WriteSetEntry{
			{Key: coinStoreKey(accountA), Value: coinStore(t, 100)},
			{Key: types.AggregatorKey(supply), Value: types.EncodeAggregatorValue(100)},
		},
		Events: []types.Event{
			{Type: "0x1::genesis::GenesisEvent", Payload: []byte("g")},
		},
	})
	require.True(t, result.Status.IsSuccess(), result.Status.String())

	result = execute(t, session, vmext.EntryFunction{
		Module:   stdlib.CoinModule,
		Function: "mint",
		Args:     stdlib.MustEncodeArgs(accountB, uint64(5)),
	})
	require.True(t, result.Status.IsSuccess(), result.Status.String())

	result = execute(t, session, vmext.EntryFunction{
		Module:   stdlib.AggregatorModule,
		Function: "read",
		Args:     stdlib.MustEncodeArgs(types.Address(supply)),
	})
	require.True(t, result.Status.IsSuccess(), result.Status.String())

	var total uint64
	require.NoError(t, types.Unmarshal(result.ReturnValues[0], &total))
	require.Equal(t, uint64(105), total)

	output, err := session.Finish()
	require.NoError(t, err)

	changes := output.ChangeSet()
	require.Equal(t, 3, changes.Len())
	op, ok := changes.Get(types.AggregatorKey(supply))
	require.True(t, ok)
	require.Equal(t, types.Creation(types.EncodeAggregatorValue(100)), op)

	delta, ok := output.AggregatorDeltas().Get(supply)
	require.True(t, ok)
	require.Equal(t, int64(5), delta)

	events := output.Events()
	require.Len(t, events, 2)
	require.Equal(t, types.TypeTag("0x1::genesis::GenesisEvent"), events[0].Type)
	require.Equal(t, stdlib.MintEventType, events[1].Type)
}

func TestSession_ChainedOverUncommittedOutput(t *testing.T) {
	supply := stdlib.CoinSupplyAggregator
	base := resolver.NewSnapshotResolver(nil)

	vm := newVM(t)
	genesis := vm.NewSession(base, types.GenesisSessionID(unittest.SeedFixture()))

	result := execute(t, genesis, vmext.WriteSetPayload{
		Writes: []vmext.WriteSetEntry{
			{Key: coinStoreKey(accountA), Value: coinStore(t, 500)},
			{Key: types.AggregatorKey(supply), Value: types.EncodeAggregatorValue(500)},
		},
	})
	require.True(t, result.Status.IsSuccess(), result.Status.String())

	result = execute(t, genesis, vmext.EntryFunction{
		Module:   stdlib.CoinModule,
		Function: "mint",
		Args:     stdlib.MustEncodeArgs(accountB, uint64(5)),
	})
	require.True(t, result.Status.IsSuccess(), result.Status.String())

	first, err := genesis.Finish()
	require.NoError(t, err)

	next := vm.NewSession(
		resolver.NewDeltaResolver(
			resolver.NewOverlayResolver(base, first.ChangeSet()),
			first.AggregatorDeltas()),
		txnID())

	result = execute(t, next, vmext.EntryFunction{
		Module:   stdlib.AggregatorModule,
		Function: "read",
		Args:     stdlib.MustEncodeArgs(types.Address(supply)),
	})
	require.True(t, result.Status.IsSuccess(), result.Status.String())

	var total uint64
	require.NoError(t, types.Unmarshal(result.ReturnValues[0], &total))
	require.Equal(t, uint64(505), total)

	result = execute(t, next, transfer(accountA, accountC, 20))
	require.True(t, result.Status.IsSuccess(), result.Status.String())

	second, err := next.Finish()
	require.NoError(t, err)

	op, ok := second.ChangeSet().Get(coinStoreKey(accountA))
	require.True(t, ok)
	require.Equal(t, types.Modification(coinStore(t, 480)), op)
}
