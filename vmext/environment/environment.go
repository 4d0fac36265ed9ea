package environment

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/natives"
	"github.com/onflow/flow-vmext/vmext/storage/state"
)

// MaxCallDepth bounds native to native calls.
const MaxCallDepth = 64

// Every host operation is a metering point charged this many units.
const hostOperationCost uint64 = 1

// EnvironmentParams are shared by every execute call of a session.
type EnvironmentParams struct {
	SessionID types.SessionID
	Logger    zerolog.Logger

	Natives    *natives.Registry
	Extensions map[string]interface{}

	RandomGenerator RandomGenerator
	AddressDeriver  *AddressDeriver
}

// NewEnvironmentParams builds the session scoped environment.
func NewEnvironmentParams(
	id types.SessionID,
	logger zerolog.Logger,
	registry *natives.Registry,
	extensions *natives.Extensions,
) EnvironmentParams {
	return EnvironmentParams{
		SessionID:       id,
		Logger:          logger,
		Natives:         registry,
		Extensions:      extensions.NewSessionContexts(id),
		RandomGenerator: NewRandomGenerator(id),
		AddressDeriver:  NewAddressDeriver(id),
	}
}

// Environment is the Runtime of one execute call.  All state access goes to
// the call's own execution state.
type Environment struct {
	params EnvironmentParams

	txnState *state.ExecutionState
	meter    Meter

	depth int
}

var _ natives.Runtime = (*Environment)(nil)

func NewEnvironment(
	params EnvironmentParams,
	txnState *state.ExecutionState,
	meter Meter,
) *Environment {
	if meter == nil {
		meter = NewMeter(txnState)
	}
	return &Environment{
		params:   params,
		txnState: txnState,
		meter:    meter,
	}
}

func (env *Environment) SessionID() types.SessionID {
	return env.params.SessionID
}

func (env *Environment) Logger() zerolog.Logger {
	return env.params.Logger
}

func (env *Environment) MeterComputation(units uint64) error {
	return env.meter.MeterComputation(units)
}

func (env *Environment) ComputationUsed() uint64 {
	return env.meter.ComputationUsed()
}

func (env *Environment) get(key types.StateKey) ([]byte, error) {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return nil, err
	}
	return env.txnState.Get(key)
}

func (env *Environment) set(key types.StateKey, value []byte) error {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}
	return env.txnState.Set(key, value)
}

func (env *Environment) delete(key types.StateKey) error {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return err
	}
	return env.txnState.Delete(key)
}

func (env *Environment) GetResource(
	address types.Address,
	tag types.StructTag,
) (
	[]byte,
	error,
) {
	return env.get(types.ResourceKey(address, tag))
}

func (env *Environment) SetResource(
	address types.Address,
	tag types.StructTag,
	value []byte,
) error {
	return env.set(types.ResourceKey(address, tag), value)
}

func (env *Environment) DeleteResource(
	address types.Address,
	tag types.StructTag,
) error {
	return env.delete(types.ResourceKey(address, tag))
}

func (env *Environment) GetModule(
	address types.Address,
	name string,
) (
	[]byte,
	error,
) {
	return env.get(types.ModuleKey(address, name))
}

// SetModule publishes module code under the address.
func (env *Environment) SetModule(
	address types.Address,
	name string,
	code []byte,
) error {
	return env.set(types.ModuleKey(address, name), code)
}

func (env *Environment) NewTableHandle() (types.TableHandle, error) {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return types.TableHandle{}, err
	}
	return env.params.AddressDeriver.NextTableHandle(), nil
}

func (env *Environment) GetTableItem(
	handle types.TableHandle,
	key []byte,
) (
	[]byte,
	error,
) {
	return env.get(types.TableItemKey(handle, key))
}

func (env *Environment) SetTableItem(
	handle types.TableHandle,
	key []byte,
	value []byte,
) error {
	return env.set(types.TableItemKey(handle, key), value)
}

func (env *Environment) DeleteTableItem(
	handle types.TableHandle,
	key []byte,
) error {
	return env.delete(types.TableItemKey(handle, key))
}

// SetValue writes a raw state key.  A nil value deletes the key.
func (env *Environment) SetValue(key types.StateKey, value []byte) error {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return err
	}
	return env.txnState.Set(key, value)
}

// InitializeAggregator creates an aggregator.  It is not part of the
// native Runtime; only direct write sets create aggregators.
func (env *Environment) InitializeAggregator(
	id types.AggregatorID,
	value uint64,
) error {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return err
	}
	return env.txnState.InitializeAggregator(id, value)
}

func (env *Environment) AddToAggregator(
	id types.AggregatorID,
	delta int64,
) error {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return err
	}
	return env.txnState.AddDelta(id, delta)
}

func (env *Environment) ReadAggregator(id types.AggregatorID) (uint64, error) {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return 0, err
	}
	return env.txnState.ReadAggregator(id)
}

func (env *Environment) EmitEvent(
	eventType types.TypeTag,
	payload []byte,
) error {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return err
	}
	return env.txnState.EmitEvent(eventType, payload)
}

func (env *Environment) Random() (uint64, error) {
	err := env.meter.MeterComputation(hostOperationCost)
	if err != nil {
		return 0, err
	}

	value, err := env.params.RandomGenerator.Random()
	if err != nil {
		return 0, errors.NewUnknownFailure(err)
	}
	return value, nil
}

func (env *Environment) DeriveAddress(salt []byte) types.Address {
	return env.params.AddressDeriver.DeriveAddress(salt)
}

func (env *Environment) Extension(name string) (interface{}, bool) {
	ext, ok := env.params.Extensions[name]
	return ext, ok
}

func (env *Environment) HasNative(module types.ModuleID, function string) bool {
	_, ok := env.params.Natives.Lookup(module, function)
	return ok
}

// CallNative dispatches to the native registered under
// module::function.  The native's cost is charged before it runs.
func (env *Environment) CallNative(
	module types.ModuleID,
	function string,
	typeArgs []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	native, ok := env.params.Natives.Lookup(module, function)
	if !ok {
		return nil, errors.NewLinkerErrorf(
			module,
			"no native function %s",
			function)
	}

	if env.depth >= MaxCallDepth {
		return nil, errors.NewRuntimeFaultError(
			fmt.Errorf(
				"call depth exceeds %d at %s",
				MaxCallDepth,
				native.Key()))
	}

	err := env.meter.MeterComputation(native.Cost)
	if err != nil {
		return nil, err
	}

	env.depth++
	defer func() { env.depth-- }()

	return native.Fn(env, typeArgs, args)
}
