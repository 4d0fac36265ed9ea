package natives

import (
	"github.com/rs/zerolog"

	"github.com/onflow/flow-vmext/model/types"
)

// Runtime is the host interface a native function runs against.  Every
// state access is staged in the effect set of the current execute call.
type Runtime interface {
	SessionID() types.SessionID
	Logger() zerolog.Logger

	GetResource(address types.Address, tag types.StructTag) ([]byte, error)
	SetResource(address types.Address, tag types.StructTag, value []byte) error
	DeleteResource(address types.Address, tag types.StructTag) error

	GetModule(address types.Address, name string) ([]byte, error)

	// NewTableHandle derives a fresh table handle from the session id.
	NewTableHandle() (types.TableHandle, error)
	GetTableItem(handle types.TableHandle, key []byte) ([]byte, error)
	SetTableItem(handle types.TableHandle, key []byte, value []byte) error
	DeleteTableItem(handle types.TableHandle, key []byte) error

	// AddToAggregator records a delta without reading the aggregator.
	AddToAggregator(id types.AggregatorID, delta int64) error
	// ReadAggregator resolves the aggregator's current value.
	ReadAggregator(id types.AggregatorID) (uint64, error)

	EmitEvent(eventType types.TypeTag, payload []byte) error

	MeterComputation(units uint64) error

	// Random returns the next value of the session's deterministic PRG.
	Random() (uint64, error)
	// DeriveAddress derives an address from the session id and the salt.
	DeriveAddress(salt []byte) types.Address

	// Extension returns the session context of the named extension.
	Extension(name string) (interface{}, bool)

	CallNative(
		module types.ModuleID,
		function string,
		typeArgs []types.TypeTag,
		args [][]byte,
	) (
		[][]byte,
		error,
	)
}
