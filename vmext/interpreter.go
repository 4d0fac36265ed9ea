package vmext

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/natives"
)

// Interpreter runs bytecode.  The interpreter reaches state and natives only
// through the Runtime it is handed.  Errors which are not coded errors are
// reported as runtime faults.
type Interpreter interface {
	InvokeFunction(
		rt natives.Runtime,
		module types.ModuleID,
		code []byte,
		function string,
		typeArgs []types.TypeTag,
		args [][]byte,
	) (
		[][]byte,
		error,
	)

	ExecuteScript(
		rt natives.Runtime,
		code []byte,
		typeArgs []types.TypeTag,
		args [][]byte,
	) (
		[][]byte,
		error,
	)

	VerifyModule(module types.ModuleID, code []byte) error
}
