package vmext

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
)

// Request is one unit of work executed by a session.
type Request interface {
	fmt.Stringer

	isRequest()
}

// EntryFunction calls a public function of a published module, or the native
// registered under the same dispatch key.
type EntryFunction struct {
	Module   types.ModuleID
	Function string
	TypeArgs []types.TypeTag
	Args     [][]byte
}

func (EntryFunction) isRequest() {}

func (req EntryFunction) String() string {
	return "entry_function " + req.Module.FunctionKey(req.Function)
}

// Script runs ad hoc bytecode.
type Script struct {
	Code     []byte
	TypeArgs []types.TypeTag
	Args     [][]byte
}

func (Script) isRequest() {}

func (req Script) String() string {
	return fmt.Sprintf("script (%d bytes)", len(req.Code))
}

type Module struct {
	Name string
	Code []byte
}

// ModuleBundle publishes modules under the sender's address.
type ModuleBundle struct {
	Sender  types.Address
	Modules []Module
}

func (ModuleBundle) isRequest() {}

func (req ModuleBundle) String() string {
	return fmt.Sprintf("module_bundle %s (%d modules)", req.Sender, len(req.Modules))
}

// WriteSetEntry is a single direct write.  A nil value deletes the key.
type WriteSetEntry struct {
	Key   types.StateKey
	Value []byte
}

// WriteSetPayload applies a write set directly, bypassing execution.  It is
// used for genesis and governance.  Writes to aggregator keys create the
// aggregator.
type WriteSetPayload struct {
	Writes []WriteSetEntry
	Events []types.Event
}

func (WriteSetPayload) isRequest() {}

func (req WriteSetPayload) String() string {
	return fmt.Sprintf(
		"write_set (%d writes, %d events)",
		len(req.Writes),
		len(req.Events))
}
