package natives

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
)

// Function is the host implementation of a native.  Arguments and return
// values are opaque encoded values.
type Function func(
	rt Runtime,
	typeArgs []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
)

// NativeFunction binds a host function to a dispatch key.  Cost is charged
// to the execute call before the function runs.
type NativeFunction struct {
	Module types.ModuleID
	Name   string
	Cost   uint64
	Fn     Function
}

// Key returns the dispatch key address::module::function.
func (native NativeFunction) Key() string {
	return native.Module.FunctionKey(native.Name)
}

// Registry is the immutable native function table of a virtual machine.  It
// is safe for concurrent use once constructed.
type Registry struct {
	functions map[string]NativeFunction
}

// NewRegistry builds the table.  Two natives with the same dispatch key are
// a configuration error.
func NewRegistry(functions ...NativeFunction) (*Registry, error) {
	registry := &Registry{
		functions: make(map[string]NativeFunction, len(functions)),
	}

	for _, native := range functions {
		if native.Fn == nil {
			return nil, errors.NewConfigurationErrorf(
				"native %s has no implementation",
				native.Key())
		}
		if native.Name == "" || native.Module.Name == "" {
			return nil, errors.NewConfigurationErrorf(
				"native %s has an incomplete dispatch key",
				native.Key())
		}

		key := native.Key()
		if _, ok := registry.functions[key]; ok {
			return nil, errors.NewConfigurationErrorf(
				"duplicate native %s",
				key)
		}
		registry.functions[key] = native
	}

	return registry, nil
}

func (registry *Registry) Lookup(
	module types.ModuleID,
	function string,
) (
	NativeFunction,
	bool,
) {
	if registry == nil {
		return NativeFunction{}, false
	}
	native, ok := registry.functions[module.FunctionKey(function)]
	return native, ok
}

func (registry *Registry) Len() int {
	if registry == nil {
		return 0
	}
	return len(registry.functions)
}

// Keys returns the sorted dispatch keys.
func (registry *Registry) Keys() []string {
	if registry == nil {
		return nil
	}
	keys := maps.Keys(registry.functions)
	slices.Sort(keys)
	return keys
}
