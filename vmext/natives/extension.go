package natives

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
)

// Extension is a per-session context factory.  A fresh context is created
// for every session and is reachable from natives through
// Runtime.Extension.
type Extension interface {
	Name() string
	NewSessionContext(id types.SessionID) interface{}
}

// ExtensionFunc adapts a function to the Extension interface.
type ExtensionFunc struct {
	ExtensionName string
	New           func(id types.SessionID) interface{}
}

func (ext ExtensionFunc) Name() string {
	return ext.ExtensionName
}

func (ext ExtensionFunc) NewSessionContext(id types.SessionID) interface{} {
	return ext.New(id)
}

// Extensions is the immutable extension table of a virtual machine.
type Extensions struct {
	extensions map[string]Extension
}

func NewExtensions(extensions ...Extension) (*Extensions, error) {
	table := &Extensions{
		extensions: make(map[string]Extension, len(extensions)),
	}

	for _, ext := range extensions {
		if ext == nil {
			return nil, errors.NewConfigurationErrorf("nil extension")
		}
		name := ext.Name()
		if name == "" {
			return nil, errors.NewConfigurationErrorf("extension without a name")
		}
		if _, ok := table.extensions[name]; ok {
			return nil, errors.NewConfigurationErrorf(
				"duplicate extension %s",
				name)
		}
		table.extensions[name] = ext
	}

	return table, nil
}

// NewSessionContexts instantiates every extension for one session.
func (table *Extensions) NewSessionContexts(
	id types.SessionID,
) map[string]interface{} {
	contexts := map[string]interface{}{}
	if table == nil {
		return contexts
	}
	for name, ext := range table.extensions {
		contexts[name] = ext.NewSessionContext(id)
	}
	return contexts
}

func (table *Extensions) Names() []string {
	if table == nil {
		return nil
	}
	names := maps.Keys(table.extensions)
	slices.Sort(names)
	return names
}
