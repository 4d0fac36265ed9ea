// Package vmext wraps a smart contract virtual machine with session
// management: a session runs the calls of one transaction, block event or
// genesis write set against a read-only state resolver and folds their
// effects into a single output.
package vmext

import (
	"fmt"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/natives"
	"github.com/onflow/flow-vmext/vmext/resolver"
)

// A VirtualMachine holds the native and extension tables shared by every
// session.  It is safe for concurrent use.
type VirtualMachine struct {
	ctx        Context
	natives    *natives.Registry
	extensions *natives.Extensions
}

// NewVirtualMachine registers the natives and extensions of the context.
func NewVirtualMachine(ctx Context) (*VirtualMachine, error) {
	registry, err := natives.NewRegistry(ctx.Natives...)
	if err != nil {
		return nil, fmt.Errorf("cannot register natives: %w", err)
	}

	extensions, err := natives.NewExtensions(ctx.Extensions...)
	if err != nil {
		return nil, fmt.Errorf("cannot register extensions: %w", err)
	}

	ctx.Logger.Debug().
		Int("natives", registry.Len()).
		Strs("extensions", extensions.Names()).
		Bool("interpreter", ctx.Interpreter != nil).
		Msg("virtual machine created")

	return &VirtualMachine{
		ctx:        ctx,
		natives:    registry,
		extensions: extensions,
	}, nil
}

// NewSession begins a session reading through the resolver.  The resolver
// must stay consistent for the lifetime of the session.
func (vm *VirtualMachine) NewSession(
	resolver resolver.StateResolver,
	id types.SessionID,
) *Session {
	return newSession(vm, resolver, id)
}

func (vm *VirtualMachine) Context() Context {
	return vm.ctx
}

func (vm *VirtualMachine) Natives() *natives.Registry {
	return vm.natives
}
