package vmext

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/environment"
	"github.com/onflow/flow-vmext/vmext/errors"
)

// interpreterError reports errors of the interpreter which carry no code as
// runtime faults.
func interpreterError(err error) error {
	if err == nil {
		return nil
	}

	var coded errors.CodedError
	if errors.As(err, &coded) {
		return err
	}
	return errors.NewRuntimeFaultError(err)
}

func (session *Session) runEntryFunction(
	env *environment.Environment,
	req EntryFunction,
) (
	[][]byte,
	error,
) {
	if env.HasNative(req.Module, req.Function) {
		return env.CallNative(req.Module, req.Function, req.TypeArgs, req.Args)
	}

	code, err := env.GetModule(req.Module.Address, req.Module.Name)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, errors.NewLinkerErrorf(
			req.Module,
			"module is not published and %s is not a native",
			req.Function)
	}

	interpreter := session.vm.ctx.Interpreter
	if interpreter == nil {
		return nil, errors.NewOperationNotSupportedError(
			"entry function " + req.Module.FunctionKey(req.Function))
	}

	returnValues, err := interpreter.InvokeFunction(
		env,
		req.Module,
		code,
		req.Function,
		req.TypeArgs,
		req.Args)
	return returnValues, interpreterError(err)
}

func (session *Session) runScript(
	env *environment.Environment,
	req Script,
) (
	[][]byte,
	error,
) {
	interpreter := session.vm.ctx.Interpreter
	if interpreter == nil {
		return nil, errors.NewOperationNotSupportedError("script")
	}

	returnValues, err := interpreter.ExecuteScript(
		env,
		req.Code,
		req.TypeArgs,
		req.Args)
	return returnValues, interpreterError(err)
}

func (session *Session) publishModules(
	env *environment.Environment,
	req ModuleBundle,
) error {
	if len(req.Modules) == 0 {
		return errors.NewInvalidModuleBundleErrorf("bundle is empty")
	}

	names := make(map[string]struct{}, len(req.Modules))
	for _, module := range req.Modules {
		if module.Name == "" {
			return errors.NewInvalidModuleBundleErrorf("module without a name")
		}
		if len(module.Code) == 0 {
			return errors.NewInvalidModuleBundleErrorf(
				"module %s has no code",
				module.Name)
		}
		if _, ok := names[module.Name]; ok {
			return errors.NewInvalidModuleBundleErrorf(
				"duplicate module %s",
				module.Name)
		}
		names[module.Name] = struct{}{}
	}

	interpreter := session.vm.ctx.Interpreter
	for _, module := range req.Modules {
		id := types.ModuleID{Address: req.Sender, Name: module.Name}

		if interpreter != nil {
			err := interpreter.VerifyModule(id, module.Code)
			if err != nil {
				if errors.IsFailure(err) {
					return err
				}
				return errors.NewModuleVerificationError(id, err)
			}
		}

		err := env.SetModule(req.Sender, module.Name, module.Code)
		if err != nil {
			return err
		}
	}

	return nil
}

func (session *Session) applyWriteSet(
	env *environment.Environment,
	req WriteSetPayload,
) error {
	for _, write := range req.Writes {
		if write.Key.Kind != types.StateKeyAggregator {
			err := env.SetValue(write.Key, write.Value)
			if err != nil {
				return err
			}
			continue
		}

		value, err := types.DecodeAggregatorValue(write.Value)
		if err != nil {
			return errors.NewInvalidArgumentErrorf(
				"invalid aggregator value for %s: %s",
				write.Key,
				err.Error())
		}

		err = env.InitializeAggregator(types.AggregatorID(write.Key.Owner), value)
		if err != nil {
			return err
		}
	}

	for _, event := range req.Events {
		err := env.EmitEvent(event.Type, event.Payload)
		if err != nil {
			return err
		}
	}

	return nil
}
