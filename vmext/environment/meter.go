package environment

import (
	"context"

	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/storage/state"
)

// AbortSignal reports whether the owning session was aborted.
type AbortSignal interface {
	Aborted() (reason string, aborted bool)
}

type Meter interface {
	MeterComputation(units uint64) error
	ComputationUsed() uint64
}

type meterImpl struct {
	txnState *state.ExecutionState
}

func NewMeter(txnState *state.ExecutionState) Meter {
	return &meterImpl{
		txnState: txnState,
	}
}

func (meter *meterImpl) MeterComputation(units uint64) error {
	return meter.txnState.MeterComputation(units)
}

func (meter *meterImpl) ComputationUsed() uint64 {
	return meter.txnState.ComputationUsed()
}

type cancellableMeter struct {
	meterImpl

	ctx   context.Context
	abort AbortSignal
}

// NewCancellableMeter returns a meter which fails at the first metering
// point after ctx is done or the session is aborted.
func NewCancellableMeter(
	ctx context.Context,
	abort AbortSignal,
	txnState *state.ExecutionState,
) Meter {
	return &cancellableMeter{
		meterImpl: meterImpl{
			txnState: txnState,
		},
		ctx:   ctx,
		abort: abort,
	}
}

func (meter *cancellableMeter) checkCancelled() error {
	select {
	case <-meter.ctx.Done():
		return errors.NewExecutionCancelledError(meter.ctx.Err().Error())
	default:
		// do nothing
	}

	if meter.abort != nil {
		if reason, aborted := meter.abort.Aborted(); aborted {
			return errors.NewExecutionCancelledError(reason)
		}
	}
	return nil
}

func (meter *cancellableMeter) MeterComputation(units uint64) error {
	err := meter.checkCancelled()
	if err != nil {
		return err
	}

	return meter.meterImpl.MeterComputation(units)
}
