package vmext

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/module"
	"github.com/onflow/flow-vmext/vmext/environment"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/resolver"
	"github.com/onflow/flow-vmext/vmext/storage/state"
)

type sessionPhase int32

const (
	phaseCreated sessionPhase = iota
	phaseExecuting
	phaseFinished
)

func (phase sessionPhase) String() string {
	switch phase {
	case phaseCreated:
		return "created"
	case phaseExecuting:
		return "executing"
	case phaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("unknown(%d)", int32(phase))
	}
}

const defaultAbortReason = "session aborted"

// Session is the execution context of one transaction, block event or
// genesis write set.  Execute calls run one at a time; Abort may be called
// from any goroutine.
//
// A session moves from created to executing on its first call and to
// finished on Finish.  A finished session rejects every further call.
type Session struct {
	vm       *VirtualMachine
	id       types.SessionID
	logger   zerolog.Logger
	resolver resolver.StateResolver
	params   environment.EnvironmentParams
	begin    time.Time

	phase       *atomic.Int32
	aborted     *atomic.Bool
	abortReason *atomic.String

	// mu serializes Execute and Finish.
	mu        sync.Mutex
	state     *state.ExecutionState
	status    Status
	calls     int
	hasFailed bool
}

var _ environment.AbortSignal = (*Session)(nil)

func newSession(
	vm *VirtualMachine,
	resolver resolver.StateResolver,
	id types.SessionID,
) *Session {
	logger := vm.ctx.Logger.With().
		Str("session_id", id.String()).
		Logger()

	vm.ctx.Metrics.SessionStarted(id.Kind)

	return &Session{
		vm:       vm,
		id:       id,
		logger:   logger,
		resolver: resolver,
		params: environment.NewEnvironmentParams(
			id,
			logger,
			vm.natives,
			vm.extensions),
		begin:       time.Now(),
		phase:       atomic.NewInt32(int32(phaseCreated)),
		aborted:     atomic.NewBool(false),
		abortReason: atomic.NewString(""),
		state: state.NewExecutionState(
			resolver,
			vm.ctx.Limits.ExecutionParameters()),
		status: SuccessStatus(),
	}
}

func (session *Session) ID() types.SessionID {
	return session.id
}

func (session *Session) currentPhase() sessionPhase {
	return sessionPhase(session.phase.Load())
}

// Aborted implements environment.AbortSignal.
func (session *Session) Aborted() (string, bool) {
	if !session.aborted.Load() {
		return "", false
	}
	return session.abortReason.Load(), true
}

// Abort cancels the call in flight at its next metering point.  Calls that
// already succeeded keep their effects; calls issued afterwards do not run.
// The session must still be finished to obtain its output.
func (session *Session) Abort(reason string) {
	if session.currentPhase() == phaseFinished {
		return
	}
	if reason == "" {
		reason = defaultAbortReason
	}

	// first reason wins
	if session.abortReason.CompareAndSwap("", reason) {
		session.aborted.Store(true)
		session.logger.Info().Str("reason", reason).Msg("session aborted")
	}
}

// recordStatus keeps the status of the first call that did not succeed.  A
// failure always takes precedence since it discards the whole session.
func (session *Session) recordStatus(status Status) {
	if status.IsSuccess() || session.status.Kind == StatusFailed {
		return
	}

	if status.Kind == StatusFailed {
		session.hasFailed = true
		session.status = status
		return
	}

	if session.status.IsSuccess() {
		session.status = status
	}
}

// Execute runs one request.  The request's effects are merged into the
// session only if it succeeds.  Coded errors are reported in the result's
// status; failures are returned as errors and discard the whole session.
func (session *Session) Execute(
	ctx context.Context,
	req Request,
) (
	ExecutionResult,
	error,
) {
	session.mu.Lock()
	defer session.mu.Unlock()

	phase := session.currentPhase()
	if phase == phaseFinished {
		return ExecutionResult{}, errors.NewInvalidStateErrorf(
			"cannot execute %s: session is %s",
			req,
			phase)
	}
	if session.hasFailed {
		return ExecutionResult{}, errors.NewInvalidStateErrorf(
			"cannot execute %s: session has failed",
			req)
	}
	session.phase.Store(int32(phaseExecuting))
	session.calls++

	if reason, aborted := session.Aborted(); aborted {
		status := statusFromError(errors.NewExecutionCancelledError(reason))
		session.recordStatus(status)
		return ExecutionResult{Status: status}, nil
	}

	ctx, span := session.vm.ctx.Tracer.Start(
		ctx,
		"vmext.session.execute",
		trace.WithAttributes(
			attribute.String("session_id", session.id.String()),
			attribute.String("request", req.String()),
			attribute.Int("call", session.calls),
		))
	defer span.End()

	start := time.Now()
	result, err := session.execute(ctx, req)
	duration := time.Since(start)

	span.SetAttributes(
		attribute.Int64("computation_used", int64(result.ComputationUsed)),
		attribute.String("status", result.Status.Kind.String()))

	session.vm.ctx.Metrics.ExecuteCallFinished(
		duration,
		result.ComputationUsed,
		result.Status.Kind.String())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "execute failed")
		session.logger.Err(err).
			Str("step", "execute").
			Str("request", req.String()).
			Msg("execute call failed")
		return result, err
	}

	log := session.logger.Debug()
	if !result.Status.IsSuccess() {
		log = session.logger.Info().
			Str("code", result.Status.Code.String()).
			Str("message", result.Status.Message)
	}
	log.Str("request", req.String()).
		Uint64("computation_used", result.ComputationUsed).
		Dur("duration", duration).
		Str("status", result.Status.Kind.String()).
		Msg("execute call finished")

	return result, nil
}

func (session *Session) execute(
	ctx context.Context,
	req Request,
) (
	result ExecutionResult,
	err error,
) {
	txnState := session.state.NewChild()
	meter := environment.NewCancellableMeter(ctx, session, txnState)
	env := environment.NewEnvironment(session.params, txnState, meter)

	returnValues, runErr := session.run(env, req)

	collector := errors.NewErrorsCollector().Collect(runErr)
	if runErr != nil {
		collector.Collect(txnState.DropChanges())
	}

	snapshot := txnState.Finalize()
	result.ComputationUsed = snapshot.ComputationUsed

	if !collector.CollectedError() {
		collector.Collect(session.state.Merge(snapshot))
	}

	if collector.CollectedFailure() {
		// nothing of a failed session is ever committed
		collector.Collect(session.state.DropChanges())
	}

	err = collector.ErrorOrNil()
	if err != nil {
		result.Status = statusFromError(err)
		session.recordStatus(result.Status)
		if result.Status.Kind == StatusFailed {
			_, failure := errors.SplitErrorTypes(err)
			return result, failure
		}
		return result, nil
	}

	result.Status = SuccessStatus()
	result.ReturnValues = returnValues
	return result, nil
}

// run dispatches the request, converting host panics into failures.
func (session *Session) run(
	env *environment.Environment,
	req Request,
) (
	returnValues [][]byte,
	err error,
) {
	defer func() {
		if recovered := recover(); recovered != nil {
			returnValues = nil
			err = errors.NewHostPanicFailure(recovered)
		}
	}()

	switch req := req.(type) {
	case EntryFunction:
		return session.runEntryFunction(env, req)
	case Script:
		return session.runScript(env, req)
	case ModuleBundle:
		return nil, session.publishModules(env, req)
	case WriteSetPayload:
		return nil, session.applyWriteSet(env, req)
	default:
		return nil, errors.NewOperationNotSupportedError(
			fmt.Sprintf("request %T", req))
	}
}

// Finish builds the session output.  It succeeds exactly once.
func (session *Session) Finish() (*SessionOutput, error) {
	session.mu.Lock()
	defer session.mu.Unlock()

	previous := sessionPhase(session.phase.Swap(int32(phaseFinished)))
	if previous == phaseFinished {
		return nil, errors.NewInvalidStateErrorf("session is already finished")
	}

	status := session.status
	if reason, aborted := session.Aborted(); aborted && status.IsSuccess() {
		status = statusFromError(errors.NewExecutionCancelledError(reason))
	}

	output := buildOutput(session.id, status, session.state.Finalize())

	session.vm.ctx.Metrics.SessionFinished(
		session.id.Kind,
		time.Since(session.begin),
		module.SessionStats{
			Status:           status.Kind.String(),
			Writes:           output.changeSet.Len(),
			Events:           len(output.events),
			AggregatorDeltas: output.deltas.Len(),
			ComputationUsed:  output.computationUsed,
		})

	session.logger.Debug().
		Int("calls", session.calls).
		Int("writes", output.changeSet.Len()).
		Int("events", len(output.events)).
		Int("aggregator_deltas", output.deltas.Len()).
		Str("status", status.String()).
		Msg("session finished")

	return output, nil
}
