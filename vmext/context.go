package vmext

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/onflow/flow-vmext/module"
	"github.com/onflow/flow-vmext/module/metrics"
	"github.com/onflow/flow-vmext/vmext/natives"
)

const tracerName = "github.com/onflow/flow-vmext/vmext"

// A Context defines a set of execution parameters used by the virtual machine.
type Context struct {
	Logger zerolog.Logger

	Natives     []natives.NativeFunction
	Extensions  []natives.Extension
	Interpreter Interpreter

	Limits Limits

	Metrics module.VMExtMetrics
	Tracer  trace.Tracer
}

// NewContext initializes a new execution context with the provided options.
func NewContext(opts ...Option) Context {
	return newContext(defaultContext(), opts...)
}

// NewContextFromParent spawns a child execution context with the provided options.
func NewContextFromParent(parent Context, opts ...Option) Context {
	return newContext(parent, opts...)
}

func newContext(ctx Context, opts ...Option) Context {
	for _, applyOption := range opts {
		ctx = applyOption(ctx)
	}

	return ctx
}

func defaultContext() Context {
	return Context{
		Logger:  zerolog.Nop(),
		Limits:  DefaultLimits(),
		Metrics: metrics.NewNoopCollector(),
		Tracer:  noop.NewTracerProvider().Tracer(tracerName),
	}
}

// An Option sets a configuration parameter for a virtual machine context.
type Option func(ctx Context) Context

// WithLogger sets the context logger
func WithLogger(logger zerolog.Logger) Option {
	return func(ctx Context) Context {
		ctx.Logger = logger
		return ctx
	}
}

// WithNatives appends native functions to the native table.
func WithNatives(functions ...natives.NativeFunction) Option {
	return func(ctx Context) Context {
		ctx.Natives = append(
			append([]natives.NativeFunction{}, ctx.Natives...),
			functions...)
		return ctx
	}
}

// WithExtensions appends per-session extensions.
func WithExtensions(extensions ...natives.Extension) Option {
	return func(ctx Context) Context {
		ctx.Extensions = append(
			append([]natives.Extension{}, ctx.Extensions...),
			extensions...)
		return ctx
	}
}

// WithInterpreter sets the bytecode interpreter used for entry functions
// without a native implementation, scripts and module verification.
func WithInterpreter(interpreter Interpreter) Option {
	return func(ctx Context) Context {
		ctx.Interpreter = interpreter
		return ctx
	}
}

// WithLimits sets the per call limits.
func WithLimits(limits Limits) Option {
	return func(ctx Context) Context {
		ctx.Limits = limits
		return ctx
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(collector module.VMExtMetrics) Option {
	return func(ctx Context) Context {
		ctx.Metrics = collector
		return ctx
	}
}

// WithTracer sets the tracer used for execute call spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(ctx Context) Context {
		ctx.Tracer = tracer
		return ctx
	}
}
