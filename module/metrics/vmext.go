package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/module"
)

type VMExtCollector struct {
	sessionsStarted      *prometheus.CounterVec
	sessionsFinished     *prometheus.CounterVec
	sessionDuration      *prometheus.HistogramVec
	sessionWrites        prometheus.Histogram
	sessionEvents        prometheus.Histogram
	sessionDeltas        prometheus.Histogram
	executeCalls         *prometheus.CounterVec
	executeCallDuration  prometheus.Histogram
	executeCallComputing prometheus.Histogram
	commitDuration       prometheus.Histogram
	commitWrites         prometheus.Counter
	commitBytes          prometheus.Counter
}

var _ module.VMExtMetrics = (*VMExtCollector)(nil)

func NewVMExtCollector(registerer prometheus.Registerer) *VMExtCollector {

	sessionsStarted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "started_total",
		Help:      "the number of sessions started",
	}, []string{LabelSessionKind})

	sessionsFinished := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "finished_total",
		Help:      "the number of sessions finished, by output status",
	}, []string{LabelSessionKind, LabelStatus})

	sessionDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "duration_seconds",
		Help:      "the lifetime of a session from begin to finish",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{LabelSessionKind})

	sessionWrites := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "writes",
		Help:      "the number of writes in a session output",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	sessionEvents := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "events",
		Help:      "the number of events in a session output",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	sessionDeltas := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "aggregator_deltas",
		Help:      "the number of aggregator deltas in a session output",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
	})

	executeCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "execute_calls_total",
		Help:      "the number of execute calls, by status",
	}, []string{LabelStatus})

	executeCallDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "execute_call_duration_seconds",
		Help:      "the duration of a single execute call",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	})

	executeCallComputing := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemSession,
		Name:      "execute_call_computation_used",
		Help:      "the computation used by a single execute call",
		Buckets:   prometheus.ExponentialBuckets(10, 2, 12),
	})

	commitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemStorage,
		Name:      "commit_duration_seconds",
		Help:      "the duration of applying a change set to storage",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	commitWrites := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemStorage,
		Name:      "committed_writes_total",
		Help:      "the number of writes applied to storage",
	})

	commitBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespaceVMExt,
		Subsystem: subsystemStorage,
		Name:      "committed_bytes_total",
		Help:      "the number of value bytes applied to storage",
	})

	registerer.MustRegister(
		sessionsStarted,
		sessionsFinished,
		sessionDuration,
		sessionWrites,
		sessionEvents,
		sessionDeltas,
		executeCalls,
		executeCallDuration,
		executeCallComputing,
		commitDuration,
		commitWrites,
		commitBytes,
	)

	return &VMExtCollector{
		sessionsStarted:      sessionsStarted,
		sessionsFinished:     sessionsFinished,
		sessionDuration:      sessionDuration,
		sessionWrites:        sessionWrites,
		sessionEvents:        sessionEvents,
		sessionDeltas:        sessionDeltas,
		executeCalls:         executeCalls,
		executeCallDuration:  executeCallDuration,
		executeCallComputing: executeCallComputing,
		commitDuration:       commitDuration,
		commitWrites:         commitWrites,
		commitBytes:          commitBytes,
	}
}

func (vc *VMExtCollector) SessionStarted(kind types.SessionKind) {
	vc.sessionsStarted.WithLabelValues(kind.String()).Inc()
}

func (vc *VMExtCollector) ExecuteCallFinished(
	dur time.Duration,
	computationUsed uint64,
	status string,
) {
	vc.executeCalls.WithLabelValues(status).Inc()
	vc.executeCallDuration.Observe(dur.Seconds())
	vc.executeCallComputing.Observe(float64(computationUsed))
}

func (vc *VMExtCollector) SessionFinished(
	kind types.SessionKind,
	dur time.Duration,
	stats module.SessionStats,
) {
	vc.sessionsFinished.WithLabelValues(kind.String(), stats.Status).Inc()
	vc.sessionDuration.WithLabelValues(kind.String()).Observe(dur.Seconds())
	vc.sessionWrites.Observe(float64(stats.Writes))
	vc.sessionEvents.Observe(float64(stats.Events))
	vc.sessionDeltas.Observe(float64(stats.AggregatorDeltas))
}

func (vc *VMExtCollector) ChangeSetCommitted(
	dur time.Duration,
	writes int,
	bytes int,
) {
	vc.commitDuration.Observe(dur.Seconds())
	vc.commitWrites.Add(float64(writes))
	vc.commitBytes.Add(float64(bytes))
}
