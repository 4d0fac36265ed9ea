package metrics

import (
	"time"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/module"
)

type NoopCollector struct{}

var _ module.VMExtMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) SessionStarted(types.SessionKind)                                      {}
func (nc *NoopCollector) ExecuteCallFinished(time.Duration, uint64, string)                     {}
func (nc *NoopCollector) SessionFinished(types.SessionKind, time.Duration, module.SessionStats) {}
func (nc *NoopCollector) ChangeSetCommitted(time.Duration, int, int)                            {}
