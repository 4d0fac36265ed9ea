package storage

import (
	"time"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/module"
	"github.com/onflow/flow-vmext/vmext"
)

// InstrumentedStore reports commits of the wrapped store.
type InstrumentedStore struct {
	Store
	metrics module.VMExtMetrics
}

var _ Store = (*InstrumentedStore)(nil)

func NewInstrumentedStore(store Store, metrics module.VMExtMetrics) *InstrumentedStore {
	return &InstrumentedStore{
		Store:   store,
		metrics: metrics,
	}
}

func (s *InstrumentedStore) Commit(output *vmext.SessionOutput) (CommitMetadata, error) {
	start := time.Now()

	meta, err := s.Store.Commit(output)
	if err != nil {
		return meta, err
	}

	size := 0
	_ = output.ChangeSet().ForEach(func(_ types.StateKey, op types.WriteOp) error {
		size += len(op.Value)
		return nil
	})
	s.metrics.ChangeSetCommitted(time.Since(start), meta.Writes, size)

	return meta, nil
}
