package cmd

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onflow/flow-vmext/config"
	"github.com/onflow/flow-vmext/module"
	"github.com/onflow/flow-vmext/module/metrics"
	"github.com/onflow/flow-vmext/storage"
	"github.com/onflow/flow-vmext/storage/badger"
	"github.com/onflow/flow-vmext/storage/pebble"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/stdlib"
)

const (
	backendPebble = "pebble"
	backendBadger = "badger"
)

// InitStore opens the store selected by --backend in --datadir.
func InitStore(collector module.VMExtMetrics) storage.Store {
	var (
		store storage.Store
		err   error
	)

	switch flagBackend {
	case backendPebble:
		store, err = pebble.OpenStore(flagDatadir, log.Logger)
	case backendBadger:
		store, err = badger.OpenStore(flagDatadir, log.Logger)
	default:
		err = fmt.Errorf("unknown backend %q", flagBackend)
	}
	if err != nil {
		log.Fatal().Err(err).Str("datadir", flagDatadir).Msg("could not open store")
	}

	return storage.NewInstrumentedStore(store, collector)
}

// openSnapshot pins the current state of store for the sessions of one
// command.
func openSnapshot(store storage.Store) storage.ReadSnapshot {
	snapshot, err := store.Snapshot()
	if err != nil {
		log.Fatal().Err(err).Msg("could not open state snapshot")
	}
	return snapshot
}

// InitVM builds a virtual machine with the standard natives and the limits
// resolved from flags, environment and config file.
func InitVM(cmd *cobra.Command, collector module.VMExtMetrics) *vmext.VirtualMachine {
	limits, err := config.LoadLimits(cmd.Flags())
	if err != nil {
		log.Fatal().Err(err).Msg("could not load limits")
	}

	vm, err := vmext.NewVirtualMachine(vmext.NewContext(
		vmext.WithLogger(log.Logger.Level(zerolog.GlobalLevel())),
		vmext.WithNatives(stdlib.Natives()...),
		vmext.WithLimits(limits),
		vmext.WithMetrics(collector)))
	if err != nil {
		log.Fatal().Err(err).Msg("could not create virtual machine")
	}
	return vm
}

func noopMetrics() module.VMExtMetrics {
	return metrics.NewNoopCollector()
}

// commit commits a finished output and materializes its aggregator deltas.
func commit(store storage.Store, output *vmext.SessionOutput) storage.CommitMetadata {
	meta, err := store.Commit(output)
	if err != nil {
		log.Fatal().Err(err).Msg("could not commit session output")
	}

	err = store.MaterializeDeltas(output.AggregatorDeltas())
	if err != nil {
		log.Fatal().Err(err).Msg("could not materialize aggregator deltas")
	}

	log.Info().
		Uint64("sequence", meta.Sequence).
		Str("session_id", meta.SessionID).
		Str("status", output.Status().String()).
		Int("writes", meta.Writes).
		Int("events", meta.Events).
		Msg("committed")

	return meta
}
