package cmd

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/montanaflynn/stats"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/module/metrics"
	"github.com/onflow/flow-vmext/vmext/resolver"
)

var (
	flagSessions    int
	flagWorkers     int
	flagMetricsAddr string
)

func init() {
	rootCmd.AddCommand(benchCmd)

	benchCmd.Flags().StringVar(&flagFrom, "from", "", "funded sender address")
	benchCmd.Flags().IntVar(&flagSessions, "sessions", 1000, "number of sessions to run")
	benchCmd.Flags().IntVar(&flagWorkers, "workers", 8, "number of sessions run in parallel")
	benchCmd.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address while running")
	_ = benchCmd.MarkFlagRequired("from")
}

// benchFlags are validated before the bench starts.
type benchFlags struct {
	Sessions int `validate:"gte=1"`
	Workers  int `validate:"gte=1"`
}

// benchCmd runs independent transfer sessions against a snapshot of the
// committed state.  Outputs are discarded: every session reads the same base
// state.
var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "execute transfer sessions in parallel without committing them",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		err := validate.Struct(benchFlags{
			Sessions: flagSessions,
			Workers:  flagWorkers,
		})
		if err != nil {
			return fmt.Errorf("invalid bench flags: %w", err)
		}
		return nil
	},
	Run: runBench,
}

func runBench(cmd *cobra.Command, args []string) {
	from := mustParseAddress("from", flagFrom)

	registry := prometheus.NewRegistry()
	collector := metrics.NewVMExtCollector(registry)

	if flagMetricsAddr != "" {
		server := metrics.NewServer(log.Logger, flagMetricsAddr, registry)
		server.Start()
		defer server.Shutdown()
	}

	store := InitStore(collector)
	defer store.Close()

	snapshot := openSnapshot(store)
	defer snapshot.Close()

	vm := InitVM(cmd, collector)
	base := resolver.NewSnapshotResolver(snapshot)

	var (
		succeeded = atomic.NewInt64(0)
		aborted   = atomic.NewInt64(0)
		failed    = atomic.NewInt64(0)

		mu        sync.Mutex
		latencies = make([]float64, 0, flagSessions)
	)

	bar := progressbar.Default(int64(flagSessions), "sessions")
	pool := workerpool.New(flagWorkers)
	start := time.Now()

	for i := 0; i < flagSessions; i++ {
		sequence := uint64(i)
		pool.Submit(func() {
			defer func() {
				_ = bar.Add(1)
			}()

			var recipient [8]byte
			binary.BigEndian.PutUint64(recipient[:], sequence+1)
			to := types.BytesToAddress(recipient[:])

			began := time.Now()
			req := transferRequest(from, to, 1)
			session := vm.NewSession(base, types.TxnSessionID(from, sequence, [32]byte{}))

			_, err := session.Execute(context.Background(), req)
			if err != nil {
				failed.Inc()
				log.Err(err).Uint64("sequence", sequence).Msg("session failed")
				return
			}

			output, err := session.Finish()
			switch {
			case err != nil:
				failed.Inc()
				log.Err(err).Uint64("sequence", sequence).Msg("could not finish session")
				return
			case output.Status().IsSuccess():
				succeeded.Inc()
			default:
				aborted.Inc()
			}

			mu.Lock()
			latencies = append(latencies, float64(time.Since(began).Microseconds()))
			mu.Unlock()
		})
	}
	pool.StopWait()
	_ = bar.Finish()

	elapsed := time.Since(start)
	report := log.Info().
		Int("sessions", flagSessions).
		Int("workers", flagWorkers).
		Int64("succeeded", succeeded.Load()).
		Int64("aborted", aborted.Load()).
		Int64("failed", failed.Load()).
		Dur("elapsed", elapsed).
		Float64("sessions_per_second", float64(flagSessions)/elapsed.Seconds())

	summary, err := summarizeLatencies(latencies)
	if err != nil {
		log.Warn().Err(err).Msg("could not summarize session latencies")
	} else {
		report = report.
			Float64("latency_mean_us", summary.mean).
			Float64("latency_p50_us", summary.p50).
			Float64("latency_p99_us", summary.p99)
	}
	report.Msg("bench finished")
}

type latencySummary struct {
	mean float64
	p50  float64
	p99  float64
}

func summarizeLatencies(latencies []float64) (latencySummary, error) {
	data := stats.Float64Data(latencies)

	mean, err := stats.Mean(data)
	if err != nil {
		return latencySummary{}, fmt.Errorf("could not compute mean: %w", err)
	}
	p50, err := stats.Median(data)
	if err != nil {
		return latencySummary{}, fmt.Errorf("could not compute median: %w", err)
	}
	p99, err := stats.Percentile(data, 99)
	if err != nil {
		return latencySummary{}, fmt.Errorf("could not compute p99: %w", err)
	}
	return latencySummary{mean: mean, p50: p50, p99: p99}, nil
}
