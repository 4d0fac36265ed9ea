package cmd

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/resolver"
	"github.com/onflow/flow-vmext/vmext/stdlib"
)

var (
	flagFrom     string
	flagTo       string
	flagAmount   uint64
	flagSequence uint64
)

func init() {
	rootCmd.AddCommand(transferCmd)

	transferCmd.Flags().StringVar(&flagFrom, "from", "", "sender address")
	transferCmd.Flags().StringVar(&flagTo, "to", "", "recipient address")
	transferCmd.Flags().Uint64Var(&flagAmount, "amount", 0, "amount to transfer")
	transferCmd.Flags().Uint64Var(&flagSequence, "sequence", 0, "sequence number of the sender")
	_ = transferCmd.MarkFlagRequired("from")
	_ = transferCmd.MarkFlagRequired("to")
	_ = transferCmd.MarkFlagRequired("amount")
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "transfer coins between two accounts and commit the result",
	Run:   runTransfer,
}

func mustParseAddress(flag string, value string) types.Address {
	address, err := types.ParseAddress(value)
	if err != nil {
		log.Fatal().Err(err).Str(flag, value).Msg("invalid address")
	}
	return address
}

func transferRequest(from, to types.Address, amount uint64) vmext.EntryFunction {
	return vmext.EntryFunction{
		Module:   stdlib.CoinModule,
		Function: "transfer",
		Args:     stdlib.MustEncodeArgs(from, to, amount),
	}
}

func runTransfer(cmd *cobra.Command, args []string) {
	from := mustParseAddress("from", flagFrom)
	to := mustParseAddress("to", flagTo)

	store := InitStore(noopMetrics())
	defer store.Close()

	snapshot := openSnapshot(store)
	defer snapshot.Close()

	req := transferRequest(from, to, flagAmount)
	id := types.TxnSessionID(from, flagSequence, sha3.Sum256([]byte(req.String())))

	vm := InitVM(cmd, noopMetrics())
	session := vm.NewSession(resolver.NewSnapshotResolver(snapshot), id)

	result, err := session.Execute(context.Background(), req)
	if err != nil {
		log.Fatal().Err(err).Msg("transfer failed")
	}
	log.Info().
		Str("status", result.Status.String()).
		Uint64("computation_used", result.ComputationUsed).
		Msg("transfer executed")

	output, err := session.Finish()
	if err != nil {
		log.Fatal().Err(err).Msg("could not finish session")
	}

	commit(store, output)
	for _, event := range output.Events() {
		log.Info().Str("event", event.String()).Int("payload_size", len(event.Payload)).Msg("event emitted")
	}
}
