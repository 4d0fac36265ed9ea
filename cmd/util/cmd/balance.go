package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/resolver"
	"github.com/onflow/flow-vmext/vmext/stdlib"
)

var flagAddress string

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().StringVarP(&flagAddress, "address", "a", "", "account address")
	_ = balanceCmd.MarkFlagRequired("address")
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "print the coin balance of an account",
	Run: func(cmd *cobra.Command, args []string) {
		address := mustParseAddress("address", flagAddress)

		store := InitStore(noopMetrics())
		defer store.Close()

		snapshot := openSnapshot(store)
		defer snapshot.Close()

		vm := InitVM(cmd, noopMetrics())
		session := vm.NewSession(resolver.NewSnapshotResolver(snapshot), types.VoidSessionID())

		result, err := session.Execute(context.Background(), vmext.EntryFunction{
			Module:   stdlib.CoinModule,
			Function: "balance",
			Args:     stdlib.MustEncodeArgs(address),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("could not read balance")
		}
		if !result.Status.IsSuccess() {
			log.Fatal().Str("status", result.Status.String()).Msg("could not read balance")
		}

		var balance uint64
		err = types.Unmarshal(result.ReturnValues[0], &balance)
		if err != nil {
			log.Fatal().Err(err).Msg("could not decode balance")
		}
		fmt.Println(balance)
	},
}
