package cmd

import (
	"bytes"
	"context"
	"math"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"
	"golang.org/x/exp/slices"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/resolver"
	"github.com/onflow/flow-vmext/vmext/stdlib"
)

var flagAccounts map[string]string

func init() {
	rootCmd.AddCommand(genesisCmd)

	genesisCmd.Flags().StringToStringVar(&flagAccounts, "accounts", nil, "initial balances, e.g. 0xa=100,0xb=50")
	_ = genesisCmd.MarkFlagRequired("accounts")
}

var genesisCmd = &cobra.Command{
	Use:   "genesis",
	Short: "fund accounts and create the coin supply in an empty store",
	Run:   runGenesis,
}

func runGenesis(cmd *cobra.Command, args []string) {
	store := InitStore(noopMetrics())
	defer store.Close()

	_, err := store.LastCommit()
	if err == nil {
		log.Fatal().Msg("store already has commits")
	}

	payload := vmext.WriteSetPayload{}
	hasher := sha3.New256()
	supply := uint64(0)

	balances, addresses := parseAccounts()
	for _, address := range addresses {
		balance := balances[address]
		if balance > math.MaxUint64-supply {
			log.Fatal().Msg("total supply overflows")
		}
		supply += balance

		data, err := types.Marshal(stdlib.CoinStore{Value: balance})
		if err != nil {
			log.Fatal().Err(err).Msg("could not encode coin store")
		}
		payload.Writes = append(payload.Writes, vmext.WriteSetEntry{
			Key:   types.ResourceKey(address, stdlib.CoinStoreTag),
			Value: data,
		})
		_, _ = hasher.Write(address.Bytes())
		_, _ = hasher.Write(data)
	}

	payload.Writes = append(payload.Writes, vmext.WriteSetEntry{
		Key:   types.AggregatorKey(stdlib.CoinSupplyAggregator),
		Value: types.EncodeAggregatorValue(supply),
	})

	var genesisID [32]byte
	copy(genesisID[:], hasher.Sum(nil))

	vm := InitVM(cmd, noopMetrics())
	session := vm.NewSession(resolver.NewSnapshotResolver(store), types.GenesisSessionID(genesisID))

	result, err := session.Execute(context.Background(), payload)
	if err != nil {
		log.Fatal().Err(err).Msg("genesis failed")
	}
	if !result.Status.IsSuccess() {
		log.Fatal().Str("status", result.Status.String()).Msg("genesis aborted")
	}

	output, err := session.Finish()
	if err != nil {
		log.Fatal().Err(err).Msg("could not finish genesis session")
	}

	commit(store, output)
	log.Info().Uint64("supply", supply).Int("accounts", len(addresses)).Msg("genesis applied")
}

// parseAccounts parses --accounts, returning the balances and the addresses
// in ascending order.
func parseAccounts() (map[types.Address]uint64, []types.Address) {
	balances := make(map[types.Address]uint64, len(flagAccounts))
	addresses := make([]types.Address, 0, len(flagAccounts))

	for raw, value := range flagAccounts {
		address, err := types.ParseAddress(raw)
		if err != nil {
			log.Fatal().Err(err).Str("address", raw).Msg("invalid address")
		}
		if _, ok := balances[address]; ok {
			log.Fatal().Str("address", raw).Msg("duplicate address")
		}

		balance, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			log.Fatal().Err(err).Str("address", raw).Msg("invalid balance")
		}
		balances[address] = balance
		addresses = append(addresses, address)
	}

	slices.SortFunc(addresses, func(a, b types.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return balances, addresses
}
