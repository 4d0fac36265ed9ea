// Package stdlib implements the framework natives published under 0x1.
package stdlib

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/natives"
)

var (
	CoinModule       = types.ModuleID{Address: types.FrameworkAddress, Name: "coin"}
	AggregatorModule = types.ModuleID{Address: types.FrameworkAddress, Name: "aggregator"}
	TableModule      = types.ModuleID{Address: types.FrameworkAddress, Name: "table"}
	EventModule      = types.ModuleID{Address: types.FrameworkAddress, Name: "event"}
	RandomnessModule = types.ModuleID{Address: types.FrameworkAddress, Name: "randomness"}
)

// Abort codes of the framework natives.
const (
	AbortCodeInsufficientBalance uint64 = 1
	AbortCodeBalanceOverflow     uint64 = 2
	AbortCodeAlreadyExists       uint64 = 3
	AbortCodeNotFound            uint64 = 4
	AbortCodeInvalidAmount       uint64 = 5
)

// Natives returns every framework native.
func Natives() []natives.NativeFunction {
	return []natives.NativeFunction{
		{Module: CoinModule, Name: "transfer", Cost: 50, Fn: transfer},
		{Module: CoinModule, Name: "balance", Cost: 10, Fn: balance},
		{Module: CoinModule, Name: "mint", Cost: 50, Fn: mint},
		{Module: AggregatorModule, Name: "add", Cost: 5, Fn: aggregatorAdd},
		{Module: AggregatorModule, Name: "read", Cost: 20, Fn: aggregatorRead},
		{Module: TableModule, Name: "new", Cost: 10, Fn: tableNew},
		{Module: TableModule, Name: "add", Cost: 20, Fn: tableAdd},
		{Module: TableModule, Name: "borrow", Cost: 10, Fn: tableBorrow},
		{Module: TableModule, Name: "remove", Cost: 20, Fn: tableRemove},
		{Module: EventModule, Name: "emit", Cost: 20, Fn: emit},
		{Module: RandomnessModule, Name: "u64", Cost: 10, Fn: randomU64},
	}
}
