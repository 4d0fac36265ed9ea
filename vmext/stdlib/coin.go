package stdlib

import (
	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext/errors"
	"github.com/onflow/flow-vmext/vmext/natives"
)

var (
	CoinStoreTag         = types.MustParseStructTag("0x1::coin::CoinStore")
	TransferEventType    = types.MustParseStructTag("0x1::coin::TransferEvent").TypeTag()
	MintEventType        = types.MustParseStructTag("0x1::coin::MintEvent").TypeTag()
	CoinSupplyAggregator = types.AggregatorID(types.MustParseAddress("0xc01"))
)

// CoinStore is the balance resource of an account.
type CoinStore struct {
	Value uint64 `cbor:"value"`
}

type TransferEvent struct {
	From   types.Address `cbor:"from"`
	To     types.Address `cbor:"to"`
	Amount uint64        `cbor:"amount"`
}

type MintEvent struct {
	To     types.Address `cbor:"to"`
	Amount uint64        `cbor:"amount"`
}

// ReadCoinStore returns the account's coin store; ok is false if the
// account has none.
func ReadCoinStore(
	rt natives.Runtime,
	address types.Address,
) (
	store CoinStore,
	ok bool,
	err error,
) {
	data, err := rt.GetResource(address, CoinStoreTag)
	if err != nil {
		return CoinStore{}, false, err
	}
	if data == nil {
		return CoinStore{}, false, nil
	}

	err = types.Unmarshal(data, &store)
	if err != nil {
		return CoinStore{}, false, errors.NewValueErrorf(
			CoinStoreTag.String(),
			"cannot decode coin store of %s: %s",
			address,
			err.Error())
	}
	return store, true, nil
}

func writeCoinStore(
	rt natives.Runtime,
	address types.Address,
	store CoinStore,
) error {
	data, err := types.Marshal(store)
	if err != nil {
		return errors.NewEncodingFailuref(err, "cannot encode coin store")
	}
	return rt.SetResource(address, CoinStoreTag, data)
}

func emitEvent(
	rt natives.Runtime,
	eventType types.TypeTag,
	event interface{},
) error {
	payload, err := types.Marshal(event)
	if err != nil {
		return errors.NewEncodingFailuref(err, "cannot encode %s", eventType)
	}
	return rt.EmitEvent(eventType, payload)
}

// transfer(from: address, to: address, amount: u64)
func transfer(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::coin::transfer"

	err := checkArity(function, args, 3)
	if err != nil {
		return nil, err
	}

	var from, to types.Address
	var amount uint64
	if err := decodeArg(function, args, 0, &from); err != nil {
		return nil, err
	}
	if err := decodeArg(function, args, 1, &to); err != nil {
		return nil, err
	}
	if err := decodeArg(function, args, 2, &amount); err != nil {
		return nil, err
	}

	source, ok, err := ReadCoinStore(rt, from)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewMissingDataErrorf(
			types.ResourceKey(from, CoinStoreTag),
			"account %s has no coin store",
			from)
	}
	if source.Value < amount {
		return nil, errors.NewNativeAbortError(
			function,
			AbortCodeInsufficientBalance,
			"balance %d of %s is below %d",
			source.Value,
			from,
			amount)
	}

	source.Value -= amount
	err = writeCoinStore(rt, from, source)
	if err != nil {
		return nil, err
	}

	// read after the debit so that a self transfer is a no-op
	destination, _, err := ReadCoinStore(rt, to)
	if err != nil {
		return nil, err
	}
	if destination.Value > ^uint64(0)-amount {
		return nil, errors.NewNativeAbortError(
			function,
			AbortCodeBalanceOverflow,
			"balance of %s overflows",
			to)
	}

	destination.Value += amount
	err = writeCoinStore(rt, to, destination)
	if err != nil {
		return nil, err
	}

	err = emitEvent(rt, TransferEventType, TransferEvent{
		From:   from,
		To:     to,
		Amount: amount,
	})
	if err != nil {
		return nil, err
	}

	return nil, nil
}

// balance(owner: address): u64
func balance(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::coin::balance"

	err := checkArity(function, args, 1)
	if err != nil {
		return nil, err
	}

	var owner types.Address
	if err := decodeArg(function, args, 0, &owner); err != nil {
		return nil, err
	}

	store, ok, err := ReadCoinStore(rt, owner)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NewMissingDataErrorf(
			types.ResourceKey(owner, CoinStoreTag),
			"account %s has no coin store",
			owner)
	}

	return encodeReturn(store.Value)
}

// mint(to: address, amount: u64)
//
// The total supply is only ever updated with aggregator deltas.
func mint(
	rt natives.Runtime,
	_ []types.TypeTag,
	args [][]byte,
) (
	[][]byte,
	error,
) {
	const function = "0x1::coin::mint"

	err := checkArity(function, args, 2)
	if err != nil {
		return nil, err
	}

	var to types.Address
	var amount uint64
	if err := decodeArg(function, args, 0, &to); err != nil {
		return nil, err
	}
	if err := decodeArg(function, args, 1, &amount); err != nil {
		return nil, err
	}
	if amount == 0 || amount > uint64(maxDelta) {
		return nil, errors.NewNativeAbortError(
			function,
			AbortCodeInvalidAmount,
			"cannot mint %d",
			amount)
	}

	store, _, err := ReadCoinStore(rt, to)
	if err != nil {
		return nil, err
	}
	if store.Value > ^uint64(0)-amount {
		return nil, errors.NewNativeAbortError(
			function,
			AbortCodeBalanceOverflow,
			"balance of %s overflows",
			to)
	}

	store.Value += amount
	err = writeCoinStore(rt, to, store)
	if err != nil {
		return nil, err
	}

	err = rt.AddToAggregator(CoinSupplyAggregator, int64(amount))
	if err != nil {
		return nil, err
	}

	err = emitEvent(rt, MintEventType, MintEvent{To: to, Amount: amount})
	if err != nil {
		return nil, err
	}

	return nil, nil
}
