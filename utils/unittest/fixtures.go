package unittest

import (
	crand "crypto/rand"
	"fmt"
	"math/rand"

	"github.com/onflow/flow-vmext/model/types"
)

// AddressFixture returns a random account address.
func AddressFixture() types.Address {
	var addr types.Address
	_, _ = crand.Read(addr[:])
	return addr
}

func AddressListFixture(n int) []types.Address {
	list := make([]types.Address, n)
	for i := range list {
		list[i] = AddressFixture()
	}
	return list
}

func AggregatorIDFixture() types.AggregatorID {
	return types.AggregatorID(AddressFixture())
}

func TableHandleFixture() types.TableHandle {
	return types.TableHandle(AddressFixture())
}

func ResourceKeyFixture() types.StateKey {
	return types.ResourceKey(
		AddressFixture(),
		types.MustParseStructTag("0x1::fixture::Resource"))
}

func ModuleKeyFixture() types.StateKey {
	return types.ModuleKey(
		AddressFixture(),
		fmt.Sprintf("module_%d", rand.Uint32()))
}

// StateKeyListFixture returns n distinct module keys.
func StateKeyListFixture(n int) []types.StateKey {
	owner := AddressFixture()
	keys := make([]types.StateKey, n)
	for i := range keys {
		keys[i] = types.ModuleKey(owner, fmt.Sprintf("module_%d", i))
	}
	return keys
}

// Uint64InRange returns a uint64 value drawn from the uniform random distribution [min,max].
func Uint64InRange(min, max uint64) uint64 {
	return min + uint64(rand.Intn(int(max)+1-int(min)))
}

func RandomBytes(n int) []byte {
	b := make([]byte, n)
	read, err := crand.Read(b)
	if err != nil {
		panic("cannot read random bytes")
	}
	if read != n {
		panic(fmt.Errorf("cannot read enough random bytes (got %d of %d)", read, n))
	}
	return b
}

// SeedFixture returns a random 32 byte session seed.
func SeedFixture() [32]byte {
	var seed [32]byte
	copy(seed[:], RandomBytes(32))
	return seed
}
