package environment

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"github.com/onflow/flow-vmext/model/types"
)

const (
	tableHandleDomainTag = "VMEXT::TableHandle"
	addressDomainTag     = "VMEXT::DerivedAddress"
)

// AddressDeriver derives addresses and table handles from the session seed.
// Table handles use a session wide counter, so the n-th handle of a session
// is the same on every replay.
type AddressDeriver struct {
	seed    [32]byte
	handles uint64
}

func NewAddressDeriver(id types.SessionID) *AddressDeriver {
	return &AddressDeriver{
		seed: id.Seed(),
	}
}

func (deriver *AddressDeriver) hash(tag string, parts ...[]byte) types.Address {
	hasher := sha3.New256()
	_, _ = hasher.Write([]byte(tag))
	_, _ = hasher.Write(deriver.seed[:])
	for _, part := range parts {
		_, _ = hasher.Write(part)
	}
	return types.BytesToAddress(hasher.Sum(nil))
}

func (deriver *AddressDeriver) DeriveAddress(salt []byte) types.Address {
	return deriver.hash(addressDomainTag, salt)
}

func (deriver *AddressDeriver) NextTableHandle() types.TableHandle {
	counter := binary.BigEndian.AppendUint64(nil, deriver.handles)
	deriver.handles++
	return types.TableHandle(deriver.hash(tableHandleDomainTag, counter))
}
