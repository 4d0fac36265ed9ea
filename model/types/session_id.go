package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

type SessionKind uint8

const (
	SessionKindTxn SessionKind = iota + 1
	SessionKindPrologue
	SessionKindEpilogue
	SessionKindBlockMeta
	SessionKindGenesis
	SessionKindVoid
)

func (k SessionKind) String() string {
	switch k {
	case SessionKindTxn:
		return "txn"
	case SessionKindPrologue:
		return "prologue"
	case SessionKindEpilogue:
		return "epilogue"
	case SessionKindBlockMeta:
		return "block_meta"
	case SessionKindGenesis:
		return "genesis"
	case SessionKindVoid:
		return "void"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// sessionIDDomainTag separates session seeds from every other hash computed
// over the same bytes.
const sessionIDDomainTag = "VMEXT::SessionID"

// SessionID identifies the context a session runs in: a user transaction
// (and its prologue / epilogue), a block metadata event, a genesis write set,
// or nothing at all.  The id seeds all per-session derivations, so two
// sessions with equal ids derive the same randomness and handles.
type SessionID struct {
	Kind SessionKind

	// Sender and SequenceNumber are set for transaction sessions only.
	Sender         Address
	SequenceNumber uint64

	// Hash is the script hash of a transaction, the block id of a block
	// metadata event, or the genesis id.
	Hash [32]byte
}

func TxnSessionID(sender Address, sequenceNumber uint64, scriptHash [32]byte) SessionID {
	return SessionID{
		Kind:           SessionKindTxn,
		Sender:         sender,
		SequenceNumber: sequenceNumber,
		Hash:           scriptHash,
	}
}

func PrologueSessionID(sender Address, sequenceNumber uint64, scriptHash [32]byte) SessionID {
	id := TxnSessionID(sender, sequenceNumber, scriptHash)
	id.Kind = SessionKindPrologue
	return id
}

func EpilogueSessionID(sender Address, sequenceNumber uint64, scriptHash [32]byte) SessionID {
	id := TxnSessionID(sender, sequenceNumber, scriptHash)
	id.Kind = SessionKindEpilogue
	return id
}

func BlockMetaSessionID(blockID [32]byte) SessionID {
	return SessionID{Kind: SessionKindBlockMeta, Hash: blockID}
}

func GenesisSessionID(genesisID [32]byte) SessionID {
	return SessionID{Kind: SessionKindGenesis, Hash: genesisID}
}

func VoidSessionID() SessionID {
	return SessionID{Kind: SessionKindVoid}
}

// Bytes returns the tagged encoding of the id:
// kind | sender | uvarint(sequence number) | hash
func (id SessionID) Bytes() []byte {
	buf := make([]byte, 0, 1+AddressLength+binary.MaxVarintLen64+32)
	buf = append(buf, byte(id.Kind))
	buf = append(buf, id.Sender[:]...)
	buf = binary.AppendUvarint(buf, id.SequenceNumber)
	buf = append(buf, id.Hash[:]...)
	return buf
}

// Seed is the 32 byte seed of every per-session derivation.
func (id SessionID) Seed() [32]byte {
	hasher := sha3.New256()
	_, _ = hasher.Write([]byte(sessionIDDomainTag))
	_, _ = hasher.Write(id.Bytes())

	var seed [32]byte
	copy(seed[:], hasher.Sum(nil))
	return seed
}

func (id SessionID) String() string {
	switch id.Kind {
	case SessionKindTxn, SessionKindPrologue, SessionKindEpilogue:
		return fmt.Sprintf(
			"%s/%s/%d/%s",
			id.Kind,
			id.Sender,
			id.SequenceNumber,
			hex.EncodeToString(id.Hash[:4]))
	case SessionKindVoid:
		return id.Kind.String()
	default:
		return fmt.Sprintf("%s/%s", id.Kind, hex.EncodeToString(id.Hash[:4]))
	}
}
