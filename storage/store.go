package storage

import (
	"encoding/binary"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/vmext"
	"github.com/onflow/flow-vmext/vmext/resolver"
)

// Committer applies finished session outputs to storage.
type Committer interface {
	// Commit applies the change set and event log of a session output in a
	// single batch and records its metadata.
	Commit(output *vmext.SessionOutput) (CommitMetadata, error)

	// MaterializeDeltas folds aggregator deltas into the stored aggregator
	// values.  It is a separate step from Commit: outputs only carry deltas.
	MaterializeDeltas(deltas types.AggregatorDeltaSet) error
}

// Store is a persistent state backend.
type Store interface {
	resolver.StorageSnapshot
	Committer

	// LastCommit returns the metadata of the latest commit, or ErrNotFound
	// if nothing was committed yet.
	LastCommit() (CommitMetadata, error)

	// Events returns the event log of the commit with the given sequence.
	Events(sequence uint64) (types.EventLog, error)

	// Snapshot returns a point-in-time view of the state.  Commits landing
	// after it was taken are not visible through it.
	Snapshot() (ReadSnapshot, error)

	Close() error
}

// ReadSnapshot is a consistent view of a store.  It must be closed once no
// session reads from it anymore.
type ReadSnapshot interface {
	resolver.StorageSnapshot
	Close() error
}

// CommitMetadata describes one committed session output.
type CommitMetadata struct {
	Sequence         uint64
	SessionID        string
	Status           string
	Writes           int
	Events           int
	AggregatorDeltas int
}

const (
	codeState      byte = 0x01
	codeEvents     byte = 0x02
	codeLastCommit byte = 0x03
)

// StateValueKey is the database key holding the value of a state key.
func StateValueKey(key types.StateKey) []byte {
	encoded := key.Bytes()
	dbKey := make([]byte, 0, 1+len(encoded))
	dbKey = append(dbKey, codeState)
	return append(dbKey, encoded...)
}

// EventsKey is the database key holding the event log of a commit.
func EventsKey(sequence uint64) []byte {
	dbKey := make([]byte, 0, 9)
	dbKey = append(dbKey, codeEvents)
	return binary.BigEndian.AppendUint64(dbKey, sequence)
}

func LastCommitKey() []byte {
	return []byte{codeLastCommit}
}
