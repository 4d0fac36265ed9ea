package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/storage"
	"github.com/onflow/flow-vmext/vmext"
)

const (
	conflictRetries = 10
	conflictBackoff = 5 * time.Millisecond
)

// Store is a badger backed state store.  Values are snappy compressed.
// Concurrent commits conflict on the commit metadata and are retried.
type Store struct {
	db  *badger.DB
	log zerolog.Logger
}

var _ storage.Store = (*Store)(nil)

func NewStore(db *badger.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "badger_store").Logger(),
	}
}

// OpenStore opens the badger database in dir.
func OpenStore(dir string, log zerolog.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return NewStore(db, log), nil
}

func (s *Store) Get(key types.StateKey) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *badger.Txn) error {
		var err error
		value, err = txnSnapshot{tx: tx}.Get(key)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("could not get %s: %w", key, err)
	}
	return value, nil
}

// Snapshot opens a read-only transaction.  Badger transactions read at the
// timestamp they were opened at.
func (s *Store) Snapshot() (storage.ReadSnapshot, error) {
	return &readSnapshot{tx: s.db.NewTransaction(false)}, nil
}

type readSnapshot struct {
	// badger transactions are not safe for concurrent use
	mu sync.Mutex
	tx *badger.Txn
}

func (r *readSnapshot) Get(key types.StateKey) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	value, err := txnSnapshot{tx: r.tx}.Get(key)
	if err != nil {
		return nil, fmt.Errorf("could not get %s: %w", key, err)
	}
	return value, nil
}

func (r *readSnapshot) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tx.Discard()
	return nil
}

func (s *Store) LastCommit() (storage.CommitMetadata, error) {
	var meta storage.CommitMetadata
	err := s.db.View(retrieve(storage.LastCommitKey(), &meta))
	return meta, err
}

func (s *Store) Events(sequence uint64) (types.EventLog, error) {
	var data []byte
	err := s.db.View(retrieveRaw(storage.EventsKey(sequence), &data))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("events of commit %d: %w", sequence, storage.ErrNotFound)
	}
	return storage.DecodeEvents(data)
}

// update runs f in a read-write transaction, retrying on conflicts.
func (s *Store) update(f func(*badger.Txn) error) error {
	backoff := retry.WithMaxRetries(conflictRetries, retry.NewExponential(conflictBackoff))

	return retry.Do(context.Background(), backoff, func(ctx context.Context) error {
		err := s.db.Update(f)
		if errors.Is(err, badger.ErrConflict) {
			s.log.Debug().Err(err).Msg("transaction conflict, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *Store) Commit(output *vmext.SessionOutput) (storage.CommitMetadata, error) {
	var meta storage.CommitMetadata

	err := s.update(func(tx *badger.Txn) error {
		var last storage.CommitMetadata
		sequence := uint64(1)

		err := retrieve(storage.LastCommitKey(), &last)(tx)
		switch {
		case err == nil:
			sequence = last.Sequence + 1
		case !errors.Is(err, storage.ErrNotFound):
			return fmt.Errorf("could not read last commit: %w", err)
		}

		meta, err = storage.ApplyOutput(txnWriter{tx: tx}, sequence, output)
		if err != nil {
			return err
		}
		return upsert(storage.LastCommitKey(), meta)(tx)
	})
	if err != nil {
		return storage.CommitMetadata{}, fmt.Errorf("could not commit %s: %w", output.SessionID(), err)
	}

	s.log.Debug().
		Uint64("sequence", meta.Sequence).
		Str("session_id", meta.SessionID).
		Int("writes", meta.Writes).
		Int("events", meta.Events).
		Msg("session output committed")

	return meta, nil
}

func (s *Store) MaterializeDeltas(deltas types.AggregatorDeltaSet) error {
	if deltas.IsEmpty() {
		return nil
	}

	return s.update(func(tx *badger.Txn) error {
		return storage.MaterializeDeltas(txnSnapshot{tx: tx}, txnWriter{tx: tx}, deltas)
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
