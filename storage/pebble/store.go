package pebble

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/onflow/flow-vmext/model/types"
	"github.com/onflow/flow-vmext/storage"
	"github.com/onflow/flow-vmext/vmext"
)

// Store is a pebble backed state store.  Commits are serialized; reads may
// run concurrently with them.
type Store struct {
	db  *pebble.DB
	log zerolog.Logger

	commitLock sync.Mutex
}

var _ storage.Store = (*Store)(nil)

func NewStore(db *pebble.DB, log zerolog.Logger) *Store {
	return &Store{
		db:  db,
		log: log.With().Str("component", "pebble_store").Logger(),
	}
}

// OpenStore opens the pebble database in dir.
func OpenStore(dir string, log zerolog.Logger) (*Store, error) {
	cache := pebble.NewCache(1 << 20)
	defer cache.Unref()

	db, err := pebble.Open(dir, &pebble.Options{
		Cache:              cache,
		FormatMajorVersion: pebble.FormatNewest,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return NewStore(db, log), nil
}

// Get returns the stored value of key, or nil if it does not exist.
func (s *Store) Get(key types.StateKey) ([]byte, error) {
	var value []byte
	err := retrieveRaw(storage.StateValueKey(key), &value)(s.db)
	if err != nil {
		return nil, fmt.Errorf("could not get %s: %w", key, err)
	}
	return value, nil
}

// Snapshot pins the current state of the database.
func (s *Store) Snapshot() (storage.ReadSnapshot, error) {
	return &readSnapshot{snap: s.db.NewSnapshot()}, nil
}

type readSnapshot struct {
	snap *pebble.Snapshot
}

func (r *readSnapshot) Get(key types.StateKey) ([]byte, error) {
	var value []byte
	err := retrieveRaw(storage.StateValueKey(key), &value)(r.snap)
	if err != nil {
		return nil, fmt.Errorf("could not get %s: %w", key, err)
	}
	return value, nil
}

func (r *readSnapshot) Close() error {
	return r.snap.Close()
}

func (s *Store) LastCommit() (storage.CommitMetadata, error) {
	var meta storage.CommitMetadata
	err := retrieve(storage.LastCommitKey(), &meta)(s.db)
	return meta, err
}

func (s *Store) Events(sequence uint64) (types.EventLog, error) {
	var data []byte
	err := retrieveRaw(storage.EventsKey(sequence), &data)(s.db)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("events of commit %d: %w", sequence, storage.ErrNotFound)
	}
	return storage.DecodeEvents(data)
}

func (s *Store) nextSequence() (uint64, error) {
	last, err := s.LastCommit()
	if errors.Is(err, storage.ErrNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not read last commit: %w", err)
	}
	return last.Sequence + 1, nil
}

func (s *Store) Commit(output *vmext.SessionOutput) (storage.CommitMetadata, error) {
	s.commitLock.Lock()
	defer s.commitLock.Unlock()

	sequence, err := s.nextSequence()
	if err != nil {
		return storage.CommitMetadata{}, err
	}

	batch := s.db.NewBatch()
	defer batch.Close()

	meta, err := storage.ApplyOutput(batchWriter{batch: batch}, sequence, output)
	if err != nil {
		return storage.CommitMetadata{}, err
	}

	err = insert(storage.LastCommitKey(), meta)(batch)
	if err != nil {
		return storage.CommitMetadata{}, err
	}

	err = batch.Commit(pebble.Sync)
	if err != nil {
		return storage.CommitMetadata{}, fmt.Errorf("failed to commit batch: %w", err)
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

	s.commitLock.Lock()
	defer s.commitLock.Unlock()

	batch := s.db.NewBatch()
	defer batch.Close()

	err := storage.MaterializeDeltas(s, batchWriter{batch: batch}, deltas)
	if err != nil {
		return err
	}

	err = batch.Commit(pebble.Sync)
	if err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	var errs *multierror.Error
	err := s.db.Flush()
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to flush db: %w", err))
	}
	err = s.db.Close()
	if err != nil {
		errs = multierror.Append(errs, fmt.Errorf("failed to close db: %w", err))
	}
	return errs.ErrorOrNil()
}
