package resolver

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/onflow/flow-vmext/model/types"
)

const DefaultCacheSize = 10_000

type cachedValue struct {
	value []byte
}

// CachedStorageSnapshot caches reads of an immutable storage snapshot,
// including absent keys.  Errors are never cached.
type CachedStorageSnapshot struct {
	backend StorageSnapshot
	cache   *lru.Cache[types.StateKey, cachedValue]
}

var _ StorageSnapshot = (*CachedStorageSnapshot)(nil)

func NewCachedStorageSnapshot(
	backend StorageSnapshot,
	size int,
) (
	*CachedStorageSnapshot,
	error,
) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[types.StateKey, cachedValue](size)
	if err != nil {
		return nil, fmt.Errorf("could not create snapshot cache: %w", err)
	}
	return &CachedStorageSnapshot{
		backend: backend,
		cache:   cache,
	}, nil
}

func (snapshot *CachedStorageSnapshot) Get(key types.StateKey) ([]byte, error) {
	if cached, ok := snapshot.cache.Get(key); ok {
		return cached.value, nil
	}

	value, err := snapshot.backend.Get(key)
	if err != nil {
		return nil, err
	}

	snapshot.cache.Add(key, cachedValue{value: value})
	return value, nil
}

// NewCachedResolver returns the cached-snapshot resolver variant.
func NewCachedResolver(
	backend StorageSnapshot,
	size int,
) (
	*SnapshotResolver,
	error,
) {
	cached, err := NewCachedStorageSnapshot(backend, size)
	if err != nil {
		return nil, err
	}
	return NewSnapshotResolver(cached), nil
}
