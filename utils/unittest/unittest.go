package unittest

import (
	"os"
	"testing"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/require"
)

// RequireReturnBefore requires that the given function returns before the
// duration expires.
func RequireReturnsBefore(t testing.TB, f func(), duration time.Duration) {
	done := make(chan struct{})

	go func() {
		f()
		close(done)
	}()

	select {
	case <-time.After(duration):
		require.Fail(t, "function did not return in time")
	case <-done:
		return
	}
}

func TempDir(t testing.TB) string {
	dir, err := os.MkdirTemp("", "vmext-testing-temp-")
	require.NoError(t, err)
	return dir
}

func RunWithTempDir(t testing.TB, f func(string)) {
	dbDir := TempDir(t)
	defer os.RemoveAll(dbDir)
	f(dbDir)
}

func BadgerDB(t testing.TB, dir string) *badger.DB {
	opts := badger.
		DefaultOptions(dir).
		WithKeepL0InMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	require.NoError(t, err)
	return db
}

func RunWithBadgerDB(t testing.TB, f func(*badger.DB)) {
	RunWithTempDir(t, func(dir string) {
		db := BadgerDB(t, dir)
		defer db.Close()
		f(db)
	})
}

func PebbleDB(t testing.TB, dir string) *pebble.DB {
	db, err := pebble.Open(dir, &pebble.Options{})
	require.NoError(t, err)
	return db
}

func RunWithPebbleDB(t testing.TB, f func(*pebble.DB)) {
	RunWithTempDir(t, func(dir string) {
		db := PebbleDB(t, dir)
		defer db.Close()
		f(db)
	})
}
