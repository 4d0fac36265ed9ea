package badger_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-vmext/storage"
	"github.com/onflow/flow-vmext/storage/badger"
	"github.com/onflow/flow-vmext/storage/storetest"
	"github.com/onflow/flow-vmext/utils/unittest"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		dir := unittest.TempDir(t)
		t.Cleanup(func() { _ = os.RemoveAll(dir) })

		return badger.NewStore(unittest.BadgerDB(t, dir), unittest.Logger())
	})
}

func TestOpenStore(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		store, err := badger.OpenStore(dir, unittest.Logger())
		require.NoError(t, err)
		defer store.Close()

		value, err := store.Get(unittest.ResourceKeyFixture())
		require.NoError(t, err)
		require.Nil(t, value)
	})
}
