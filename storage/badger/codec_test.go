package badger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/onflow/flow-vmext/storage"
)

func TestCodec(t *testing.T) {
	meta := storage.CommitMetadata{Sequence: 3, SessionID: "void", Status: "success", Writes: 2}

	encoded, err := encodeEntity(meta)
	require.NoError(t, err)

	var decoded storage.CommitMetadata
	require.NoError(t, decodeEntity(encoded, &decoded))
	require.Equal(t, meta, decoded)

	err = decodeEntity([]byte{0xff, 0xff, 0xff}, &decoded)
	require.ErrorIs(t, err, errUncompressedValue)
}
