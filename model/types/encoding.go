package types

import (
	"github.com/fxamacker/cbor/v2"
)

var (
	canonicalEncMode cbor.EncMode
	decMode          cbor.DecMode
)

func init() {
	var err error
	canonicalEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
	if err != nil {
		panic(err)
	}
}

// Marshal encodes v with the deterministic CBOR encoding used for every value
// which may end up in a change set or event log.
func Marshal(v interface{}) ([]byte, error) {
	return canonicalEncMode.Marshal(v)
}

// Unmarshal decodes CBOR data produced by Marshal.
func Unmarshal(data []byte, v interface{}) error {
	return decMode.Unmarshal(data, v)
}
