package environment

import (
	"encoding/binary"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20"

	"github.com/onflow/flow-vmext/model/types"
)

type RandomGenerator interface {
	// Random returns a random uint64
	Random() (uint64, error)
}

var _ RandomGenerator = (*sessionRandomGenerator)(nil)

// sessionRandomGenerator is a ChaCha20 keystream keyed with the session
// seed.  Every session with the same id observes the same sequence.
type sessionRandomGenerator struct {
	seed [32]byte

	prg        *chacha20.Cipher
	createOnce sync.Once
	createErr  error
}

func NewRandomGenerator(id types.SessionID) RandomGenerator {
	return &sessionRandomGenerator{
		seed: id.Seed(),
	}
}

// maybeCreateRandomGenerator keys the cipher lazily, since most sessions
// never ask for randomness.
func (gen *sessionRandomGenerator) maybeCreateRandomGenerator() error {
	gen.createOnce.Do(func() {
		nonce := make([]byte, chacha20.NonceSize)
		gen.prg, gen.createErr = chacha20.NewUnauthenticatedCipher(
			gen.seed[:],
			nonce)
		if gen.createErr != nil {
			gen.createErr = fmt.Errorf(
				"failed to create a PRG from session seed: %w",
				gen.createErr)
		}
	})

	return gen.createErr
}

// Random returns the next 8 bytes of the keystream.  This is not thread
// safe; a session runs its calls sequentially.
func (gen *sessionRandomGenerator) Random() (uint64, error) {
	err := gen.maybeCreateRandomGenerator()
	if err != nil {
		return 0, err
	}

	buf := make([]byte, 8)
	gen.prg.XORKeyStream(buf, buf)
	return binary.LittleEndian.Uint64(buf), nil
}
