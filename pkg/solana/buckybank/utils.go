package buckybank

import (
	"bytes"
	"crypto/ed25519"

	"github.com/mr-tron/base58"

	"github.com/code-payments/bucky-bank-server/pkg/solana/binary"
)

func newEncoder(discriminator []byte, size int) *binary.Encoder {
	e := binary.NewEncoder(size)
	e.PutRaw(discriminator)
	return e
}

// newDecoder validates the discriminator and returns a decoder positioned
// after it.
func newDecoder(data, discriminator []byte, minSize int, invalid error) (*binary.Decoder, error) {
	if len(data) < minSize || !bytes.HasPrefix(data, discriminator) {
		return nil, invalid
	}
	return binary.NewDecoder(data[DiscriminatorSize:]), nil
}

// padTo zero-extends b to size, matching space allocated for max-length
// strings that are not fully used.
func padTo(b []byte, size int) []byte {
	if len(b) >= size {
		return b
	}
	return append(b, make([]byte, size-len(b))...)
}

func cloneKey(key ed25519.PublicKey) ed25519.PublicKey {
	if key == nil {
		return nil
	}
	return append(ed25519.PublicKey(nil), key...)
}

func encodeKey(key ed25519.PublicKey) string {
	if key == nil {
		return ""
	}
	return base58.Encode(key)
}
