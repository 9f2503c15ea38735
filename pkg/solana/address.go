package solana

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/mr-tron/base58/base58"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32

	pdaMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")
	ErrInvalidPublicKey      = errors.New("invalid public key")
	ErrNoViableBumpSeed      = errors.New("unable to find a viable program address bump seed")
)

// ZeroAddress is the all-zero address. It is the sentinel for unset address
// fields in program state.
var ZeroAddress = ed25519.PublicKey(make([]byte, ed25519.PublicKeySize))

// CreateProgramAddress hashes the seeds, the program and the PDA marker into a
// candidate address.
//
// A program address must not be a valid compressed curve point, otherwise a
// private key could exist for it. ErrInvalidPublicKey is returned when the
// candidate lands on the curve.
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(program)
	h.Write([]byte(pdaMarker))

	var candidate [32]byte
	copy(candidate[:], h.Sum(nil))

	if IsOnCurve(candidate[:]) {
		return nil, ErrInvalidPublicKey
	}
	return candidate[:], nil
}

// FindProgramAddressAndBump searches bump seeds from 255 downward and returns
// the first off-curve address along with the bump that produced it.
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)

	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}

		address, err := CreateProgramAddress(program, withBump...)
		if err == ErrInvalidPublicKey {
			continue
		} else if err != nil {
			return nil, 0, err
		}
		return address, uint8(bump), nil
	}
	return nil, 0, ErrNoViableBumpSeed
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	address, _, err := FindProgramAddressAndBump(program, seeds...)
	return address, err
}

// IsOnCurve reports whether the 32 bytes decode to a point on the ed25519 curve.
//
// The extended group element is internal to golang.org/x/crypto, so the
// decode check relies on the edwards25519 fork.
func IsOnCurve(key []byte) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}

	var raw [32]byte
	copy(raw[:], key)

	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(&raw)
}

// ParseAddress decodes a base58 address and validates its length.
func ParseAddress(value string) (ed25519.PublicKey, error) {
	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base58 address")
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, errors.Errorf("invalid address length: %d", len(decoded))
	}
	return decoded, nil
}

// MustParseAddress is ParseAddress for compile-time constants.
func MustParseAddress(value string) ed25519.PublicKey {
	address, err := ParseAddress(value)
	if err != nil {
		panic(err)
	}
	return address
}

// IsZeroAddress reports whether the address is empty or all zero bytes.
func IsZeroAddress(address ed25519.PublicKey) bool {
	return len(address) == 0 || bytes.Equal(address, ZeroAddress)
}
