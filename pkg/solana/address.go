package solana

import (
	"crypto/ed25519"
	"crypto/sha256"
	"math"

	"github.com/jdgcs/ed25519/edwards25519"
	"github.com/pkg/errors"
)

const (
	maxSeeds      = 16
	maxSeedLength = 32
)

var (
	ErrTooManySeeds          = errors.New("too many seeds")
	ErrMaxSeedLengthExceeded = errors.New("max seed length exceeded")

	ErrInvalidPublicKey = errors.New("invalid public key")

	// ErrDerivationNotFound is returned when no bump seed in [0, 255] yields an
	// off-curve address. The result is deterministic, so it is never retried.
	ErrDerivationNotFound = errors.New("unable to find a viable program address bump seed")
)

var (
	programHashCtor = sha256.New
)

var programDerivedAddressMarker = []byte("ProgramDerivedAddress")

// CreateProgramAddress hashes seeds, program and the PDA marker into a candidate
// address. Candidates on the ed25519 curve are rejected with ErrInvalidPublicKey,
// since a program address must have no private key.
func CreateProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	if len(seeds) > maxSeeds {
		return nil, ErrTooManySeeds
	}

	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return nil, ErrMaxSeedLengthExceeded
		}
	}

	// hash.Hash writes never fail.
	h := programHashCtor()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(program)
	h.Write(programDerivedAddressMarker)

	pub := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(pub, h.Sum(nil))

	if IsOnCurve(pub) {
		return nil, ErrInvalidPublicKey
	}

	return pub, nil
}

// FindProgramAddressAndBump appends a bump seed to seeds, trying 255 down to
// and including 0, and returns the first off-curve address with its bump.
// ErrDerivationNotFound is returned when all 256 candidates are on the curve.
// The bump takes one of the 16 seed slots.
func FindProgramAddressAndBump(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, uint8, error) {
	// The bump is appended to a copy; the caller's seeds are left untouched.
	candidate := make([][]byte, len(seeds), len(seeds)+1)
	copy(candidate, seeds)

	for bump := math.MaxUint8; bump >= 0; bump-- {
		pub, err := CreateProgramAddress(program, append(candidate, []byte{uint8(bump)})...)
		if err == nil {
			return pub, uint8(bump), nil
		}
		if err != ErrInvalidPublicKey {
			return nil, 0, err
		}
	}

	return nil, 0, ErrDerivationNotFound
}

// FindProgramAddress is FindProgramAddressAndBump without the bump.
func FindProgramAddress(program ed25519.PublicKey, seeds ...[]byte) (ed25519.PublicKey, error) {
	pub, _, err := FindProgramAddressAndBump(program, seeds...)
	return pub, err
}

// IsOnCurve reports whether key is a valid compressed ed25519 point. Keys that
// are not 32 bytes long are never on the curve.
func IsOnCurve(key []byte) bool {
	if len(key) != ed25519.PublicKeySize {
		return false
	}

	var compressed [32]byte
	copy(compressed[:], key)

	var point edwards25519.ExtendedGroupElement
	return point.FromBytes(&compressed)
}
