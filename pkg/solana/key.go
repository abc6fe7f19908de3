package solana

import (
	"crypto/ed25519"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrInvalidPublicKeyLength   = errors.New("public key must be 32 bytes")
	ErrInvalidPublicKeyEncoding = errors.New("public key is not valid base58")
)

// ValidatePublicKey checks that the provided value is a well formed public key.
//
// Only the length is checked. Program derived addresses are deliberately off the
// ed25519 curve, so curve membership is not a requirement for a valid key.
func ValidatePublicKey(key []byte) error {
	if len(key) != ed25519.PublicKeySize {
		return ErrInvalidPublicKeyLength
	}
	return nil
}

// PublicKeyFromBytes returns a copy of the provided bytes as a public key.
func PublicKeyFromBytes(value []byte) (ed25519.PublicKey, error) {
	if err := ValidatePublicKey(value); err != nil {
		return nil, err
	}

	key := make(ed25519.PublicKey, ed25519.PublicKeySize)
	copy(key, value)
	return key, nil
}

// PublicKeyFromString parses a base58 encoded public key.
func PublicKeyFromString(value string) (ed25519.PublicKey, error) {
	if len(value) == 0 {
		return nil, ErrInvalidPublicKeyEncoding
	}

	decoded, err := base58.Decode(value)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPublicKeyEncoding, err.Error())
	}

	return PublicKeyFromBytes(decoded)
}

// MustPublicKeyFromString is like PublicKeyFromString, but panics on error. It
// is intended for well known constants.
func MustPublicKeyFromString(value string) ed25519.PublicKey {
	key, err := PublicKeyFromString(value)
	if err != nil {
		panic(err)
	}
	return key
}
