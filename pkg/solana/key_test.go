package solana

import (
	"crypto/ed25519"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	assert.NoError(t, ValidatePublicKey(pub))
	assert.Equal(t, ErrInvalidPublicKeyLength, ValidatePublicKey(nil))
	assert.Equal(t, ErrInvalidPublicKeyLength, ValidatePublicKey(pub[:31]))
	assert.Equal(t, ErrInvalidPublicKeyLength, ValidatePublicKey(append(pub, 0)))

	// Off-curve program addresses are valid keys.
	pda, err := FindProgramAddress(pub, []byte("seed"))
	require.NoError(t, err)
	assert.NoError(t, ValidatePublicKey(pda))
}

func TestPublicKeyFromBytes(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	key, err := PublicKeyFromBytes(pub)
	require.NoError(t, err)
	assert.Equal(t, pub, key)

	key[0]++
	assert.NotEqual(t, pub, key)

	_, err = PublicKeyFromBytes(pub[:16])
	assert.Equal(t, ErrInvalidPublicKeyLength, err)
}

func TestPublicKeyFromString(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	key, err := PublicKeyFromString(base58.Encode(pub))
	require.NoError(t, err)
	assert.Equal(t, pub, key)

	_, err = PublicKeyFromString("")
	assert.Equal(t, ErrInvalidPublicKeyEncoding, err)

	_, err = PublicKeyFromString("0OIl")
	assert.Equal(t, ErrInvalidPublicKeyEncoding, errors.Cause(err))

	_, err = PublicKeyFromString(base58.Encode(pub[:20]))
	assert.Equal(t, ErrInvalidPublicKeyLength, err)
}

func TestMustPublicKeyFromString(t *testing.T) {
	assert.Len(t, MustPublicKeyFromString("11111111111111111111111111111111"), 32)
	assert.Panics(t, func() {
		MustPublicKeyFromString("not a key")
	})
}
