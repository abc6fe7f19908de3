package address_lookup_table

import (
	"bytes"
	"crypto/ed25519"
	"fmt"
	"math"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"

	"github.com/code-payments/code-alt/pkg/solana/binary"
)

var (
	ErrInvalidAccountSize = errors.New("invalid address lookup table account size")
	ErrInvalidAccountType = errors.New("invalid account type")
)

const (
	altDescriminator = 1

	// MetadataSize is the size of the lookup table account header that
	// precedes the stored addresses.
	MetadataSize = 56

	// MaxAddresses is the most addresses a single table can hold.
	MaxAddresses = 256

	// NotDeactivatedSlot is the deactivation slot of a table that has not been
	// deactivated.
	NotDeactivatedSlot = math.MaxUint64

	optionSize = 1
)

// ByteSize returns the account size of a table holding keyCount addresses,
// which determines the lamports needed for rent exemption.
func ByteSize(keyCount uint64) uint64 {
	return MetadataSize + keyCount*ed25519.PublicKeySize
}

// Authority is the authority of a lookup table. A table without an authority
// is frozen and can no longer be modified.
type Authority struct {
	key ed25519.PublicKey
}

// PresentAuthority returns an Authority held by a copy of key. Anything other
// than a 32 byte key yields the frozen authority.
func PresentAuthority(key ed25519.PublicKey) Authority {
	if len(key) != ed25519.PublicKeySize {
		return FrozenAuthority()
	}
	return Authority{key: copyKey(key)}
}

// FrozenAuthority returns the Authority of a frozen table.
func FrozenAuthority() Authority {
	return Authority{}
}

// Key returns the authority key, and false if the table is frozen.
func (a Authority) Key() (ed25519.PublicKey, bool) {
	if a.key == nil {
		return nil, false
	}
	return a.key, true
}

func (a Authority) IsFrozen() bool {
	return a.key == nil
}

func (a Authority) Equal(other Authority) bool {
	if a.IsFrozen() || other.IsFrozen() {
		return a.IsFrozen() == other.IsFrozen()
	}
	return bytes.Equal(a.key, other.key)
}

func (a Authority) String() string {
	if a.IsFrozen() {
		return "frozen"
	}
	return base58.Encode(a.key)
}

// LookupTable is a decoded address lookup table account.
type LookupTable struct {
	Authority                  Authority
	Addresses                  []ed25519.PublicKey
	DeactivationSlot           uint64
	LastExtendedSlot           uint64
	LastExtendedSlotStartIndex uint8
}

// IsActive reports whether the table has not been deactivated.
func (t *LookupTable) IsActive() bool {
	return t.DeactivationSlot == NotDeactivatedSlot
}

func (t *LookupTable) IsFrozen() bool {
	return t.Authority.IsFrozen()
}

// ByteSize returns the size of the account backing this table.
func (t *LookupTable) ByteSize() uint64 {
	return ByteSize(uint64(len(t.Addresses)))
}

// Unmarshal decodes raw lookup table account data.
//
// Reference: https://github.com/solana-program/address-lookup-table/blob/main/program/src/state.rs
//
//	u32  discriminator (1)
//	u64  deactivation_slot
//	u64  last_extended_slot
//	u8   last_extended_slot_start_index
//	u8   has_authority
//	[32] authority
//	[2]  padding
//	[32] addresses...
func (t *LookupTable) Unmarshal(data []byte) error {
	if len(data) < MetadataSize {
		return ErrInvalidAccountSize
	}

	var offset int

	var descriminator uint32
	binary.GetUint32(data[offset:], &descriminator, &offset)
	if descriminator != altDescriminator {
		return ErrInvalidAccountType
	}

	addressBufferSize := len(data) - MetadataSize
	addressCount := addressBufferSize / ed25519.PublicKeySize
	if addressBufferSize%ed25519.PublicKeySize != 0 {
		return ErrInvalidAccountSize
	} else if addressCount > MaxAddresses {
		return ErrInvalidAccountSize
	}

	binary.GetUint64(data[offset:], &t.DeactivationSlot, &offset)
	binary.GetUint64(data[offset:], &t.LastExtendedSlot, &offset)
	binary.GetUint8(data[offset:], &t.LastExtendedSlotStartIndex, &offset)

	var authority ed25519.PublicKey
	if binary.GetOptionalKey32(data[offset:], &authority, &offset, optionSize) {
		t.Authority = PresentAuthority(authority)
	} else {
		t.Authority = FrozenAuthority()
	}

	offset = MetadataSize

	t.Addresses = make([]ed25519.PublicKey, addressCount)
	for i := range t.Addresses {
		binary.GetKey32(data[offset:], &t.Addresses[i], &offset)
	}

	return nil
}

func (t *LookupTable) String() string {
	var addresses strings.Builder
	addresses.WriteString("{")
	for i, address := range t.Addresses {
		fmt.Fprintf(&addresses, "%d:%s,", i, base58.Encode(address))
	}
	addresses.WriteString("}")

	return fmt.Sprintf(
		"AddressLookupTable{deactivation_slot=%d,last_extended_slot=%d,last_extended_slot_start_index=%d,authority=%s,addresses=%s}",
		t.DeactivationSlot,
		t.LastExtendedSlot,
		t.LastExtendedSlotStartIndex,
		t.Authority.String(),
		addresses.String(),
	)
}
