package address_lookup_table

import (
	"bytes"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/code-payments/code-alt/pkg/solana"
)

// DecodeError indicates an account snapshot did not have the expected shape.
type DecodeError struct {
	// Path is the dotted location of the offending value within the snapshot.
	Path   string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid lookup table snapshot at %s: %s", e.Path, e.Reason)
}

const (
	snapshotRoot = "$"

	infoPath = "data.parsed.info"
)

// DecodeSnapshot decodes a jsonParsed getAccountInfo value into a LookupTable.
// The snapshot must be shaped as:
//
//	{
//	  "data": {
//	    "parsed": {
//	      "info": {
//	        "authority": "<base58>" | null,
//	        "addresses": ["<base58>", ...],
//	        "deactivationSlot": "<u64>",
//	        "lastExtendedSlot": "<u64>",
//	        "lastExtendedSlotStartIndex": <integer>
//	      }
//	    }
//	  }
//	}
//
// Any other shape results in a *DecodeError.
func DecodeSnapshot(snapshot interface{}) (*LookupTable, error) {
	info, err := lookupObject(snapshot, snapshotRoot, "data", "parsed", "info")
	if err != nil {
		return nil, err
	}

	authority, err := decodeAuthority(info)
	if err != nil {
		return nil, err
	}

	addresses, err := decodeAddresses(info)
	if err != nil {
		return nil, err
	}

	deactivationSlot, err := decodeSlot(info, "deactivationSlot")
	if err != nil {
		return nil, err
	}

	lastExtendedSlot, err := decodeSlot(info, "lastExtendedSlot")
	if err != nil {
		return nil, err
	}

	startIndex, err := decodeStartIndex(info)
	if err != nil {
		return nil, err
	}

	return &LookupTable{
		Authority:                  authority,
		Addresses:                  addresses,
		DeactivationSlot:           deactivationSlot,
		LastExtendedSlot:           lastExtendedSlot,
		LastExtendedSlotStartIndex: startIndex,
	}, nil
}

// DecodeSnapshotJSON is like DecodeSnapshot, but takes the JSON encoded snapshot.
func DecodeSnapshotJSON(data []byte) (*LookupTable, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var snapshot interface{}
	if err := decoder.Decode(&snapshot); err != nil {
		return nil, &DecodeError{Path: snapshotRoot, Reason: err.Error()}
	}

	return DecodeSnapshot(snapshot)
}

func lookupObject(value interface{}, path string, keys ...string) (map[string]interface{}, error) {
	current, ok := value.(map[string]interface{})
	if !ok {
		return nil, &DecodeError{Path: path, Reason: "expected an object"}
	}

	for _, key := range keys {
		path = joinPath(path, key)

		next, ok := current[key]
		if !ok || next == nil {
			return nil, &DecodeError{Path: path, Reason: "missing"}
		}

		current, ok = next.(map[string]interface{})
		if !ok {
			return nil, &DecodeError{Path: path, Reason: "expected an object"}
		}
	}

	return current, nil
}

func joinPath(path, key string) string {
	if path == snapshotRoot {
		return key
	}
	return path + "." + key
}

func fieldPath(field string) string {
	return infoPath + "." + field
}

func decodeAuthority(info map[string]interface{}) (Authority, error) {
	value, ok := info["authority"]
	if !ok || value == nil {
		return FrozenAuthority(), nil
	}

	encoded, ok := value.(string)
	if !ok {
		return Authority{}, &DecodeError{Path: fieldPath("authority"), Reason: "expected a base58 string"}
	}

	key, err := solana.PublicKeyFromString(encoded)
	if err != nil {
		return Authority{}, &DecodeError{Path: fieldPath("authority"), Reason: err.Error()}
	}
	return PresentAuthority(key), nil
}

func decodeAddresses(info map[string]interface{}) ([]ed25519.PublicKey, error) {
	value, ok := info["addresses"]
	if !ok || value == nil {
		return nil, &DecodeError{Path: fieldPath("addresses"), Reason: "missing"}
	}

	list, ok := value.([]interface{})
	if !ok {
		return nil, &DecodeError{Path: fieldPath("addresses"), Reason: "expected a list"}
	}
	if len(list) > MaxAddresses {
		return nil, &DecodeError{Path: fieldPath("addresses"), Reason: fmt.Sprintf("more than %d addresses", MaxAddresses)}
	}

	addresses := make([]ed25519.PublicKey, len(list))
	for i, element := range list {
		path := fmt.Sprintf("%s[%d]", fieldPath("addresses"), i)

		encoded, ok := element.(string)
		if !ok {
			return nil, &DecodeError{Path: path, Reason: "expected a base58 string"}
		}

		key, err := solana.PublicKeyFromString(encoded)
		if err != nil {
			return nil, &DecodeError{Path: path, Reason: err.Error()}
		}
		addresses[i] = key
	}

	return addresses, nil
}

// decodeSlot parses a slot, which the RPC encodes as a base-10 string to
// avoid precision loss in JSON numbers.
func decodeSlot(info map[string]interface{}, field string) (uint64, error) {
	value, ok := info[field]
	if !ok || value == nil {
		return 0, &DecodeError{Path: fieldPath(field), Reason: "missing"}
	}

	encoded, ok := value.(string)
	if !ok {
		return 0, &DecodeError{Path: fieldPath(field), Reason: "expected a string encoded integer"}
	}

	slot, err := strconv.ParseUint(encoded, 10, 64)
	if err != nil {
		return 0, &DecodeError{Path: fieldPath(field), Reason: fmt.Sprintf("%q is not an unsigned 64-bit integer", encoded)}
	}
	return slot, nil
}

func decodeStartIndex(info map[string]interface{}) (uint8, error) {
	const field = "lastExtendedSlotStartIndex"

	value, ok := info[field]
	if !ok || value == nil {
		return 0, &DecodeError{Path: fieldPath(field), Reason: "missing"}
	}

	index, err := toUint64(value)
	if err != nil {
		return 0, &DecodeError{Path: fieldPath(field), Reason: "expected a non-negative integer"}
	}
	if index > math.MaxUint8 {
		return 0, &DecodeError{Path: fieldPath(field), Reason: fmt.Sprintf("%d exceeds %d", index, math.MaxUint8)}
	}
	return uint8(index), nil
}
