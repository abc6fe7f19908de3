package address_lookup_table

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/code-payments/code-alt/pkg/solana"
)

// Option names, as accepted by the New*Options factories.
const (
	FieldAuthority           = "authority"
	FieldAuthorityShouldSign = "authority_should_sign"
	FieldLookupTable         = "lookup_table"
	FieldNewKeys             = "new_keys"
	FieldPayer               = "payer"
	FieldRecentSlot          = "recent_slot"
	FieldRecipient           = "recipient"
)

const (
	reasonRequired   = "is required"
	reasonPublicKey  = "must be a 32 byte public key"
	reasonUint64     = "must be a non-negative integer"
	reasonBool       = "must be a boolean"
	reasonPublicKeys = "must be a list of public keys"
)

// ValidationError indicates a caller supplied option was missing or malformed.
// No instruction is built when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid option %s: %s", e.Field, e.Reason)
}

func newValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

type CreateOptions struct {
	Authority  ed25519.PublicKey
	Payer      ed25519.PublicKey
	RecentSlot uint64

	// AuthorityShouldSign marks the authority as a signer of the create
	// instruction. Defaults to false.
	AuthorityShouldSign bool
}

type FreezeOptions struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
}

type ExtendOptions struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
	NewKeys     []ed25519.PublicKey

	// Payer funds the extra rent of the extension. When nil, the table must
	// already hold enough lamports.
	Payer ed25519.PublicKey
}

type DeactivateOptions struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
}

type CloseOptions struct {
	LookupTable ed25519.PublicKey
	Authority   ed25519.PublicKey
	Recipient   ed25519.PublicKey
}

// NewCreateOptions validates raw create options. Unknown keys are ignored.
func NewCreateOptions(raw map[string]interface{}) (*CreateOptions, error) {
	r := rawOptions(raw)

	authority, err := r.requireKey(FieldAuthority)
	if err != nil {
		return nil, err
	}
	payer, err := r.requireKey(FieldPayer)
	if err != nil {
		return nil, err
	}
	recentSlot, err := r.requireUint64(FieldRecentSlot)
	if err != nil {
		return nil, err
	}
	shouldSign, err := r.optionalBool(FieldAuthorityShouldSign, false)
	if err != nil {
		return nil, err
	}

	return &CreateOptions{
		Authority:           authority,
		Payer:               payer,
		RecentSlot:          recentSlot,
		AuthorityShouldSign: shouldSign,
	}, nil
}

// NewFreezeOptions validates raw freeze options. Unknown keys are ignored.
func NewFreezeOptions(raw map[string]interface{}) (*FreezeOptions, error) {
	r := rawOptions(raw)

	lookupTable, err := r.requireKey(FieldLookupTable)
	if err != nil {
		return nil, err
	}
	authority, err := r.requireKey(FieldAuthority)
	if err != nil {
		return nil, err
	}

	return &FreezeOptions{
		LookupTable: lookupTable,
		Authority:   authority,
	}, nil
}

// NewExtendOptions validates raw extend options. Unknown keys are ignored.
func NewExtendOptions(raw map[string]interface{}) (*ExtendOptions, error) {
	r := rawOptions(raw)

	lookupTable, err := r.requireKey(FieldLookupTable)
	if err != nil {
		return nil, err
	}
	authority, err := r.requireKey(FieldAuthority)
	if err != nil {
		return nil, err
	}
	newKeys, err := r.requireKeyList(FieldNewKeys)
	if err != nil {
		return nil, err
	}
	payer, err := r.optionalKey(FieldPayer)
	if err != nil {
		return nil, err
	}

	return &ExtendOptions{
		LookupTable: lookupTable,
		Authority:   authority,
		NewKeys:     newKeys,
		Payer:       payer,
	}, nil
}

// NewDeactivateOptions validates raw deactivate options. Unknown keys are ignored.
func NewDeactivateOptions(raw map[string]interface{}) (*DeactivateOptions, error) {
	r := rawOptions(raw)

	lookupTable, err := r.requireKey(FieldLookupTable)
	if err != nil {
		return nil, err
	}
	authority, err := r.requireKey(FieldAuthority)
	if err != nil {
		return nil, err
	}

	return &DeactivateOptions{
		LookupTable: lookupTable,
		Authority:   authority,
	}, nil
}

// NewCloseOptions validates raw close options. Unknown keys are ignored.
func NewCloseOptions(raw map[string]interface{}) (*CloseOptions, error) {
	r := rawOptions(raw)

	lookupTable, err := r.requireKey(FieldLookupTable)
	if err != nil {
		return nil, err
	}
	authority, err := r.requireKey(FieldAuthority)
	if err != nil {
		return nil, err
	}
	recipient, err := r.requireKey(FieldRecipient)
	if err != nil {
		return nil, err
	}

	return &CloseOptions{
		LookupTable: lookupTable,
		Authority:   authority,
		Recipient:   recipient,
	}, nil
}

func (o *CreateOptions) Validate() error {
	if o == nil {
		return newValidationError(FieldAuthority, reasonRequired)
	}
	return validateKeys(
		keyField{FieldAuthority, o.Authority},
		keyField{FieldPayer, o.Payer},
	)
}

func (o *FreezeOptions) Validate() error {
	if o == nil {
		return newValidationError(FieldLookupTable, reasonRequired)
	}
	return validateKeys(
		keyField{FieldLookupTable, o.LookupTable},
		keyField{FieldAuthority, o.Authority},
	)
}

func (o *ExtendOptions) Validate() error {
	if o == nil {
		return newValidationError(FieldLookupTable, reasonRequired)
	}
	err := validateKeys(
		keyField{FieldLookupTable, o.LookupTable},
		keyField{FieldAuthority, o.Authority},
	)
	if err != nil {
		return err
	}
	if o.NewKeys == nil {
		return newValidationError(FieldNewKeys, reasonRequired)
	}
	for i, key := range o.NewKeys {
		if solana.ValidatePublicKey(key) != nil {
			return newValidationError(indexedField(FieldNewKeys, i), reasonPublicKey)
		}
	}
	if o.Payer != nil && solana.ValidatePublicKey(o.Payer) != nil {
		return newValidationError(FieldPayer, reasonPublicKey)
	}
	return nil
}

func (o *DeactivateOptions) Validate() error {
	if o == nil {
		return newValidationError(FieldLookupTable, reasonRequired)
	}
	return validateKeys(
		keyField{FieldLookupTable, o.LookupTable},
		keyField{FieldAuthority, o.Authority},
	)
}

func (o *CloseOptions) Validate() error {
	if o == nil {
		return newValidationError(FieldLookupTable, reasonRequired)
	}
	return validateKeys(
		keyField{FieldLookupTable, o.LookupTable},
		keyField{FieldAuthority, o.Authority},
		keyField{FieldRecipient, o.Recipient},
	)
}

type keyField struct {
	name string
	key  ed25519.PublicKey
}

func validateKeys(fields ...keyField) error {
	for _, f := range fields {
		if f.key == nil {
			return newValidationError(f.name, reasonRequired)
		}
		if solana.ValidatePublicKey(f.key) != nil {
			return newValidationError(f.name, reasonPublicKey)
		}
	}
	return nil
}

func indexedField(field string, i int) string {
	return fmt.Sprintf("%s[%d]", field, i)
}

// rawOptions is a caller supplied option set, typically decoded from JSON or
// read out of a viper config. A nil value is treated the same as an absent one.
type rawOptions map[string]interface{}

func (r rawOptions) lookup(field string) (interface{}, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r rawOptions) requireKey(field string) (ed25519.PublicKey, error) {
	v, ok := r.lookup(field)
	if !ok {
		return nil, newValidationError(field, reasonRequired)
	}

	key, err := toPublicKey(v)
	if err != nil {
		return nil, newValidationError(field, reasonPublicKey)
	}
	return key, nil
}

func (r rawOptions) optionalKey(field string) (ed25519.PublicKey, error) {
	if _, ok := r.lookup(field); !ok {
		return nil, nil
	}
	return r.requireKey(field)
}

func (r rawOptions) requireUint64(field string) (uint64, error) {
	v, ok := r.lookup(field)
	if !ok {
		return 0, newValidationError(field, reasonRequired)
	}

	var val uint64
	var err error
	switch t := v.(type) {
	case string:
		val, err = strconv.ParseUint(t, 10, 64)
	default:
		val, err = toUint64(v)
	}
	if err != nil {
		return 0, newValidationError(field, reasonUint64)
	}
	return val, nil
}

func (r rawOptions) optionalBool(field string, defaultValue bool) (bool, error) {
	v, ok := r.lookup(field)
	if !ok {
		return defaultValue, nil
	}

	b, ok := v.(bool)
	if !ok {
		return false, newValidationError(field, reasonBool)
	}
	return b, nil
}

func (r rawOptions) requireKeyList(field string) ([]ed25519.PublicKey, error) {
	v, ok := r.lookup(field)
	if !ok {
		return nil, newValidationError(field, reasonRequired)
	}

	var elements []interface{}
	switch t := v.(type) {
	case []interface{}:
		elements = t
	case []string:
		for _, e := range t {
			elements = append(elements, e)
		}
	case []ed25519.PublicKey:
		for _, e := range t {
			elements = append(elements, e)
		}
	case [][]byte:
		for _, e := range t {
			elements = append(elements, e)
		}
	case []solanago.PublicKey:
		for _, e := range t {
			elements = append(elements, e)
		}
	default:
		return nil, newValidationError(field, reasonPublicKeys)
	}

	keys := make([]ed25519.PublicKey, len(elements))
	for i, e := range elements {
		key, err := toPublicKey(e)
		if err != nil {
			return nil, newValidationError(indexedField(field, i), reasonPublicKey)
		}
		keys[i] = key
	}
	return keys, nil
}

// toPublicKey accepts raw bytes or a base58 string, always returning a copy.
func toPublicKey(v interface{}) (ed25519.PublicKey, error) {
	switch t := v.(type) {
	case ed25519.PublicKey:
		return solana.PublicKeyFromBytes(t)
	case []byte:
		return solana.PublicKeyFromBytes(t)
	case [32]byte:
		return solana.PublicKeyFromBytes(t[:])
	case solanago.PublicKey:
		return solana.PublicKeyFromBytes(t[:])
	case string:
		return solana.PublicKeyFromString(t)
	default:
		return nil, solana.ErrInvalidPublicKeyLength
	}
}

var errNotUint64 = errors.New("not a non-negative integer")

// toUint64 converts numeric values, as produced by Go code or a JSON decoder, to
// a uint64. Strings and booleans are rejected.
func toUint64(v interface{}) (uint64, error) {
	switch t := v.(type) {
	case bool, string, nil:
		return 0, errNotUint64
	case json.Number:
		return strconv.ParseUint(t.String(), 10, 64)
	case float32:
		return floatToUint64(float64(t))
	case float64:
		return floatToUint64(t)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return cast.ToUint64E(t)
	default:
		return 0, errNotUint64
	}
}

func floatToUint64(f float64) (uint64, error) {
	if f < 0 || f != math.Trunc(f) || math.IsInf(f, 0) || f >= math.Exp2(64) {
		return 0, errNotUint64
	}
	return uint64(f), nil
}
