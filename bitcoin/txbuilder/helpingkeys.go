// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"

	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
)

// ErrUnknownInputsHelpingKey defines that inputs help keys is unknown.
var ErrUnknownInputsHelpingKey = errors.New("unknown inputs help keys")

// InputsHelpingKey defines type for additional data in PSBT Unknowns field
// to distinguish input script types and their indexes.
type InputsHelpingKey byte

const (
	// P2PKHInputsHelpingKey defines key for pay to public key hash inputs.
	P2PKHInputsHelpingKey InputsHelpingKey = 0x10
	// P2SHInputsHelpingKey defines key for pay to script hash inputs.
	P2SHInputsHelpingKey InputsHelpingKey = 0x11
	// P2WPKHInputsHelpingKey defines key for pay to witness public key hash inputs.
	P2WPKHInputsHelpingKey InputsHelpingKey = 0x20
	// P2WSHInputsHelpingKey defines key for pay to witness script hash inputs.
	P2WSHInputsHelpingKey InputsHelpingKey = 0x21
	// MultiSigInputsHelpingKey defines key for bare multi-sig inputs.
	MultiSigInputsHelpingKey InputsHelpingKey = 0x30
	// P2PKInputsHelpingKey defines key for pay to public key inputs.
	P2PKInputsHelpingKey InputsHelpingKey = 0x31
)

// inputsHelpingKeys lists keys in the order they are written to PSBT.
var inputsHelpingKeys = []InputsHelpingKey{
	P2PKHInputsHelpingKey,
	P2SHInputsHelpingKey,
	P2WPKHInputsHelpingKey,
	P2WSHInputsHelpingKey,
	MultiSigInputsHelpingKey,
	P2PKInputsHelpingKey,
}

var helpingKeyTypes = map[InputsHelpingKey]payments.ScriptType{
	P2PKHInputsHelpingKey:    payments.P2PKH,
	P2SHInputsHelpingKey:     payments.P2SH,
	P2WPKHInputsHelpingKey:   payments.P2WPKH,
	P2WSHInputsHelpingKey:    payments.P2WSH,
	MultiSigInputsHelpingKey: payments.MultiSig,
	P2PKInputsHelpingKey:     payments.P2PK,
}

// InputsHelpingKeyFromBytes parses bytes array into InputsHelpingKey if any.
func InputsHelpingKeyFromBytes(b []byte) (InputsHelpingKey, error) {
	if len(b) != 1 {
		return 0, ErrUnknownInputsHelpingKey
	}

	key := InputsHelpingKey(b[0])
	if _, ok := helpingKeyTypes[key]; !ok {
		return 0, ErrUnknownInputsHelpingKey
	}

	return key, nil
}

// InputsHelpingKeyOf returns InputsHelpingKey of inputs spending outputs of script type.
func InputsHelpingKeyOf(scriptType payments.ScriptType) (InputsHelpingKey, bool) {
	for _, key := range inputsHelpingKeys {
		if helpingKeyTypes[key] == scriptType {
			return key, true
		}
	}

	return 0, false
}

// ScriptType returns script type of inputs marked by the key.
func (k InputsHelpingKey) ScriptType() payments.ScriptType {
	return helpingKeyTypes[k]
}

// Byte returns InputsHelpingKey as byte.
func (k InputsHelpingKey) Byte() byte {
	return byte(k)
}

// Bytes returns InputsHelpingKey as bytes array.
func (k InputsHelpingKey) Bytes() []byte {
	return []byte{byte(k)}
}
