// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"

	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
	"github.com/BoostyLabs/utxobuilder/bitcoin/transaction"
)

// InputInfo describes what the builder knows about an input.
type InputInfo struct {
	PrevOutType       payments.ScriptType
	RedeemScriptType  payments.ScriptType
	WitnessScriptType payments.ScriptType
	// Signatures are aligned with PubKeys when both are known, nil marks a missing signature.
	Signatures [][]byte
	PubKeys    [][]byte
	// Required is number of signatures needed to complete the input, zero while it is unknown.
	Required int
	// HashType is hash type of the first signature made by the builder.
	HashType txscript.SigHashType
	// Value of spent output, zero when unknown.
	Value    uint64
	HasValue bool
}

// Inputs returns copies of input records.
func (b *TransactionBuilder) Inputs() []InputInfo {
	infos := make([]InputInfo, 0, len(b.inputs))
	for _, in := range b.inputs {
		infos = append(infos, InputInfo{
			PrevOutType:       in.prevOutType,
			RedeemScriptType:  in.redeemScriptType,
			WitnessScriptType: in.witnessScriptType,
			Signatures:        cloneStack(in.signatures),
			PubKeys:           cloneStack(in.pubKeys),
			Required:          in.required(),
			HashType:          in.hashType,
			Value:             in.value,
			HasValue:          in.hasValue,
		})
	}

	return infos
}

// Complete reports whether the input has all required signatures.
func (i InputInfo) Complete() bool {
	var count int
	for _, signature := range i.Signatures {
		if len(signature) != 0 {
			count++
		}
	}

	return i.Required > 0 && count >= i.Required
}

// Outputs returns copies of outputs added so far.
func (b *TransactionBuilder) Outputs() []transaction.Output {
	outputs := make([]transaction.Output, 0, len(b.outputs))
	for _, out := range b.outputs {
		outputs = append(outputs, transaction.Output{Value: out.Value, Script: bytes.Clone(out.Script)})
	}

	return outputs
}
