// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/utxobuilder/bitcoin/address"
	"github.com/BoostyLabs/utxobuilder/bitcoin/networks"
	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
	"github.com/BoostyLabs/utxobuilder/bitcoin/transaction"
)

// DefaultVersion defines version of transactions created by the builder.
const DefaultVersion uint32 = 2

// InputParams holds optional data of added input.
type InputParams struct {
	// Sequence defaults to transaction.DefaultSequence.
	Sequence *uint32
	// PrevOutScript is locking script of spent output.
	PrevOutScript []byte
	// Value of spent output, required to sign segwit inputs.
	Value *uint64
}

// TransactionBuilder accumulates inputs, outputs and signatures of a transaction
// while keeping every recorded signature valid.
type TransactionBuilder struct {
	network  *networks.Network
	version  uint32
	lockTime uint32
	lowR     bool

	inputs  []*inputRecord
	outputs []*transaction.Output
	spent   map[wire.OutPoint]struct{}
}

// NewTransactionBuilder is a constructor for TransactionBuilder.
func NewTransactionBuilder(network *networks.Network) *TransactionBuilder {
	if network == nil {
		network = networks.MainNet
	}

	return &TransactionBuilder{
		network: network,
		version: DefaultVersion,
		spent:   make(map[wire.OutPoint]struct{}),
	}
}

// Network returns network the builder resolves addresses and keys for.
func (b *TransactionBuilder) Network() *networks.Network {
	return b.network
}

// SetVersion sets transaction version.
func (b *TransactionBuilder) SetVersion(version uint32) {
	b.version = version
}

// SetLowR enables nonce grinding for signers which support it.
func (b *TransactionBuilder) SetLowR(lowR bool) {
	b.lowR = lowR
}

// SetLockTime sets transaction lock time, rejected once any input is signed.
func (b *TransactionBuilder) SetLockTime(lockTime uint32) error {
	for _, in := range b.inputs {
		if in.hasSignatures() {
			return ErrSignedInputsWouldBeInvalidated
		}
	}

	b.lockTime = lockTime

	return nil
}

// AddInputFromTxID adds input spending output of transaction with hex id.
func (b *TransactionBuilder) AddInputFromTxID(txID string, vout uint32, params InputParams) (int, error) {
	hash, err := transaction.HashFromID(txID)
	if err != nil {
		return 0, errors.Join(ErrInvalidTxID, err)
	}

	return b.AddInput(hash, vout, params)
}

// AddInputFromTransaction adds input spending output of prevTx, capturing its script and value.
func (b *TransactionBuilder) AddInputFromTransaction(prevTx *transaction.Transaction, vout uint32, params InputParams) (int, error) {
	if int(vout) >= len(prevTx.Outputs) {
		return 0, fmt.Errorf("%w: %d", ErrNoOutputAtIndex, vout)
	}

	output := prevTx.Outputs[vout]
	value := output.Value
	params.PrevOutScript = output.Script
	params.Value = &value

	return b.AddInput(prevTx.Hash(), vout, params)
}

// AddInput adds input spending vout of transaction with raw hash and returns its index.
func (b *TransactionBuilder) AddInput(hash chainhash.Hash, vout uint32, params InputParams) (int, error) {
	if !b.canModifyInputs() {
		return 0, ErrSignedInputsWouldBeInvalidated
	}

	sequence := transaction.DefaultSequence
	if params.Sequence != nil {
		sequence = *params.Sequence
	}

	in := &inputRecord{sequence: sequence}
	if params.Value != nil {
		in.value, in.hasValue = *params.Value, true
	}
	if len(params.PrevOutScript) != 0 {
		in.prevOutScript = bytes.Clone(params.PrevOutScript)
		in.prevOutType = payments.ClassifyOutput(params.PrevOutScript)
	}

	return b.addInput(hash, vout, in)
}

// addInput registers input record after outpoint checks.
func (b *TransactionBuilder) addInput(hash chainhash.Hash, vout uint32, in *inputRecord) (int, error) {
	if hash == (chainhash.Hash{}) {
		return 0, ErrCoinbaseInput
	}

	in.prevOut = *wire.NewOutPoint(&hash, vout)
	if _, ok := b.spent[in.prevOut]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateInput, in.prevOut)
	}

	b.inputs = append(b.inputs, in)
	b.spent[in.prevOut] = struct{}{}

	log.Debugf("input %d added: prevout %s, type %q", len(b.inputs)-1, in.prevOut, in.prevOutType)

	return len(b.inputs) - 1, nil
}

// AddOutputToAddress adds output paying value to address of the builder network.
func (b *TransactionBuilder) AddOutputToAddress(addr string, value uint64) (int, error) {
	lockingScript, err := address.ToOutputScript(addr, b.network)
	if err != nil {
		return 0, errors.Join(ErrNoMatchingScript, err)
	}

	return b.AddOutput(lockingScript, value)
}

// AddOutput adds output with locking script and returns its index.
func (b *TransactionBuilder) AddOutput(lockingScript []byte, value uint64) (int, error) {
	if !b.canModifyOutputs() {
		return 0, ErrSignedInputsWouldBeInvalidated
	}

	b.outputs = append(b.outputs, &transaction.Output{Value: value, Script: bytes.Clone(lockingScript)})

	return len(b.outputs) - 1, nil
}

// canModifyInputs reports whether every recorded signature commits to its own input only.
func (b *TransactionBuilder) canModifyInputs() bool {
	for _, in := range b.inputs {
		for _, signature := range in.signatures {
			if len(signature) == 0 {
				continue
			}
			if script.SigHashTypeOf(signature)&txscript.SigHashAnyOneCanPay == 0 {
				return false
			}
		}
	}

	return true
}

// canModifyOutputs reports whether a new output keeps every recorded signature valid.
func (b *TransactionBuilder) canModifyOutputs() bool {
	for i, in := range b.inputs {
		for _, signature := range in.signatures {
			if len(signature) == 0 {
				continue
			}

			switch script.SigHashTypeOf(signature) & sigHashMask {
			case txscript.SigHashNone:
			case txscript.SigHashSingle:
				// output i is already committed to, later outputs are free.
				if len(b.outputs) <= i {
					return false
				}
			default:
				return false
			}
		}
	}

	return true
}

// needsOutputs reports whether signing with hashType would commit to a missing output set.
func (b *TransactionBuilder) needsOutputs(hashType txscript.SigHashType) bool {
	if len(b.outputs) != 0 {
		return false
	}
	if hashType&sigHashMask == txscript.SigHashAll {
		return true
	}

	for _, in := range b.inputs {
		for _, signature := range in.signatures {
			if len(signature) == 0 {
				continue
			}
			if script.SigHashTypeOf(signature)&sigHashMask != txscript.SigHashNone {
				return true
			}
		}
	}

	return false
}

// sigHashMask extracts base hash type.
const sigHashMask = 0x1f
