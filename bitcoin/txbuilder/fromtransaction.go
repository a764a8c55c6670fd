// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"

	"github.com/BoostyLabs/utxobuilder/bitcoin/networks"
	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
	"github.com/BoostyLabs/utxobuilder/bitcoin/transaction"
)

// FromHex decodes transaction and returns builder holding its state.
func FromHex(txHex string, network *networks.Network) (*TransactionBuilder, error) {
	tx, err := transaction.FromHex(txHex)
	if err != nil {
		return nil, errors.Join(ErrMalformedTransaction, err)
	}

	return FromTransaction(tx, network)
}

// FromTransaction returns builder holding version, lock time, inputs, outputs and
// signatures of tx. Multi-sig signatures are matched to their public keys by
// verification. Unlocking data of unknown shape is kept as is.
func FromTransaction(tx *transaction.Transaction, network *networks.Network) (*TransactionBuilder, error) {
	b := NewTransactionBuilder(network)
	b.version = tx.Version
	b.lockTime = tx.LockTime

	for _, out := range tx.Outputs {
		b.outputs = append(b.outputs, &transaction.Output{Value: out.Value, Script: bytes.Clone(out.Script)})
	}

	for _, txIn := range tx.Inputs {
		in := &inputRecord{
			sequence: txIn.Sequence,
			script:   bytes.Clone(txIn.Script),
			witness:  cloneStack(txIn.Witness),
		}
		in.apply(expandInput(txIn.Script, txIn.Witness))

		if _, err := b.addInput(txIn.Hash, txIn.Index, in); err != nil {
			return nil, err
		}
	}

	for i, in := range b.inputs {
		if in.signType != payments.MultiSig || len(in.signatures) == len(in.pubKeys) {
			continue
		}
		if err := b.placeSignatures(i, in); err != nil {
			return nil, err
		}
	}

	return b, nil
}
