// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package transaction

import (
	"bytes"

	"github.com/btcsuite/btcd/wire"
)

// MsgTx converts transaction into btcd wire representation.
func (tx *Transaction) MsgTx() *wire.MsgTx {
	msgTx := wire.NewMsgTx(int32(tx.Version))
	msgTx.LockTime = tx.LockTime

	for _, in := range tx.Inputs {
		hash := in.Hash
		txIn := wire.NewTxIn(wire.NewOutPoint(&hash, in.Index), bytes.Clone(in.Script), cloneStack(in.Witness))
		txIn.Sequence = in.Sequence
		msgTx.AddTxIn(txIn)
	}

	for _, out := range tx.Outputs {
		msgTx.AddTxOut(wire.NewTxOut(int64(out.Value), bytes.Clone(out.Script)))
	}

	return msgTx
}

// FromMsgTx converts btcd wire representation into transaction.
func FromMsgTx(msgTx *wire.MsgTx) *Transaction {
	tx := &Transaction{
		Version:  uint32(msgTx.Version),
		LockTime: msgTx.LockTime,
		Inputs:   make([]*Input, 0, len(msgTx.TxIn)),
		Outputs:  make([]*Output, 0, len(msgTx.TxOut)),
	}

	for _, txIn := range msgTx.TxIn {
		tx.Inputs = append(tx.Inputs, &Input{
			Hash:     txIn.PreviousOutPoint.Hash,
			Index:    txIn.PreviousOutPoint.Index,
			Sequence: txIn.Sequence,
			Script:   bytes.Clone(txIn.SignatureScript),
			Witness:  cloneStack(txIn.Witness),
		})
	}

	for _, txOut := range msgTx.TxOut {
		tx.Outputs = append(tx.Outputs, &Output{Value: uint64(txOut.Value), Script: bytes.Clone(txOut.PkScript)})
	}

	return tx
}
