// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package transaction

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

// HashForSignature returns legacy signature digest of the input.
// OP_CODESEPARATOR operations are removed from prevOutScript before hashing,
// SIGHASH_SINGLE without matching output commits to the one hash.
func (tx *Transaction) HashForSignature(index int, prevOutScript []byte, hashType txscript.SigHashType) ([]byte, error) {
	if index < 0 || index >= len(tx.Inputs) {
		return nil, fmt.Errorf("%w: input %d", ErrIndexOutOfRange, index)
	}

	hash, err := txscript.CalcSignatureHash(prevOutScript, hashType, tx.MsgTx(), index)
	if err != nil {
		return nil, fmt.Errorf("signature hash of input %d: %w", index, err)
	}

	return hash, nil
}

// HashForWitnessV0 returns BIP143 signature digest of the input spending value locked by scriptCode.
func (tx *Transaction) HashForWitnessV0(index int, scriptCode []byte, value uint64, hashType txscript.SigHashType) ([]byte, error) {
	if index < 0 || index >= len(tx.Inputs) {
		return nil, fmt.Errorf("%w: input %d", ErrIndexOutOfRange, index)
	}

	msgTx := tx.MsgTx()
	sigHashes := txscript.NewTxSigHashes(msgTx, txscript.NewCannedPrevOutputFetcher(scriptCode, int64(value)))

	hash, err := txscript.CalcWitnessSigHash(scriptCode, sigHashes, hashType, msgTx, index, int64(value))
	if err != nil {
		return nil, fmt.Errorf("witness signature hash of input %d: %w", index, err)
	}

	return hash, nil
}
