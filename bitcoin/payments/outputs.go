// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package payments

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

// P2PKHScript builds pay to public key hash locking script.
func P2PKHScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != hash160Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, hash160Size, len(pubKeyHash))
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(pubKeyHash).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// MustP2PKHScript uses P2PKHScript, panics in case of error.
func MustP2PKHScript(pubKeyHash []byte) []byte {
	return must(P2PKHScript(pubKeyHash))
}

// P2PKHScriptFromPubKey builds pay to public key hash locking script for the public key.
func P2PKHScriptFromPubKey(pubKey []byte) ([]byte, error) {
	if !script.IsCanonicalPubKey(pubKey) {
		return nil, ErrInvalidPubKey
	}

	return P2PKHScript(btcutil.Hash160(pubKey))
}

// MustP2PKHScriptFromPubKey uses P2PKHScriptFromPubKey, panics in case of error.
func MustP2PKHScriptFromPubKey(pubKey []byte) []byte {
	return must(P2PKHScriptFromPubKey(pubKey))
}

// P2SHScript builds pay to script hash locking script.
func P2SHScript(scriptHash []byte) ([]byte, error) {
	if len(scriptHash) != hash160Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, hash160Size, len(scriptHash))
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_HASH160).
		AddData(scriptHash).
		AddOp(txscript.OP_EQUAL).
		Script()
}

// P2SHScriptFromRedeem builds pay to script hash locking script committing to redeem script.
func P2SHScriptFromRedeem(redeemScript []byte) ([]byte, error) {
	return P2SHScript(btcutil.Hash160(redeemScript))
}

// MustP2SHScriptFromRedeem uses P2SHScriptFromRedeem, panics in case of error.
func MustP2SHScriptFromRedeem(redeemScript []byte) []byte {
	return must(P2SHScriptFromRedeem(redeemScript))
}

// P2WPKHScript builds version 0 witness public key hash program.
func P2WPKHScript(pubKeyHash []byte) ([]byte, error) {
	if len(pubKeyHash) != hash160Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, hash160Size, len(pubKeyHash))
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(pubKeyHash).
		Script()
}

// P2WPKHScriptFromPubKey builds version 0 witness public key hash program for the public key.
func P2WPKHScriptFromPubKey(pubKey []byte) ([]byte, error) {
	if !script.IsCanonicalPubKey(pubKey) {
		return nil, ErrInvalidPubKey
	}

	return P2WPKHScript(btcutil.Hash160(pubKey))
}

// MustP2WPKHScriptFromPubKey uses P2WPKHScriptFromPubKey, panics in case of error.
func MustP2WPKHScriptFromPubKey(pubKey []byte) []byte {
	return must(P2WPKHScriptFromPubKey(pubKey))
}

// P2WSHScript builds version 0 witness script hash program.
func P2WSHScript(scriptHash []byte) ([]byte, error) {
	if len(scriptHash) != hash256Size {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidHash, hash256Size, len(scriptHash))
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(scriptHash).
		Script()
}

// P2WSHScriptFromWitness builds version 0 witness script hash program committing to witness script.
func P2WSHScriptFromWitness(witnessScript []byte) ([]byte, error) {
	hash := sha256.Sum256(witnessScript)
	return P2WSHScript(hash[:])
}

// MustP2WSHScriptFromWitness uses P2WSHScriptFromWitness, panics in case of error.
func MustP2WSHScriptFromWitness(witnessScript []byte) []byte {
	return must(P2WSHScriptFromWitness(witnessScript))
}

// MultiSigScript builds bare m-of-n multi-sig locking script, keys keep the given order.
func MultiSigScript(m int, pubKeys [][]byte) ([]byte, error) {
	n := len(pubKeys)
	if m <= 0 || m > n || n > maxMultiSigKeys {
		return nil, fmt.Errorf("%w: %d of %d", ErrInvalidMultiSig, m, n)
	}

	builder := txscript.NewScriptBuilder().AddInt64(int64(m))
	for _, pubKey := range pubKeys {
		if !script.IsCanonicalPubKey(pubKey) {
			return nil, ErrInvalidPubKey
		}

		builder.AddData(pubKey)
	}

	return builder.
		AddInt64(int64(n)).
		AddOp(txscript.OP_CHECKMULTISIG).
		Script()
}

// MustMultiSigScript uses MultiSigScript, panics in case of error.
func MustMultiSigScript(m int, pubKeys [][]byte) []byte {
	return must(MultiSigScript(m, pubKeys))
}

// P2PKScript builds pay to public key locking script.
func P2PKScript(pubKey []byte) ([]byte, error) {
	if !script.IsCanonicalPubKey(pubKey) {
		return nil, ErrInvalidPubKey
	}

	return txscript.NewScriptBuilder().
		AddData(pubKey).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// MustP2PKScript uses P2PKScript, panics in case of error.
func MustP2PKScript(pubKey []byte) []byte {
	return must(P2PKScript(pubKey))
}

// NullDataScript builds provably unspendable script (e.g. OP_RETURN) with optional data pushes added after.
// INFO: Def: https://en.bitcoin.it/wiki/OP_RETURN.
func NullDataScript(data ...[]byte) ([]byte, error) {
	builder := txscript.NewScriptBuilder().AddOp(txscript.OP_RETURN)
	for _, item := range data {
		builder.AddData(item)
	}

	return builder.Script()
}

// MustNullDataScript uses NullDataScript, panics in case of error.
func MustNullDataScript(data ...[]byte) []byte {
	return must(NullDataScript(data...))
}

func must(lockingScript []byte, err error) []byte {
	if err != nil {
		panic(err)
	}

	return lockingScript
}
