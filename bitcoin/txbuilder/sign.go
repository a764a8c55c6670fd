// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
	"github.com/BoostyLabs/utxobuilder/bitcoin/signer"
	"github.com/BoostyLabs/utxobuilder/bitcoin/transaction"
)

// SignParams holds parameters of signing single input.
type SignParams struct {
	// Vin is index of the input to sign.
	Vin int
	// Signer produces signature of the input digest.
	Signer signer.Signer
	// RedeemScript is required for P2SH inputs.
	RedeemScript []byte
	// WitnessScript is required for P2WSH and P2SH(P2WSH) inputs.
	WitnessScript []byte
	// HashType defaults to txscript.SigHashAll.
	HashType txscript.SigHashType
	// WitnessValue is value of spent output, required by segwit inputs added without it.
	WitnessValue *uint64
}

// Sign signs input with the signer key and records the signature. Builder state is
// unchanged when an error is returned.
func (b *TransactionBuilder) Sign(params SignParams) error {
	if params.Vin < 0 {
		return ErrMissingVinParameter
	}
	if params.Vin >= len(b.inputs) {
		return fmt.Errorf("%w: %d", ErrNoInputAtIndex, params.Vin)
	}
	if params.Signer == nil || len(params.Signer.PublicKey()) == 0 {
		return ErrMissingKeyPairParameter
	}

	hashType := params.HashType
	if hashType == 0 {
		hashType = txscript.SigHashAll
	}
	if !script.IsDefinedHashType(hashType) {
		return fmt.Errorf("%w: %#x", ErrInvalidHashType, uint32(hashType))
	}

	if networkSigner, ok := params.Signer.(signer.NetworkSigner); ok {
		if network := networkSigner.Network(); network != nil && !network.Equal(b.network) {
			return ErrInconsistentNetwork
		}
	}
	if b.needsOutputs(hashType) {
		return ErrTransactionNeedsOutputs
	}

	in := b.inputs[params.Vin].clone()
	if len(in.redeemScript) != 0 && len(params.RedeemScript) != 0 && !bytes.Equal(in.redeemScript, params.RedeemScript) {
		return ErrInconsistentRedeemScript
	}
	if len(in.witnessScript) != 0 && len(params.WitnessScript) != 0 && !bytes.Equal(in.witnessScript, params.WitnessScript) {
		return ErrInconsistentWitnessScript
	}

	ourPubKey := params.Signer.PublicKey()
	if !in.canSign() {
		if params.WitnessValue != nil {
			if in.hasValue && in.value != *params.WitnessValue {
				return fmt.Errorf("%w: have %d, got %d", ErrWitnessValueMismatch, in.value, *params.WitnessValue)
			}
			in.value, in.hasValue = *params.WitnessValue, true
		}

		if !in.isResolved() {
			prepared, err := prepareInput(in, ourPubKey, params.RedeemScript, params.WitnessScript)
			if err != nil {
				return err
			}
			in.apply(prepared)
		}

		if in.hasWitness && !in.hasValue {
			return ErrMissingWitnessValue
		}
		if len(in.signatures) != len(in.pubKeys) {
			if err := b.placeSignatures(params.Vin, in); err != nil {
				return err
			}
		}
		if !in.canSign() {
			return fmt.Errorf("%w: %s", ErrUnsupportedScript, in.prevOutType)
		}
	}

	index := -1
	for i, pubKey := range in.pubKeys {
		if !bytes.Equal(pubKey, ourPubKey) {
			continue
		}
		if len(in.signatures[i]) != 0 {
			return ErrSignatureExists
		}

		index = i
		break
	}
	if index < 0 {
		return ErrPublicKeyNotInRedeemScript
	}
	if in.signatureCount() >= in.required() {
		return ErrTooManySignatures
	}
	if in.hasWitness && !script.IsCompressedPubKey(ourPubKey) {
		return ErrUncompressedWitnessKey
	}

	hash, err := b.digest(params.Vin, in, hashType)
	if err != nil {
		return err
	}

	sig, err := b.signDigest(params.Signer, hash)
	if err != nil {
		return err
	}

	encoded, err := script.EncodeSignature(sig, hashType)
	if err != nil {
		return errors.Join(ErrInvalidSignature, err)
	}

	in.signatures[index] = encoded
	if in.hashType == 0 {
		in.hashType = hashType
	}
	b.inputs[params.Vin] = in

	log.Debugf("input %d signed: type %q, hash type %#x, signatures %d of %d",
		params.Vin, in.prevOutType, uint32(hashType), in.signatureCount(), in.required())

	return nil
}

// signDigest signs hash grinding low R when it is enabled and supported.
func (b *TransactionBuilder) signDigest(s signer.Signer, hash []byte) ([]byte, error) {
	if lowRSigner, ok := s.(signer.LowRSigner); ok && b.lowR {
		return lowRSigner.SignLowR(hash)
	}

	return s.Sign(hash)
}

// digest computes signature hash of the input as it would be after build.
func (b *TransactionBuilder) digest(vin int, in *inputRecord, hashType txscript.SigHashType) ([]byte, error) {
	tx := b.unsignedTransaction()
	if in.hasWitness {
		return tx.HashForWitnessV0(vin, in.signScript, in.value, hashType)
	}

	return tx.HashForSignature(vin, in.signScript, hashType)
}

// placeSignatures aligns signatures recorded in script order with public keys of the input
// by verifying each against every key. Signatures which verify against no key are dropped.
func (b *TransactionBuilder) placeSignatures(vin int, in *inputRecord) error {
	if len(in.pubKeys) == 0 || len(in.signScript) == 0 {
		return nil
	}
	if in.hasWitness && !in.hasValue {
		return nil
	}

	unmatched := cloneStack(in.signatures)
	placed := make([][]byte, len(in.pubKeys))
	for i, pubKey := range in.pubKeys {
		for j, signature := range unmatched {
			hashType := script.SigHashTypeOf(signature)
			if !script.IsDefinedHashType(hashType) {
				continue
			}

			hash, err := b.digest(vin, in, hashType)
			if err != nil {
				return err
			}
			if !script.VerifySignature(signature, hash, pubKey) {
				continue
			}

			placed[i] = signature
			unmatched[j] = nil
			break
		}
	}

	for _, signature := range unmatched {
		if len(signature) != 0 {
			log.Debugf("input %d: dropping signature which matches no public key", vin)
		}
	}

	in.signatures = placed

	return nil
}

// unsignedTransaction returns transaction of current builder state without unlocking data.
func (b *TransactionBuilder) unsignedTransaction() *transaction.Transaction {
	tx := transaction.New()
	tx.Version = b.version
	tx.LockTime = b.lockTime
	for _, in := range b.inputs {
		tx.AddInput(in.prevOut.Hash, in.prevOut.Index, in.sequence)
	}
	for _, out := range b.outputs {
		tx.AddOutput(out.Script, out.Value)
	}

	return tx
}
