// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

// inputRecord holds everything known about an input being built.
type inputRecord struct {
	prevOut  wire.OutPoint
	sequence uint32
	// script and witness are the unlocking data the input was created with.
	script  []byte
	witness [][]byte

	value    uint64
	hasValue bool

	prevOutScript []byte
	prevOutType   payments.ScriptType

	redeemScript      []byte
	redeemScriptType  payments.ScriptType
	witnessScript     []byte
	witnessScriptType payments.ScriptType

	signScript []byte
	signType   payments.ScriptType
	hasWitness bool

	// signatures are aligned with pubKeys once both are known, nil marks a gap.
	pubKeys       [][]byte
	signatures    [][]byte
	maxSignatures int
	hashType      txscript.SigHashType
}

// expansion is the part of inputRecord derived from scripts.
type expansion struct {
	prevOutScript     []byte
	prevOutType       payments.ScriptType
	redeemScript      []byte
	redeemScriptType  payments.ScriptType
	witnessScript     []byte
	witnessScriptType payments.ScriptType
	signScript        []byte
	signType          payments.ScriptType
	hasWitness        bool
	pubKeys           [][]byte
	signatures        [][]byte
	maxSignatures     int
}

// apply overwrites script derived fields of the record.
func (in *inputRecord) apply(e expansion) {
	in.prevOutScript = e.prevOutScript
	in.prevOutType = e.prevOutType
	in.redeemScript = e.redeemScript
	in.redeemScriptType = e.redeemScriptType
	in.witnessScript = e.witnessScript
	in.witnessScriptType = e.witnessScriptType
	in.signScript = e.signScript
	in.signType = e.signType
	in.hasWitness = e.hasWitness
	in.pubKeys = e.pubKeys
	in.signatures = e.signatures
	in.maxSignatures = e.maxSignatures
}

// clone returns deep copy of the record.
func (in *inputRecord) clone() *inputRecord {
	c := *in
	c.script = bytes.Clone(in.script)
	c.witness = cloneStack(in.witness)
	c.prevOutScript = bytes.Clone(in.prevOutScript)
	c.redeemScript = bytes.Clone(in.redeemScript)
	c.witnessScript = bytes.Clone(in.witnessScript)
	c.signScript = bytes.Clone(in.signScript)
	c.pubKeys = cloneStack(in.pubKeys)
	c.signatures = cloneStack(in.signatures)

	return &c
}

// hasSignatures reports whether any signature is recorded.
func (in *inputRecord) hasSignatures() bool {
	for _, signature := range in.signatures {
		if len(signature) != 0 {
			return true
		}
	}

	return false
}

// signatureCount returns number of recorded signatures.
func (in *inputRecord) signatureCount() int {
	var count int
	for _, signature := range in.signatures {
		if len(signature) != 0 {
			count++
		}
	}

	return count
}

// required returns number of signatures needed to complete the input.
func (in *inputRecord) required() int {
	switch {
	case in.signType == payments.MultiSig:
		// zero while threshold is unknown.
		return in.maxSignatures
	case len(in.pubKeys) > 0 || len(in.signatures) > 0:
		return 1
	default:
		return 0
	}
}

// canSign reports whether the record holds everything needed to produce a digest.
func (in *inputRecord) canSign() bool {
	return len(in.signScript) != 0 &&
		in.signType != "" &&
		len(in.pubKeys) > 0 &&
		len(in.signatures) == len(in.pubKeys) &&
		(!in.hasWitness || in.hasValue)
}

// isResolved reports whether script shape and keys of the input are known.
func (in *inputRecord) isResolved() bool {
	return len(in.signScript) != 0 && in.signType != "" && len(in.pubKeys) > 0
}

// expandInput derives input shape and signatures from unlocking data.
// Returns zero expansion when nothing could be derived.
func expandInput(scriptSig []byte, witness [][]byte) expansion {
	if len(scriptSig) == 0 && len(witness) == 0 {
		return expansion{}
	}

	scriptType := payments.ClassifyInput(scriptSig, true)
	if scriptType == payments.NonStandard {
		scriptType = payments.ClassifyWitness(witness, true)
	}

	e, ok := expandTyped(scriptType, scriptSig, witness, nil)
	if !ok {
		return expansion{prevOutType: payments.NonStandard}
	}

	return e
}

// expandTyped expands unlocking data of known type, lockingScript is the script being
// satisfied when it is known.
func expandTyped(scriptType payments.ScriptType, scriptSig []byte, witness [][]byte, lockingScript []byte) (expansion, bool) {
	chunks, err := script.Decompile(scriptSig)
	if err != nil {
		return expansion{}, false
	}

	switch scriptType {
	case payments.P2PKH:
		if len(chunks) != 2 {
			return expansion{}, false
		}
		pubKey := chunks[1].Data
		prevOutScript, err := payments.P2PKHScriptFromPubKey(pubKey)
		if err != nil {
			return expansion{}, false
		}

		return expansion{
			prevOutScript: prevOutScript,
			prevOutType:   payments.P2PKH,
			signScript:    prevOutScript,
			signType:      payments.P2PKH,
			pubKeys:       [][]byte{pubKey},
			signatures:    [][]byte{chunks[0].Data},
		}, true
	case payments.P2WPKH:
		if len(witness) != 2 {
			return expansion{}, false
		}
		prevOutScript, err := payments.P2WPKHScriptFromPubKey(witness[1])
		if err != nil {
			return expansion{}, false
		}
		signScript, err := payments.P2PKHScriptFromPubKey(witness[1])
		if err != nil {
			return expansion{}, false
		}

		return expansion{
			prevOutScript: prevOutScript,
			prevOutType:   payments.P2WPKH,
			signScript:    signScript,
			signType:      payments.P2WPKH,
			hasWitness:    true,
			pubKeys:       [][]byte{bytes.Clone(witness[1])},
			signatures:    [][]byte{bytes.Clone(witness[0])},
		}, true
	case payments.P2PK:
		if len(chunks) != 1 {
			return expansion{}, false
		}
		e := expansion{
			prevOutType: payments.P2PK,
			signType:    payments.P2PK,
			signatures:  [][]byte{chunks[0].Data},
		}
		if pubKey, err := payments.DecodeP2PK(lockingScript); err == nil {
			e.prevOutScript = lockingScript
			e.signScript = lockingScript
			e.pubKeys = [][]byte{pubKey}
		}

		return e, true
	case payments.MultiSig:
		signatures, err := payments.ExtractMultiSigSignatures(chunks)
		if err != nil {
			return expansion{}, false
		}
		e := expansion{
			prevOutType: payments.MultiSig,
			signType:    payments.MultiSig,
			signatures:  signatures,
		}
		if info, err := payments.DecodeMultiSig(lockingScript); err == nil {
			e.prevOutScript = lockingScript
			e.signScript = lockingScript
			e.pubKeys = info.PubKeys
			e.maxSignatures = info.M
		}

		return e, true
	case payments.P2SH:
		inner, redeemScript, err := payments.ExtractP2SHInput(scriptSig)
		if err != nil {
			return expansion{}, false
		}
		innerScriptSig, err := script.Compile(inner)
		if err != nil {
			return expansion{}, false
		}

		redeemType := payments.ClassifyOutput(redeemScript)
		expanded, ok := expandTyped(redeemType, innerScriptSig, witness, redeemScript)
		if !ok {
			return expansion{}, false
		}

		e := expanded
		e.prevOutScript = payments.MustP2SHScriptFromRedeem(redeemScript)
		e.prevOutType = payments.P2SH
		e.redeemScript = redeemScript
		e.redeemScriptType = expanded.prevOutType
		if !e.hasWitness {
			e.signScript = redeemScript
		}

		return e, true
	case payments.P2WSH:
		stack, witnessScript, err := payments.ExtractP2WSHWitness(witness)
		if err != nil {
			return expansion{}, false
		}

		witnessType := payments.ClassifyOutput(witnessScript)
		if witnessType == payments.P2WPKH {
			return expansion{}, false
		}
		innerScriptSig, err := script.Compile(payments.StackToChunks(stack))
		if err != nil {
			return expansion{}, false
		}
		expanded, ok := expandTyped(witnessType, innerScriptSig, nil, witnessScript)
		if !ok {
			return expansion{}, false
		}

		e := expanded
		e.prevOutScript = payments.MustP2WSHScriptFromWitness(witnessScript)
		e.prevOutType = payments.P2WSH
		e.witnessScript = witnessScript
		e.witnessScriptType = expanded.prevOutType
		e.signScript = witnessScript
		e.hasWitness = true

		return e, true
	default:
		return expansion{}, false
	}
}

// expandOutput derives public keys which can sign for locking script. Single-key
// hash scripts yield ourPubKey only when it matches the committed hash.
func expandOutput(lockingScript, ourPubKey []byte) (payments.ScriptType, [][]byte, int) {
	scriptType := payments.ClassifyOutput(lockingScript)
	switch scriptType {
	case payments.P2PKH, payments.P2WPKH:
		if len(ourPubKey) == 0 {
			return scriptType, nil, 0
		}
		hash, _, err := payments.ExtractHash(lockingScript)
		if err != nil || !bytes.Equal(hash, btcutil.Hash160(ourPubKey)) {
			return scriptType, nil, 0
		}

		return scriptType, [][]byte{ourPubKey}, 1
	case payments.P2PK:
		pubKey, err := payments.DecodeP2PK(lockingScript)
		if err != nil {
			return scriptType, nil, 0
		}

		return scriptType, [][]byte{pubKey}, 1
	case payments.MultiSig:
		info, err := payments.DecodeMultiSig(lockingScript)
		if err != nil {
			return scriptType, nil, 0
		}

		return scriptType, info.PubKeys, info.M
	default:
		return scriptType, nil, 0
	}
}

// prepareInput resolves signing data of the input for ourPubKey from explicitly supplied
// scripts or from what is already known about the input.
func prepareInput(in *inputRecord, ourPubKey, redeemScript, witnessScript []byte) (expansion, error) {
	switch {
	case len(redeemScript) != 0 && len(witnessScript) != 0:
		witnessProgram := payments.MustP2WSHScriptFromWitness(witnessScript)
		if !bytes.Equal(witnessProgram, redeemScript) {
			return expansion{}, ErrInconsistentWitnessScript
		}
		prevOutScript := payments.MustP2SHScriptFromRedeem(redeemScript)
		if len(in.prevOutScript) != 0 && !bytes.Equal(prevOutScript, in.prevOutScript) {
			return expansion{}, ErrInconsistentRedeemScript
		}

		e, err := expandSigning(in, witnessScript, ourPubKey)
		if err != nil {
			return expansion{}, err
		}
		if e.signType == payments.P2WPKH {
			return expansion{}, fmt.Errorf("%w: P2SH(P2WSH(P2WPKH))", ErrConsensusFailure)
		}

		e.redeemScript = redeemScript
		e.redeemScriptType = payments.P2WSH
		e.witnessScript = witnessScript
		e.witnessScriptType = e.signType
		e.prevOutType = payments.P2SH
		e.prevOutScript = prevOutScript
		e.hasWitness = true
		e.signScript = witnessScript

		return e, nil
	case len(redeemScript) != 0:
		prevOutScript := payments.MustP2SHScriptFromRedeem(redeemScript)
		if len(in.prevOutScript) != 0 {
			if payments.ClassifyOutput(in.prevOutScript) != payments.P2SH {
				return expansion{}, fmt.Errorf("%w: previous output script must be P2SH", ErrInconsistentRedeemScript)
			}
			if !bytes.Equal(prevOutScript, in.prevOutScript) {
				return expansion{}, ErrInconsistentRedeemScript
			}
		}

		e, err := expandSigning(in, redeemScript, ourPubKey)
		if err != nil {
			return expansion{}, err
		}

		e.redeemScript = redeemScript
		e.redeemScriptType = e.signType
		e.prevOutType = payments.P2SH
		e.prevOutScript = prevOutScript
		e.signScript = redeemScript
		if e.signType == payments.P2WPKH {
			e.hasWitness = true
			e.signScript = payments.MustP2PKHScript(btcutil.Hash160(e.pubKeys[0]))
		}

		return e, nil
	case len(witnessScript) != 0:
		prevOutScript := payments.MustP2WSHScriptFromWitness(witnessScript)
		if len(in.prevOutScript) != 0 && !bytes.Equal(prevOutScript, in.prevOutScript) {
			return expansion{}, ErrInconsistentWitnessScript
		}

		e, err := expandSigning(in, witnessScript, ourPubKey)
		if err != nil {
			return expansion{}, err
		}
		if e.signType == payments.P2WPKH {
			return expansion{}, fmt.Errorf("%w: P2WSH(P2WPKH)", ErrConsensusFailure)
		}

		e.witnessScript = witnessScript
		e.witnessScriptType = e.signType
		e.prevOutType = payments.P2WSH
		e.prevOutScript = prevOutScript
		e.hasWitness = true
		e.signScript = witnessScript

		return e, nil
	case in.prevOutType == payments.P2SH:
		return expansion{}, ErrRedeemScriptRequired
	case in.prevOutType == payments.P2WSH:
		return expansion{}, ErrWitnessScriptRequired
	case len(in.prevOutScript) != 0:
		e, err := expandSigning(in, in.prevOutScript, ourPubKey)
		if err != nil {
			return expansion{}, err
		}

		e.prevOutType = e.signType
		e.prevOutScript = in.prevOutScript
		e.signScript = in.prevOutScript
		if e.signType == payments.P2WPKH {
			e.hasWitness = true
			e.signScript = payments.MustP2PKHScript(btcutil.Hash160(e.pubKeys[0]))
		}

		return e, nil
	case in.prevOutType == payments.NonStandard:
		return expansion{}, ErrNonStandardInput
	case in.prevOutType != "":
		return expansion{}, fmt.Errorf("%w: previous output script of %s input is unknown", ErrUnsupportedScript, in.prevOutType)
	default:
		prevOutScript, err := payments.P2PKHScriptFromPubKey(ourPubKey)
		if err != nil {
			return expansion{}, errors.Join(ErrMissingKeyPairParameter, err)
		}

		return expansion{
			prevOutScript: prevOutScript,
			prevOutType:   payments.P2PKH,
			signScript:    prevOutScript,
			signType:      payments.P2PKH,
			pubKeys:       [][]byte{ourPubKey},
			signatures:    [][]byte{nil},
			maxSignatures: 1,
		}, nil
	}
}

// expandSigning expands script which is signed over and keeps already recorded signatures.
func expandSigning(in *inputRecord, lockingScript, ourPubKey []byte) (expansion, error) {
	scriptType, pubKeys, m := expandOutput(lockingScript, ourPubKey)
	if len(pubKeys) == 0 {
		switch scriptType {
		case payments.P2PKH, payments.P2WPKH:
			return expansion{}, fmt.Errorf("%w: %s script does not commit to the key", ErrPublicKeyNotInRedeemScript, scriptType)
		case payments.P2WSH:
			return expansion{}, ErrWitnessScriptRequired
		default:
			return expansion{}, fmt.Errorf("%w: %s (%s)", ErrUnsupportedScript, scriptType, describe(lockingScript))
		}
	}

	// signatures recorded in another order are kept for placement.
	signatures := make([][]byte, len(pubKeys))
	if in.hasSignatures() {
		signatures = cloneStack(in.signatures)
	}

	return expansion{
		signType:      scriptType,
		pubKeys:       pubKeys,
		signatures:    signatures,
		maxSignatures: m,
	}, nil
}

// describe returns asm of the script, or hex when it does not decompile.
func describe(s []byte) string {
	asm, err := script.ToASM(s)
	if err != nil {
		return fmt.Sprintf("%x", s)
	}

	return asm
}

// cloneStack returns deep copy of byte slices keeping nil items nil.
func cloneStack(stack [][]byte) [][]byte {
	if stack == nil {
		return nil
	}

	c := make([][]byte, len(stack))
	for i, item := range stack {
		c[i] = bytes.Clone(item)
	}

	return c
}
