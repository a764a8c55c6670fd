// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package payments recognizes and builds standard locking and unlocking script shapes.
package payments

import (
	"errors"

	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

// ScriptType defines shape of a script.
type ScriptType string

const (
	// P2PKH defines pay to public key hash script type.
	P2PKH ScriptType = "P2PKH"
	// P2SH defines pay to script hash script type.
	P2SH ScriptType = "P2SH"
	// P2WPKH defines pay to witness public key hash script type.
	P2WPKH ScriptType = "P2WPKH"
	// P2WSH defines pay to witness script hash script type.
	P2WSH ScriptType = "P2WSH"
	// MultiSig defines bare m-of-n multi-sig script type.
	MultiSig ScriptType = "MULTISIG"
	// P2PK defines pay to public key script type.
	P2PK ScriptType = "P2PK"
	// NullData defines provably unspendable (OP_RETURN) script type.
	NullData ScriptType = "NULLDATA"
	// NonStandard defines any script that matches none of the known shapes.
	NonStandard ScriptType = "NONSTANDARD"
)

var (
	// ErrInvalidHash defines that hash has wrong size for the script type.
	ErrInvalidHash = errors.New("invalid hash length")
	// ErrInvalidPubKey defines that public key is not a valid secp256k1 point.
	ErrInvalidPubKey = errors.New("invalid public key")
	// ErrInvalidMultiSig defines that m-of-n parameters are out of range.
	ErrInvalidMultiSig = errors.New("invalid multi-sig parameters")
	// ErrTypeMismatch defines that script does not match the requested shape.
	ErrTypeMismatch = errors.New("script type mismatch")
)

// IsSingleSig returns true for shapes that are unlocked by exactly one signature.
func (t ScriptType) IsSingleSig() bool {
	return t == P2PKH || t == P2PK || t == P2WPKH
}

// IsSegwit returns true for witness program shapes.
func (t ScriptType) IsSegwit() bool {
	return t == P2WPKH || t == P2WSH
}

// Template recognizes one script shape.
type Template interface {
	// Type returns shape recognized by the template.
	Type() ScriptType
	// MatchOutput returns true if locking script has the shape.
	MatchOutput(lockingScript []byte) bool
	// MatchInput returns true if unlocking chunks satisfy the shape.
	// Templates without an unlocking form never match.
	MatchInput(chunks []script.Chunk, allowIncomplete bool) bool
}

// outputTemplates are tried in order on locking scripts.
var outputTemplates = []Template{
	p2pkhTemplate{},
	p2shTemplate{},
	p2wpkhTemplate{},
	p2wshTemplate{},
	multiSigTemplate{},
	p2pkTemplate{},
	nullDataTemplate{},
}

// inputTemplates are tried in order on unlocking scripts.
var inputTemplates = []Template{
	p2pkhTemplate{},
	p2shTemplate{},
	multiSigTemplate{},
	p2pkTemplate{},
}

// witnessTemplates are tried in order on witness stacks.
var witnessTemplates = []Template{
	p2wpkhTemplate{},
	p2wshTemplate{},
}

// TemplateOf returns template for script type.
func TemplateOf(scriptType ScriptType) (Template, bool) {
	for _, template := range outputTemplates {
		if template.Type() == scriptType {
			return template, true
		}
	}

	return nil, false
}

// ClassifyOutput returns shape of locking script.
func ClassifyOutput(lockingScript []byte) ScriptType {
	for _, template := range outputTemplates {
		if template.MatchOutput(lockingScript) {
			return template.Type()
		}
	}

	return NonStandard
}

// ClassifyInput returns shape of unlocking script.
// When allowIncomplete is set OP_0 placeholders count as missing multi-sig signatures.
func ClassifyInput(scriptSig []byte, allowIncomplete bool) ScriptType {
	chunks, err := script.Decompile(scriptSig)
	if err != nil {
		return NonStandard
	}

	return classify(inputTemplates, chunks, allowIncomplete)
}

// ClassifyWitness returns shape of witness stack.
func ClassifyWitness(witness [][]byte, allowIncomplete bool) ScriptType {
	return classify(witnessTemplates, StackToChunks(witness), allowIncomplete)
}

// StackToChunks converts stack items into chunks, small values become their operations.
func StackToChunks(stack [][]byte) []script.Chunk {
	chunks := make([]script.Chunk, len(stack))
	for i, item := range stack {
		chunks[i] = script.Push(item)
	}

	return chunks
}

func classify(templates []Template, chunks []script.Chunk, allowIncomplete bool) ScriptType {
	for _, template := range templates {
		if template.MatchInput(chunks, allowIncomplete) {
			return template.Type()
		}
	}

	return NonStandard
}

// isCanonicalSignatureChunk returns true for push of a script signature.
func isCanonicalSignatureChunk(chunk script.Chunk) bool {
	return chunk.IsPush() && script.IsCanonicalScriptSignature(chunk.Data)
}

// isCanonicalPubKeyChunk returns true for push of a public key.
func isCanonicalPubKeyChunk(chunk script.Chunk) bool {
	return chunk.IsPush() && script.IsCanonicalPubKey(chunk.Data)
}

// isPlaceholder returns true for OP_0 used in place of a missing signature.
func isPlaceholder(chunk script.Chunk) bool {
	return !chunk.IsPush() && chunk.Opcode == txscript.OP_0
}

// matchNested checks unlocking chunks against the shape of the script they unlock.
func matchNested(chunks []script.Chunk, lockingScript []byte, allowIncomplete bool) bool {
	for _, template := range []Template{p2pkhTemplate{}, multiSigTemplate{}, p2pkTemplate{}} {
		if template.MatchInput(chunks, allowIncomplete) && template.MatchOutput(lockingScript) {
			return true
		}
	}

	return false
}
