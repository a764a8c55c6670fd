// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package payments

import (
	"bytes"

	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

const (
	hash160Size     = 20
	hash256Size     = 32
	p2pkhScriptSize = 25
	p2shScriptSize  = 23
	p2wpkhSize      = 22
	p2wshSize       = 34
	maxMultiSigKeys = 16
)

// p2pkhTemplate: OP_DUP OP_HASH160 <20> OP_EQUALVERIFY OP_CHECKSIG / <sig> <pubKey>.
type p2pkhTemplate struct{}

func (p2pkhTemplate) Type() ScriptType { return P2PKH }

func (p2pkhTemplate) MatchOutput(s []byte) bool {
	return len(s) == p2pkhScriptSize &&
		s[0] == txscript.OP_DUP &&
		s[1] == txscript.OP_HASH160 &&
		s[2] == txscript.OP_DATA_20 &&
		s[23] == txscript.OP_EQUALVERIFY &&
		s[24] == txscript.OP_CHECKSIG
}

func (p2pkhTemplate) MatchInput(chunks []script.Chunk, _ bool) bool {
	return len(chunks) == 2 &&
		isCanonicalSignatureChunk(chunks[0]) &&
		isCanonicalPubKeyChunk(chunks[1])
}

// p2shTemplate: OP_HASH160 <20> OP_EQUAL / <inner pushes...> <redeemScript>.
type p2shTemplate struct{}

func (p2shTemplate) Type() ScriptType { return P2SH }

func (p2shTemplate) MatchOutput(s []byte) bool {
	return len(s) == p2shScriptSize &&
		s[0] == txscript.OP_HASH160 &&
		s[1] == txscript.OP_DATA_20 &&
		s[22] == txscript.OP_EQUAL
}

func (p2shTemplate) MatchInput(chunks []script.Chunk, allowIncomplete bool) bool {
	if len(chunks) == 0 {
		return false
	}

	redeemChunk := chunks[len(chunks)-1]
	if !redeemChunk.IsPush() {
		return false
	}

	if _, err := script.Decompile(redeemChunk.Data); err != nil {
		return false
	}

	inner := chunks[:len(chunks)-1]
	if !script.IsPushOnly(inner) {
		return false
	}

	if len(inner) == 0 {
		return p2wshTemplate{}.MatchOutput(redeemChunk.Data) || p2wpkhTemplate{}.MatchOutput(redeemChunk.Data)
	}

	return matchNested(inner, redeemChunk.Data, allowIncomplete)
}

// p2wpkhTemplate: OP_0 <20> / witness <sig> <compressed pubKey>.
type p2wpkhTemplate struct{}

func (p2wpkhTemplate) Type() ScriptType { return P2WPKH }

func (p2wpkhTemplate) MatchOutput(s []byte) bool {
	return len(s) == p2wpkhSize &&
		s[0] == txscript.OP_0 &&
		s[1] == txscript.OP_DATA_20
}

func (p2wpkhTemplate) MatchInput(chunks []script.Chunk, _ bool) bool {
	return len(chunks) == 2 &&
		isCanonicalSignatureChunk(chunks[0]) &&
		chunks[1].IsPush() && script.IsCompressedPubKey(chunks[1].Data)
}

// p2wshTemplate: OP_0 <32> / witness <inner items...> <witnessScript>.
type p2wshTemplate struct{}

func (p2wshTemplate) Type() ScriptType { return P2WSH }

func (p2wshTemplate) MatchOutput(s []byte) bool {
	return len(s) == p2wshSize &&
		s[0] == txscript.OP_0 &&
		s[1] == txscript.OP_DATA_32
}

func (p2wshTemplate) MatchInput(chunks []script.Chunk, allowIncomplete bool) bool {
	if len(chunks) == 0 {
		return false
	}

	witnessChunk := chunks[len(chunks)-1]
	if !witnessChunk.IsPush() {
		return false
	}

	witnessScriptChunks, err := script.Decompile(witnessChunk.Data)
	if err != nil || len(witnessScriptChunks) == 0 {
		return false
	}

	return matchNested(chunks[:len(chunks)-1], witnessChunk.Data, allowIncomplete)
}

// multiSigTemplate: OP_m <pubKey>... OP_n OP_CHECKMULTISIG / OP_0 <sig>...
type multiSigTemplate struct{}

func (multiSigTemplate) Type() ScriptType { return MultiSig }

func (multiSigTemplate) MatchOutput(s []byte) bool {
	_, err := DecodeMultiSig(s)
	return err == nil
}

func (multiSigTemplate) MatchInput(chunks []script.Chunk, allowIncomplete bool) bool {
	if len(chunks) < 2 || !isPlaceholder(chunks[0]) {
		return false
	}

	for _, chunk := range chunks[1:] {
		if isCanonicalSignatureChunk(chunk) {
			continue
		}
		if allowIncomplete && isPlaceholder(chunk) {
			continue
		}

		return false
	}

	return true
}

// p2pkTemplate: <pubKey> OP_CHECKSIG / <sig>.
type p2pkTemplate struct{}

func (p2pkTemplate) Type() ScriptType { return P2PK }

func (p2pkTemplate) MatchOutput(s []byte) bool {
	_, err := DecodeP2PK(s)
	return err == nil
}

func (p2pkTemplate) MatchInput(chunks []script.Chunk, _ bool) bool {
	return len(chunks) == 1 && isCanonicalSignatureChunk(chunks[0])
}

// nullDataTemplate: OP_RETURN <data...>.
type nullDataTemplate struct{}

func (nullDataTemplate) Type() ScriptType { return NullData }

func (nullDataTemplate) MatchOutput(s []byte) bool {
	return len(s) > 1 && s[0] == txscript.OP_RETURN
}

func (nullDataTemplate) MatchInput([]script.Chunk, bool) bool { return false }

// MultiSigInfo holds parameters of m-of-n multi-sig script.
type MultiSigInfo struct {
	M       int
	PubKeys [][]byte
}

// DecodeMultiSig parses m-of-n multi-sig locking script.
func DecodeMultiSig(lockingScript []byte) (MultiSigInfo, error) {
	chunks, err := script.Decompile(lockingScript)
	if err != nil {
		return MultiSigInfo{}, err
	}

	if len(chunks) < 4 || chunks[len(chunks)-1].IsPush() || chunks[len(chunks)-1].Opcode != txscript.OP_CHECKMULTISIG {
		return MultiSigInfo{}, ErrTypeMismatch
	}

	m, ok := script.SmallInt(chunks[0])
	if !ok {
		return MultiSigInfo{}, ErrTypeMismatch
	}
	n, ok := script.SmallInt(chunks[len(chunks)-2])
	if !ok {
		return MultiSigInfo{}, ErrTypeMismatch
	}
	if m <= 0 || m > n || n != len(chunks)-3 {
		return MultiSigInfo{}, ErrTypeMismatch
	}

	pubKeys := make([][]byte, 0, n)
	for _, chunk := range chunks[1 : len(chunks)-2] {
		if !isCanonicalPubKeyChunk(chunk) {
			return MultiSigInfo{}, ErrTypeMismatch
		}

		pubKeys = append(pubKeys, chunk.Data)
	}

	return MultiSigInfo{M: m, PubKeys: pubKeys}, nil
}

// DecodeP2PK returns public key locked by pay to public key script.
func DecodeP2PK(lockingScript []byte) ([]byte, error) {
	chunks, err := script.Decompile(lockingScript)
	if err != nil {
		return nil, err
	}

	if len(chunks) != 2 || !isCanonicalPubKeyChunk(chunks[0]) ||
		chunks[1].IsPush() || chunks[1].Opcode != txscript.OP_CHECKSIG {
		return nil, ErrTypeMismatch
	}

	return chunks[0].Data, nil
}

// ExtractHash returns hash committed to by P2PKH, P2SH, P2WPKH or P2WSH locking script.
func ExtractHash(lockingScript []byte) ([]byte, ScriptType, error) {
	switch scriptType := ClassifyOutput(lockingScript); scriptType {
	case P2PKH:
		return bytes.Clone(lockingScript[3:23]), scriptType, nil
	case P2SH:
		return bytes.Clone(lockingScript[2:22]), scriptType, nil
	case P2WPKH, P2WSH:
		return bytes.Clone(lockingScript[2:]), scriptType, nil
	default:
		return nil, scriptType, ErrTypeMismatch
	}
}
