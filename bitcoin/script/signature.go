// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package script

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

var (
	// ErrInvalidSignature defines that signature could not be parsed.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrInvalidHashType defines that signature hash type is not one of ALL, NONE, SINGLE (optionally with ANYONECANPAY).
	ErrInvalidHashType = errors.New("invalid signature hash type")
)

// compactSignatureSize is the size of r || s signature.
const compactSignatureSize = 64

// IsDefinedHashType returns true for ALL, NONE, SINGLE optionally combined with ANYONECANPAY.
func IsDefinedHashType(hashType txscript.SigHashType) bool {
	mod := hashType &^ txscript.SigHashAnyOneCanPay
	return mod >= txscript.SigHashAll && mod <= txscript.SigHashSingle
}

// EncodeSignature converts signature into script signature: strict DER with low S,
// followed by the hash type byte. Accepts both 64-byte compact (r || s) and DER input.
func EncodeSignature(sig []byte, hashType txscript.SigHashType) ([]byte, error) {
	if !IsDefinedHashType(hashType) {
		return nil, ErrInvalidHashType
	}

	parsed, err := ParseSignature(sig)
	if err != nil {
		return nil, err
	}

	return append(parsed.Serialize(), byte(hashType)), nil
}

// DecodeSignature splits script signature into DER signature and hash type.
func DecodeSignature(scriptSig []byte) ([]byte, txscript.SigHashType, error) {
	if len(scriptSig) == 0 {
		return nil, 0, ErrInvalidSignature
	}

	hashType := txscript.SigHashType(scriptSig[len(scriptSig)-1])
	if !IsDefinedHashType(hashType) {
		return nil, 0, ErrInvalidHashType
	}

	der := scriptSig[:len(scriptSig)-1]
	if _, err := ecdsa.ParseDERSignature(der); err != nil {
		return nil, 0, errors.Join(ErrInvalidSignature, err)
	}

	return der, hashType, nil
}

// SigHashTypeOf returns hash type of script signature without further validation.
func SigHashTypeOf(scriptSig []byte) txscript.SigHashType {
	if len(scriptSig) == 0 {
		return 0
	}

	return txscript.SigHashType(scriptSig[len(scriptSig)-1])
}

// IsCanonicalScriptSignature returns true if data is DER signature followed by a defined hash type.
func IsCanonicalScriptSignature(data []byte) bool {
	_, _, err := DecodeSignature(data)
	return err == nil
}

// IsCanonicalPubKey returns true if data is a valid compressed or uncompressed public key.
func IsCanonicalPubKey(data []byte) bool {
	if len(data) != secp256k1.PubKeyBytesLenCompressed && len(data) != secp256k1.PubKeyBytesLenUncompressed {
		return false
	}

	_, err := btcec.ParsePubKey(data)
	return err == nil
}

// IsCompressedPubKey returns true if data is a valid compressed public key.
func IsCompressedPubKey(data []byte) bool {
	return len(data) == secp256k1.PubKeyBytesLenCompressed && IsCanonicalPubKey(data)
}

// VerifySignature checks script signature against digest and public key.
func VerifySignature(scriptSig, hash, pubKey []byte) bool {
	der, _, err := DecodeSignature(scriptSig)
	if err != nil {
		return false
	}

	sig, err := ecdsa.ParseDERSignature(der)
	if err != nil {
		return false
	}

	key, err := btcec.ParsePubKey(pubKey)
	if err != nil {
		return false
	}

	return sig.Verify(hash, key)
}

// ParseSignature parses compact (r || s) or DER signature.
func ParseSignature(sig []byte) (*ecdsa.Signature, error) {
	if len(sig) != compactSignatureSize {
		parsed, err := ecdsa.ParseDERSignature(sig)
		if err != nil {
			return nil, errors.Join(ErrInvalidSignature, err)
		}

		return parsed, nil
	}

	var r, s btcec.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow || r.IsZero() {
		return nil, ErrInvalidSignature
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow || s.IsZero() {
		return nil, ErrInvalidSignature
	}

	return ecdsa.NewSignature(&r, &s), nil
}
