// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package signer provides secp256k1 ECDSA signing capability used to sign transaction inputs.
package signer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/BoostyLabs/utxobuilder/bitcoin/networks"
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

var (
	// ErrInvalidPrivateKey defines that private key is out of the curve order range.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrInvalidHash defines that digest to sign is not 32 bytes long.
	ErrInvalidHash = errors.New("invalid digest length")
	// ErrWrongNetwork defines that key was encoded for another network.
	ErrWrongNetwork = errors.New("key belongs to another network")
)

// Signer produces signatures over 32-byte digests.
type Signer interface {
	// PublicKey returns serialized public key, compressed or not.
	PublicKey() []byte
	// Sign returns 64-byte r || s signature (or DER) of the digest.
	Sign(hash []byte) ([]byte, error)
}

// LowRSigner is a Signer which can grind nonce until r fits in 32 bytes without padding.
type LowRSigner interface {
	Signer
	// SignLowR returns signature whose r has the highest bit unset.
	SignLowR(hash []byte) ([]byte, error)
}

// NetworkSigner is a Signer bound to a network.
type NetworkSigner interface {
	Signer
	// Network returns network the key belongs to.
	Network() *networks.Network
}

// ensures that KeyPair implements all signer capabilities.
var (
	_ LowRSigner    = (*KeyPair)(nil)
	_ NetworkSigner = (*KeyPair)(nil)
)

// KeyPair holds secp256k1 private key.
type KeyPair struct {
	privateKey *btcec.PrivateKey
	compressed bool
	network    *networks.Network
}

// NewKeyPair is a constructor for KeyPair.
func NewKeyPair(privateKey *btcec.PrivateKey, compressed bool, network *networks.Network) *KeyPair {
	return &KeyPair{
		privateKey: privateKey,
		compressed: compressed,
		network:    network,
	}
}

// GenerateKeyPair creates KeyPair with random compressed key.
func GenerateKeyPair(network *networks.Network) (*KeyPair, error) {
	privateKey, err := btcec.NewPrivateKey()
	if err != nil {
		return nil, err
	}

	return NewKeyPair(privateKey, true, network), nil
}

// KeyPairFromBytes creates KeyPair from 32-byte private key.
func KeyPairFromBytes(privateKey []byte, compressed bool, network *networks.Network) (*KeyPair, error) {
	if len(privateKey) != btcec.PrivKeyBytesLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPrivateKey, btcec.PrivKeyBytesLen, len(privateKey))
	}

	var scalar btcec.ModNScalar
	if overflow := scalar.SetByteSlice(privateKey); overflow || scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}

	return NewKeyPair(secp256k1.NewPrivateKey(&scalar), compressed, network), nil
}

// KeyPairFromWIF decodes private key in wallet import format.
func KeyPairFromWIF(wif string, network *networks.Network) (*KeyPair, error) {
	decoded, err := btcutil.DecodeWIF(wif)
	if err != nil {
		return nil, err
	}

	if !decoded.IsForNet(network.Params) {
		return nil, fmt.Errorf("%w: expected %s", ErrWrongNetwork, network.Name)
	}

	return NewKeyPair(decoded.PrivKey, decoded.CompressPubKey, network), nil
}

// WIF encodes private key in wallet import format.
func (kp *KeyPair) WIF() (string, error) {
	wif, err := btcutil.NewWIF(kp.privateKey, kp.network.Params, kp.compressed)
	if err != nil {
		return "", err
	}

	return wif.String(), nil
}

// PublicKey returns serialized public key.
func (kp *KeyPair) PublicKey() []byte {
	if kp.compressed {
		return kp.privateKey.PubKey().SerializeCompressed()
	}

	return kp.privateKey.PubKey().SerializeUncompressed()
}

// PrivateKey returns underlying private key.
func (kp *KeyPair) PrivateKey() *btcec.PrivateKey {
	return kp.privateKey
}

// Compressed returns true if public key is serialized in compressed form.
func (kp *KeyPair) Compressed() bool {
	return kp.compressed
}

// Network returns network the key belongs to.
func (kp *KeyPair) Network() *networks.Network {
	return kp.network
}

// Sign returns deterministic (RFC6979) 64-byte r || s signature with low S.
func (kp *KeyPair) Sign(hash []byte) ([]byte, error) {
	return kp.sign(hash, nil)
}

// SignLowR returns deterministic signature whose r has the highest bit unset.
// Nonce is re-derived with 32 bytes of extra data holding little-endian counter until r fits.
func (kp *KeyPair) SignLowR(hash []byte) ([]byte, error) {
	sig, err := kp.sign(hash, nil)
	if err != nil {
		return nil, err
	}

	var extraData [32]byte
	for counter := uint64(1); sig[0] > 0x7f; counter++ {
		binary.LittleEndian.PutUint64(extraData[:8], counter)
		if sig, err = kp.sign(hash, extraData[:]); err != nil {
			return nil, err
		}
	}

	return sig, nil
}

// Verify checks compact or DER signature of the digest.
func (kp *KeyPair) Verify(hash, sig []byte) bool {
	parsed, err := script.ParseSignature(sig)
	if err != nil {
		return false
	}

	return parsed.Verify(hash, kp.privateKey.PubKey())
}

// sign implements ECDSA with RFC6979 nonce, extraData is mixed into nonce derivation.
func (kp *KeyPair) sign(hash, extraData []byte) ([]byte, error) {
	if len(hash) != 32 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidHash, len(hash))
	}

	var (
		d            = kp.privateKey.Key
		privKeyBytes = d.Bytes()
		e            btcec.ModNScalar
	)
	e.SetByteSlice(hash)

	for iteration := uint32(0); ; iteration++ {
		k := secp256k1.NonceRFC6979(privKeyBytes[:], hash, extraData, nil, iteration)

		var kG secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(k, &kG)
		kG.ToAffine()

		var r btcec.ModNScalar
		r.SetByteSlice(kG.X.Bytes()[:])
		if r.IsZero() {
			k.Zero()
			continue
		}

		kInv := new(btcec.ModNScalar).InverseValNonConst(k)
		k.Zero()

		s := new(btcec.ModNScalar).Mul2(&d, &r).Add(&e).Mul(kInv)
		if s.IsZero() {
			continue
		}
		if s.IsOverHalfOrder() {
			s.Negate()
		}

		var sig [64]byte
		r.PutBytesUnchecked(sig[:32])
		s.PutBytesUnchecked(sig[32:])

		return sig[:], nil
	}
}
