// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package address converts between addresses and locking scripts.
package address

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/BoostyLabs/utxobuilder/bitcoin/networks"
	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

const (
	hashSize        = 20
	base58Payload   = hashSize + 1
	witnessV0       = 0
	witnessV0Hash   = 20
	witnessV0Script = 32
)

var (
	// ErrTooShort defines that base58 payload is shorter than version and hash.
	ErrTooShort = errors.New("address is too short")
	// ErrTooLong defines that base58 payload is longer than version and hash.
	ErrTooLong = errors.New("address is too long")
	// ErrInvalidPrefix defines that bech32 prefix does not belong to the network.
	ErrInvalidPrefix = errors.New("address has an invalid prefix")
	// ErrInvalidProgram defines that witness program has unsupported version or size.
	ErrInvalidProgram = errors.New("invalid witness program")
	// ErrNoMatchingAddress defines that locking script has no address form.
	ErrNoMatchingAddress = errors.New("script has no matching address")
	// ErrNoMatchingScript defines that address does not decode to a locking script for the network.
	ErrNoMatchingScript = errors.New("address has no matching script")
)

// Base58Check is a decoded base58 address.
type Base58Check struct {
	Version byte
	Hash    []byte
}

// Bech32 is a decoded segwit address.
type Bech32 struct {
	Version byte
	Prefix  string
	Data    []byte
}

// FromBase58Check decodes base58 address with checksum.
func FromBase58Check(addr string) (Base58Check, error) {
	hash, version, err := base58.CheckDecode(addr)
	if err != nil {
		return Base58Check{}, err
	}

	switch size := len(hash) + 1; {
	case size < base58Payload:
		return Base58Check{}, fmt.Errorf("%w: %s", ErrTooShort, addr)
	case size > base58Payload:
		return Base58Check{}, fmt.Errorf("%w: %s", ErrTooLong, addr)
	}

	return Base58Check{Version: version, Hash: hash}, nil
}

// ToBase58Check encodes hash with version into base58 address.
func ToBase58Check(hash []byte, version byte) (string, error) {
	if len(hash) != hashSize {
		return "", fmt.Errorf("%w: expected %d bytes, got %d", payments.ErrInvalidHash, hashSize, len(hash))
	}

	return base58.CheckEncode(hash, version), nil
}

// FromBech32 decodes segwit address.
func FromBech32(addr string) (Bech32, error) {
	prefix, data, err := bech32.Decode(addr)
	if err != nil {
		return Bech32{}, err
	}
	if len(data) == 0 {
		return Bech32{}, fmt.Errorf("%w: empty data", ErrInvalidProgram)
	}

	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return Bech32{}, err
	}

	return Bech32{Version: data[0], Prefix: prefix, Data: program}, nil
}

// ToBech32 encodes witness program into segwit address.
func ToBech32(program []byte, version byte, prefix string) (string, error) {
	if version != witnessV0 {
		return "", fmt.Errorf("%w: version %d", ErrInvalidProgram, version)
	}

	converted, err := bech32.ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}

	return bech32.Encode(prefix, append([]byte{version}, converted...))
}

// FromOutputScript returns address of locking script.
func FromOutputScript(lockingScript []byte, network *networks.Network) (string, error) {
	hash, scriptType, err := payments.ExtractHash(lockingScript)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNoMatchingAddress, describe(lockingScript))
	}

	var addr btcutil.Address
	switch scriptType {
	case payments.P2PKH:
		addr, err = btcutil.NewAddressPubKeyHash(hash, network.Params)
	case payments.P2SH:
		addr, err = btcutil.NewAddressScriptHashFromHash(hash, network.Params)
	case payments.P2WPKH:
		addr, err = btcutil.NewAddressWitnessPubKeyHash(hash, network.Params)
	case payments.P2WSH:
		addr, err = btcutil.NewAddressWitnessScriptHash(hash, network.Params)
	}
	if err != nil {
		return "", errors.Join(ErrNoMatchingAddress, err)
	}

	return addr.EncodeAddress(), nil
}

// ToOutputScript returns locking script of address valid for the network.
func ToOutputScript(addr string, network *networks.Network) ([]byte, error) {
	if decoded, err := FromBase58Check(addr); err == nil {
		scriptType, ok := network.AddrIDType(decoded.Version)
		switch {
		case ok && scriptType == payments.P2PKH:
			return payments.P2PKHScript(decoded.Hash)
		case ok && scriptType == payments.P2SH:
			return payments.P2SHScript(decoded.Hash)
		}

		return nil, fmt.Errorf("%w: %s", ErrNoMatchingScript, addr)
	}

	decoded, err := FromBech32(addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatchingScript, addr)
	}
	if decoded.Prefix != network.Bech32HRPSegwit {
		return nil, fmt.Errorf("%w: %w: %s", ErrNoMatchingScript, ErrInvalidPrefix, addr)
	}

	if decoded.Version == witnessV0 {
		switch len(decoded.Data) {
		case witnessV0Hash:
			return payments.P2WPKHScript(decoded.Data)
		case witnessV0Script:
			return payments.P2WSHScript(decoded.Data)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNoMatchingScript, addr)
}

// describe returns asm of the script, or hex when it does not decompile.
func describe(lockingScript []byte) string {
	asm, err := script.ToASM(lockingScript)
	if err != nil {
		return hex.EncodeToString(lockingScript)
	}

	return asm
}
