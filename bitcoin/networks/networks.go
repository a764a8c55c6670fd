// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package networks holds address and key version parameters of supported networks.
package networks

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
)

// ErrUnknownNetwork defines that network name is not supported.
var ErrUnknownNetwork = errors.New("unknown network")

// Network describes version bytes and prefixes used by addresses and keys.
type Network struct {
	Name             string
	PubKeyHashAddrID byte
	ScriptHashAddrID byte
	Bech32HRPSegwit  string
	PrivateKeyID     byte
	// ExtraAddrIDs are additional base58 versions accepted for the network
	// together with the locking script shape they map to.
	ExtraAddrIDs map[byte]payments.ScriptType
	Params       *chaincfg.Params
}

var (
	// MainNet is bitcoin main network.
	MainNet = New("mainnet", &chaincfg.MainNetParams, map[byte]payments.ScriptType{
		0x01: payments.P2PKH,
		0x06: payments.P2SH,
	})
	// TestNet is bitcoin test network (version 3).
	TestNet = New("testnet", &chaincfg.TestNet3Params, map[byte]payments.ScriptType{
		0x70: payments.P2PKH,
		0xc5: payments.P2SH,
	})
	// RegTest is bitcoin regression test network.
	RegTest = New("regtest", &chaincfg.RegressionNetParams, nil)
)

// New builds network from chain parameters.
func New(name string, params *chaincfg.Params, extraAddrIDs map[byte]payments.ScriptType) *Network {
	return &Network{
		Name:             name,
		PubKeyHashAddrID: params.PubKeyHashAddrID,
		ScriptHashAddrID: params.ScriptHashAddrID,
		Bech32HRPSegwit:  params.Bech32HRPSegwit,
		PrivateKeyID:     params.PrivateKeyID,
		ExtraAddrIDs:     extraAddrIDs,
		Params:           params,
	}
}

// ByName returns predefined network by its name.
func ByName(name string) (*Network, error) {
	switch strings.ToLower(name) {
	case MainNet.Name, "bitcoin", "main":
		return MainNet, nil
	case TestNet.Name, "testnet3", "test":
		return TestNet, nil
	case RegTest.Name:
		return RegTest, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, name)
	}
}

// AddrIDType returns locking script shape for base58 address version.
func (n *Network) AddrIDType(version byte) (payments.ScriptType, bool) {
	switch version {
	case n.PubKeyHashAddrID:
		return payments.P2PKH, true
	case n.ScriptHashAddrID:
		return payments.P2SH, true
	}

	scriptType, ok := n.ExtraAddrIDs[version]
	return scriptType, ok
}

// Equal returns true if both networks use the same version bytes.
func (n *Network) Equal(other *Network) bool {
	return other != nil &&
		n.PubKeyHashAddrID == other.PubKeyHashAddrID &&
		n.ScriptHashAddrID == other.ScriptHashAddrID &&
		n.PrivateKeyID == other.PrivateKeyID &&
		n.Bech32HRPSegwit == other.Bech32HRPSegwit
}
