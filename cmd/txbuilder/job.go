// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/btcsuite/btcd/txscript"
	"gopkg.in/yaml.v3"

	"github.com/BoostyLabs/utxobuilder/bitcoin/networks"
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
	"github.com/BoostyLabs/utxobuilder/bitcoin/signer"
	"github.com/BoostyLabs/utxobuilder/bitcoin/transaction"
	"github.com/BoostyLabs/utxobuilder/bitcoin/txbuilder"
)

// ErrInvalidJob defines that job file describes no buildable transaction.
var ErrInvalidJob = errors.New("invalid job")

// job describes transaction to build.
type job struct {
	Network string `yaml:"network"`
	// Transaction is a hex of partially signed transaction to continue from.
	Transaction string      `yaml:"transaction"`
	Version     *uint32     `yaml:"version"`
	LockTime    *uint32     `yaml:"locktime"`
	LowR        bool        `yaml:"lowr"`
	Inputs      []jobInput  `yaml:"inputs"`
	Outputs     []jobOutput `yaml:"outputs"`
	Signatures  []jobSign   `yaml:"signatures"`
}

type jobInput struct {
	TxID string `yaml:"txid"`
	// PrevTx is a hex of previous transaction, replaces TxID, Script and Value.
	PrevTx   string  `yaml:"prevtx"`
	Vout     uint32  `yaml:"vout"`
	Sequence *uint32 `yaml:"sequence"`
	Script   string  `yaml:"script"`
	Value    *uint64 `yaml:"value"`
}

type jobOutput struct {
	Address string `yaml:"address"`
	Script  string `yaml:"script"`
	ASM     string `yaml:"asm"`
	Value   uint64 `yaml:"value"`
}

type jobSign struct {
	Vin           int     `yaml:"vin"`
	WIF           string  `yaml:"wif"`
	RedeemScript  string  `yaml:"redeemscript"`
	WitnessScript string  `yaml:"witnessscript"`
	HashType      string  `yaml:"hashtype"`
	Value         *uint64 `yaml:"value"`
}

// parseJob decodes YAML job, unknown fields are rejected.
func parseJob(r io.Reader) (*job, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var j job
	if err := decoder.Decode(&j); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}

	return &j, nil
}

// builder applies job to a new transaction builder. network overrides the one of the job when set.
func (j *job) builder(network string) (*txbuilder.TransactionBuilder, error) {
	if network == "" {
		network = j.Network
	}
	if network == "" {
		network = networks.MainNet.Name
	}

	net, err := networks.ByName(network)
	if err != nil {
		return nil, err
	}

	txb := txbuilder.NewTransactionBuilder(net)
	if j.Transaction != "" {
		if txb, err = txbuilder.FromHex(j.Transaction, net); err != nil {
			return nil, err
		}
	}

	txb.SetLowR(j.LowR)
	if j.Version != nil {
		txb.SetVersion(*j.Version)
	}
	if j.LockTime != nil {
		if err = txb.SetLockTime(*j.LockTime); err != nil {
			return nil, err
		}
	}

	for i, in := range j.Inputs {
		if err = in.add(txb); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
	}

	for i, out := range j.Outputs {
		if err = out.add(txb); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
	}

	for i, sign := range j.Signatures {
		if err = sign.apply(txb); err != nil {
			return nil, fmt.Errorf("signature %d: %w", i, err)
		}
	}

	return txb, nil
}

func (in jobInput) add(txb *txbuilder.TransactionBuilder) error {
	params := txbuilder.InputParams{Sequence: in.Sequence, Value: in.Value}
	if in.PrevTx != "" {
		prevTx, err := transaction.FromHex(in.PrevTx)
		if err != nil {
			return err
		}

		_, err = txb.AddInputFromTransaction(prevTx, in.Vout, params)
		return err
	}

	prevOutScript, err := decodeHex(in.Script)
	if err != nil {
		return err
	}
	params.PrevOutScript = prevOutScript

	_, err = txb.AddInputFromTxID(in.TxID, in.Vout, params)
	return err
}

func (out jobOutput) add(txb *txbuilder.TransactionBuilder) error {
	switch {
	case out.Address != "":
		_, err := txb.AddOutputToAddress(out.Address, out.Value)
		return err
	case out.Script != "":
		lockingScript, err := decodeHex(out.Script)
		if err != nil {
			return err
		}

		_, err = txb.AddOutput(lockingScript, out.Value)
		return err
	case out.ASM != "":
		lockingScript, err := script.FromASM(out.ASM)
		if err != nil {
			return err
		}

		_, err = txb.AddOutput(lockingScript, out.Value)
		return err
	default:
		return fmt.Errorf("%w: output needs address, script or asm", ErrInvalidJob)
	}
}

func (sign jobSign) apply(txb *txbuilder.TransactionBuilder) error {
	keyPair, err := signer.KeyPairFromWIF(sign.WIF, txb.Network())
	if err != nil {
		return err
	}

	redeemScript, err := decodeHex(sign.RedeemScript)
	if err != nil {
		return err
	}

	witnessScript, err := decodeHex(sign.WitnessScript)
	if err != nil {
		return err
	}

	hashType, err := parseHashType(sign.HashType)
	if err != nil {
		return err
	}

	return txb.Sign(txbuilder.SignParams{
		Vin:           sign.Vin,
		Signer:        keyPair,
		RedeemScript:  redeemScript,
		WitnessScript: witnessScript,
		HashType:      hashType,
		WitnessValue:  sign.Value,
	})
}

var baseHashTypes = map[string]txscript.SigHashType{
	"ALL":    txscript.SigHashAll,
	"NONE":   txscript.SigHashNone,
	"SINGLE": txscript.SigHashSingle,
}

// parseHashType parses hash types like "ALL" or "SINGLE|ANYONECANPAY", empty string is ALL.
func parseHashType(s string) (txscript.SigHashType, error) {
	if s == "" {
		return txscript.SigHashAll, nil
	}

	base, modifier, hasModifier := strings.Cut(strings.ToUpper(s), "|")
	hashType, ok := baseHashTypes[strings.TrimPrefix(strings.TrimSpace(base), "SIGHASH_")]
	if !ok {
		return 0, fmt.Errorf("%w: unknown hash type %q", ErrInvalidJob, s)
	}
	if hasModifier {
		if strings.TrimPrefix(strings.TrimSpace(modifier), "SIGHASH_") != "ANYONECANPAY" {
			return 0, fmt.Errorf("%w: unknown hash type modifier %q", ErrInvalidJob, modifier)
		}

		hashType |= txscript.SigHashAnyOneCanPay
	}

	return hashType, nil
}

func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidJob, err)
	}

	return b, nil
}
