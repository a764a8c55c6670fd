// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"

	"github.com/BoostyLabs/utxobuilder/bitcoin/networks"
	"github.com/BoostyLabs/utxobuilder/bitcoin/txbuilder"
)

func TestErrorClasses(t *testing.T) {
	classes := []error{
		txbuilder.ErrMalformedInput,
		txbuilder.ErrInvariantViolation,
		txbuilder.ErrClassificationFailure,
		txbuilder.ErrSigningFailure,
		txbuilder.ErrIncompleteState,
		txbuilder.ErrFormatFailure,
	}

	tests := []struct {
		err   error
		class error
	}{
		{txbuilder.ErrMissingVinParameter, txbuilder.ErrMalformedInput},
		{txbuilder.ErrMissingKeyPairParameter, txbuilder.ErrMalformedInput},
		{txbuilder.ErrInvalidHashType, txbuilder.ErrMalformedInput},
		{txbuilder.ErrInconsistentNetwork, txbuilder.ErrMalformedInput},
		{txbuilder.ErrInconsistentRedeemScript, txbuilder.ErrMalformedInput},
		{txbuilder.ErrInconsistentWitnessScript, txbuilder.ErrMalformedInput},
		{txbuilder.ErrWitnessValueMismatch, txbuilder.ErrMalformedInput},
		{txbuilder.ErrCoinbaseInput, txbuilder.ErrMalformedInput},
		{txbuilder.ErrDuplicateInput, txbuilder.ErrMalformedInput},
		{txbuilder.ErrNoOutputAtIndex, txbuilder.ErrMalformedInput},
		{txbuilder.ErrInvalidTxID, txbuilder.ErrMalformedInput},
		{txbuilder.ErrSignedInputsWouldBeInvalidated, txbuilder.ErrInvariantViolation},
		{txbuilder.ErrTransactionNeedsOutputs, txbuilder.ErrInvariantViolation},
		{txbuilder.ErrTooManySignatures, txbuilder.ErrInvariantViolation},
		{txbuilder.ErrConsensusFailure, txbuilder.ErrInvariantViolation},
		{txbuilder.ErrNoMatchingScript, txbuilder.ErrClassificationFailure},
		{txbuilder.ErrNonStandardInput, txbuilder.ErrClassificationFailure},
		{txbuilder.ErrUnsupportedScript, txbuilder.ErrClassificationFailure},
		{txbuilder.ErrRedeemScriptRequired, txbuilder.ErrClassificationFailure},
		{txbuilder.ErrWitnessScriptRequired, txbuilder.ErrClassificationFailure},
		{txbuilder.ErrPublicKeyNotInRedeemScript, txbuilder.ErrSigningFailure},
		{txbuilder.ErrSignatureExists, txbuilder.ErrSigningFailure},
		{txbuilder.ErrUncompressedWitnessKey, txbuilder.ErrSigningFailure},
		{txbuilder.ErrInvalidSignature, txbuilder.ErrSigningFailure},
		{txbuilder.ErrNoInputAtIndex, txbuilder.ErrIncompleteState},
		{txbuilder.ErrNotEnoughSignatures, txbuilder.ErrIncompleteState},
		{txbuilder.ErrMissingWitnessValue, txbuilder.ErrIncompleteState},
		{txbuilder.ErrNoInputs, txbuilder.ErrIncompleteState},
		{txbuilder.ErrNoOutputs, txbuilder.ErrIncompleteState},
		{txbuilder.NewThresholdError(2, 1), txbuilder.ErrIncompleteState},
		{txbuilder.ErrMalformedTransaction, txbuilder.ErrFormatFailure},
	}
	for _, test := range tests {
		t.Run(test.err.Error(), func(t *testing.T) {
			for _, class := range classes {
				require.Equal(t, class == test.class, errors.Is(test.err, class), class.Error())
			}
		})
	}

	t.Run("ThresholdError", func(t *testing.T) {
		err := txbuilder.NewThresholdError(3, 1)
		require.Equal(t, "incomplete state: not enough signatures: Need - 3, Have - 1", err.Error())
		require.ErrorIs(t, err, txbuilder.ErrNotEnoughSignatures)
		require.NotErrorIs(t, err, txbuilder.ErrTooManySignatures)
	})
}

func TestUseLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := btclog.NewBackend(&buf).Logger(txbuilder.Subsystem)
	logger.SetLevel(btclog.LevelDebug)

	txbuilder.UseLogger(logger)
	defer txbuilder.DisableLog()

	txb := txbuilder.NewTransactionBuilder(networks.MainNet)
	_, err := txb.AddInput(testTxHash(t), 0, txbuilder.InputParams{})
	require.NoError(t, err)

	require.Contains(t, buf.String(), "[DBG] TXBL: input 0 added")
}
