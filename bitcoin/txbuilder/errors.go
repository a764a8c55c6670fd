// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"errors"
	"fmt"
)

// Error classes. Every builder error matches exactly one of them with errors.Is.
var (
	// ErrMalformedInput defines errors class for bad data supplied by caller.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvariantViolation defines errors class for operations rejected to keep recorded signatures valid.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrClassificationFailure defines errors class for scripts that match no supported shape.
	ErrClassificationFailure = errors.New("classification failure")
	// ErrSigningFailure defines errors class for inputs that could not be signed with the given key.
	ErrSigningFailure = errors.New("signing failure")
	// ErrIncompleteState defines errors class for operations on missing inputs or signatures.
	ErrIncompleteState = errors.New("incomplete state")
	// ErrFormatFailure defines errors class for undecodable transactions.
	ErrFormatFailure = errors.New("format failure")
)

var (
	// ErrMissingVinParameter defines that input index is negative.
	ErrMissingVinParameter = fmt.Errorf("%w: sign must include vin parameter as input index", ErrMalformedInput)
	// ErrMissingKeyPairParameter defines that signer is absent or has no public key.
	ErrMissingKeyPairParameter = fmt.Errorf("%w: sign must include signer", ErrMalformedInput)
	// ErrInvalidHashType defines that signature hash type is not supported.
	ErrInvalidHashType = fmt.Errorf("%w: invalid signature hash type", ErrMalformedInput)
	// ErrInconsistentNetwork defines that signer belongs to another network.
	ErrInconsistentNetwork = fmt.Errorf("%w: inconsistent network", ErrMalformedInput)
	// ErrInconsistentRedeemScript defines that redeem script differs from the known one.
	ErrInconsistentRedeemScript = fmt.Errorf("%w: redeem script inconsistent with prevOutScript", ErrMalformedInput)
	// ErrInconsistentWitnessScript defines that witness script differs from the known one.
	ErrInconsistentWitnessScript = fmt.Errorf("%w: witness script inconsistent with prevOutScript", ErrMalformedInput)
	// ErrWitnessValueMismatch defines that witness value differs from the known one.
	ErrWitnessValueMismatch = fmt.Errorf("%w: input did not match witness value", ErrMalformedInput)
	// ErrCoinbaseInput defines that input spends coinbase hash.
	ErrCoinbaseInput = fmt.Errorf("%w: coinbase inputs not supported", ErrMalformedInput)
	// ErrDuplicateInput defines that outpoint is already spent by another input.
	ErrDuplicateInput = fmt.Errorf("%w: duplicate previous output", ErrMalformedInput)
	// ErrNoOutputAtIndex defines that previous transaction has no output to spend.
	ErrNoOutputAtIndex = fmt.Errorf("%w: no output at index", ErrMalformedInput)
	// ErrInvalidTxID defines that transaction id is not a 32-byte hex string.
	ErrInvalidTxID = fmt.Errorf("%w: invalid transaction id", ErrMalformedInput)

	// ErrSignedInputsWouldBeInvalidated defines that operation changes data covered by recorded signatures.
	ErrSignedInputsWouldBeInvalidated = fmt.Errorf("%w: no, this would invalidate signatures", ErrInvariantViolation)
	// ErrTransactionNeedsOutputs defines that signature would commit to an empty output set.
	ErrTransactionNeedsOutputs = fmt.Errorf("%w: transaction needs outputs", ErrInvariantViolation)
	// ErrTooManySignatures defines that multi-sig input already has all required signatures.
	ErrTooManySignatures = fmt.Errorf("%w: too many signatures", ErrInvariantViolation)
	// ErrConsensusFailure defines that script nesting is invalid by consensus.
	ErrConsensusFailure = fmt.Errorf("%w: nesting is a consensus failure", ErrInvariantViolation)

	// ErrNoMatchingScript defines that address does not resolve to a locking script.
	ErrNoMatchingScript = fmt.Errorf("%w: no matching script", ErrClassificationFailure)
	// ErrNonStandardInput defines that input shape is unknown.
	ErrNonStandardInput = fmt.Errorf("%w: unknown input type", ErrClassificationFailure)
	// ErrUnsupportedScript defines that script shape can not be signed by the builder.
	ErrUnsupportedScript = fmt.Errorf("%w: script is not supported", ErrClassificationFailure)
	// ErrRedeemScriptRequired defines that P2SH input can not be signed without redeem script.
	ErrRedeemScriptRequired = fmt.Errorf("%w: prevOutScript is P2SH, requires redeem script", ErrClassificationFailure)
	// ErrWitnessScriptRequired defines that P2WSH input can not be signed without witness script.
	ErrWitnessScriptRequired = fmt.Errorf("%w: prevOutScript is P2WSH, requires witness script", ErrClassificationFailure)

	// ErrPublicKeyNotInRedeemScript defines that signer key can not sign for the input.
	ErrPublicKeyNotInRedeemScript = fmt.Errorf("%w: key pair cannot sign for this input", ErrSigningFailure)
	// ErrSignatureExists defines that the key has already signed the input.
	ErrSignatureExists = fmt.Errorf("%w: signature already exists", ErrSigningFailure)
	// ErrUncompressedWitnessKey defines that witness inputs require compressed keys.
	ErrUncompressedWitnessKey = fmt.Errorf("%w: BIP143 rejects uncompressed public keys in P2WPKH or P2WSH", ErrSigningFailure)
	// ErrInvalidSignature defines that signer returned unparsable signature.
	ErrInvalidSignature = fmt.Errorf("%w: signer returned invalid signature", ErrSigningFailure)

	// ErrNoInputAtIndex defines that input index is out of range.
	ErrNoInputAtIndex = fmt.Errorf("%w: no input at index", ErrIncompleteState)
	// ErrNotEnoughSignatures defines that input signature threshold is not met.
	ErrNotEnoughSignatures = fmt.Errorf("%w: not enough signatures", ErrIncompleteState)
	// ErrMissingWitnessValue defines that segwit input can not be signed without spent value.
	ErrMissingWitnessValue = fmt.Errorf("%w: witness value is required", ErrIncompleteState)
	// ErrNoInputs defines that transaction has no inputs.
	ErrNoInputs = fmt.Errorf("%w: transaction has no inputs", ErrIncompleteState)
	// ErrNoOutputs defines that transaction has no outputs.
	ErrNoOutputs = fmt.Errorf("%w: transaction has no outputs", ErrIncompleteState)

	// ErrMalformedTransaction defines that transaction bytes can not be decoded.
	ErrMalformedTransaction = fmt.Errorf("%w: malformed transaction", ErrFormatFailure)
)
