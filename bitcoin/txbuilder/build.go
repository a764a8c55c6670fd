// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
	"github.com/BoostyLabs/utxobuilder/bitcoin/transaction"
)

// Build returns fully signed transaction. Every input must meet its signature threshold.
func (b *TransactionBuilder) Build() (*transaction.Transaction, error) {
	return b.build(false)
}

// BuildIncomplete returns transaction with whatever signatures are recorded. Missing
// multi-sig signatures are rendered as OP_0, unsigned single-sig inputs keep the
// unlocking data they were added with.
func (b *TransactionBuilder) BuildIncomplete() (*transaction.Transaction, error) {
	return b.build(true)
}

func (b *TransactionBuilder) build(allowIncomplete bool) (*transaction.Transaction, error) {
	if !allowIncomplete {
		if len(b.inputs) == 0 {
			return nil, ErrNoInputs
		}
		if len(b.outputs) == 0 {
			return nil, ErrNoOutputs
		}
	}

	tx := b.unsignedTransaction()
	for i, in := range b.inputs {
		scriptSig, witness, ok, err := renderInput(in.prevOutType, in, allowIncomplete)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if !ok {
			if !allowIncomplete {
				if in.prevOutType == payments.NonStandard {
					return nil, fmt.Errorf("input %d: %w", i, ErrNonStandardInput)
				}

				return nil, fmt.Errorf("input %d: %w", i, ErrNotEnoughSignatures)
			}

			tx.Inputs[i].Script = bytes.Clone(in.script)
			tx.Inputs[i].Witness = cloneStack(in.witness)
			continue
		}

		tx.Inputs[i].Script = scriptSig
		tx.Inputs[i].Witness = witness
	}

	log.Debugf("transaction built: complete %t, inputs %d, outputs %d, vsize %d",
		!allowIncomplete, len(tx.Inputs), len(tx.Outputs), tx.VirtualSize())

	return tx, nil
}

// renderInput returns unlocking script and witness of the input rendered as scriptType.
// ok is false when there is not enough data to render anything.
func renderInput(scriptType payments.ScriptType, in *inputRecord, allowIncomplete bool) (scriptSig []byte, witness [][]byte, ok bool, err error) {
	stack, witness, ok, err := renderStack(scriptType, in, allowIncomplete)
	if err != nil || !ok {
		return nil, nil, ok, err
	}

	scriptSig, err = script.Compile(payments.StackToChunks(stack))
	if err != nil {
		return nil, nil, false, errors.Join(ErrUnsupportedScript, err)
	}

	return scriptSig, witness, true, nil
}

// renderStack returns unlocking data of the input as stack items pushed by unlocking script
// and witness stack.
func renderStack(scriptType payments.ScriptType, in *inputRecord, allowIncomplete bool) (stack, witness [][]byte, ok bool, err error) {
	switch scriptType {
	case payments.P2PKH:
		if len(in.pubKeys) == 0 || len(in.signatures) == 0 || len(in.signatures[0]) == 0 {
			return nil, nil, false, nil
		}

		return [][]byte{in.signatures[0], in.pubKeys[0]}, nil, true, nil
	case payments.P2WPKH:
		if len(in.pubKeys) == 0 || len(in.signatures) == 0 || len(in.signatures[0]) == 0 {
			return nil, nil, false, nil
		}

		return nil, [][]byte{in.signatures[0], in.pubKeys[0]}, true, nil
	case payments.P2PK:
		if len(in.signatures) == 0 || len(in.signatures[0]) == 0 {
			return nil, nil, false, nil
		}

		return [][]byte{in.signatures[0]}, nil, true, nil
	case payments.MultiSig:
		stack, err := renderMultiSig(in, allowIncomplete)
		if err != nil {
			return nil, nil, false, err
		}

		return stack, nil, true, nil
	case payments.P2SH:
		if len(in.redeemScript) == 0 {
			return nil, nil, false, nil
		}

		inner, witness, ok, err := renderStack(in.redeemScriptType, in, allowIncomplete)
		if err != nil || !ok {
			return nil, nil, ok, err
		}

		return append(inner, in.redeemScript), witness, true, nil
	case payments.P2WSH:
		if len(in.witnessScript) == 0 {
			return nil, nil, false, nil
		}

		inner, _, ok, err := renderStack(in.witnessScriptType, in, allowIncomplete)
		if err != nil || !ok {
			return nil, nil, ok, err
		}

		return nil, append(inner, in.witnessScript), true, nil
	default:
		return nil, nil, false, nil
	}
}

// renderMultiSig returns multi-sig unlocking stack. Complete inputs are always rendered
// without placeholders.
func renderMultiSig(in *inputRecord, allowIncomplete bool) ([][]byte, error) {
	count := in.signatureCount()
	if len(in.pubKeys) == 0 || in.maxSignatures == 0 {
		// threshold is unknown, signatures are kept as they were found.
		if !allowIncomplete {
			return nil, fmt.Errorf("%w: multi-sig threshold is unknown, have %d", ErrNotEnoughSignatures, count)
		}

		return payments.MultiSigStack(in.signatures, true), nil
	}

	switch {
	case count > in.maxSignatures:
		return nil, fmt.Errorf("%w: have %d, need %d", ErrTooManySignatures, count, in.maxSignatures)
	case count == in.maxSignatures:
		return payments.MultiSigStack(in.signatures, false), nil
	case !allowIncomplete:
		return nil, NewThresholdError(in.maxSignatures, count)
	default:
		return payments.MultiSigStack(in.signatures, true), nil
	}
}
