// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package payments

import (
	"github.com/BoostyLabs/utxobuilder/bitcoin/script"
)

// ExtractP2SHInput splits pay to script hash unlocking script into inner unlocking chunks and redeem script.
func ExtractP2SHInput(scriptSig []byte) ([]script.Chunk, []byte, error) {
	chunks, err := script.Decompile(scriptSig)
	if err != nil {
		return nil, nil, err
	}

	if len(chunks) == 0 || !chunks[len(chunks)-1].IsPush() {
		return nil, nil, ErrTypeMismatch
	}

	return chunks[:len(chunks)-1], chunks[len(chunks)-1].Data, nil
}

// ExtractP2WSHWitness splits witness script hash stack into inner stack and witness script.
func ExtractP2WSHWitness(witness [][]byte) ([][]byte, []byte, error) {
	if len(witness) == 0 {
		return nil, nil, ErrTypeMismatch
	}

	return witness[:len(witness)-1], witness[len(witness)-1], nil
}

// ExtractMultiSigSignatures returns signatures of multi-sig unlocking chunks, skipping the leading dummy.
// OP_0 placeholders are returned as nil.
func ExtractMultiSigSignatures(chunks []script.Chunk) ([][]byte, error) {
	if len(chunks) == 0 || !isPlaceholder(chunks[0]) {
		return nil, ErrTypeMismatch
	}

	signatures := make([][]byte, 0, len(chunks)-1)
	for _, chunk := range chunks[1:] {
		switch {
		case isPlaceholder(chunk):
			signatures = append(signatures, nil)
		case chunk.IsPush():
			signatures = append(signatures, chunk.Data)
		default:
			return nil, ErrTypeMismatch
		}
	}

	return signatures, nil
}

// MultiSigStack builds unlocking stack for multi-sig: the dummy item followed by signatures.
// When allowIncomplete is set missing signatures are rendered as empty items,
// otherwise they are skipped.
func MultiSigStack(signatures [][]byte, allowIncomplete bool) [][]byte {
	stack := [][]byte{{}}
	for _, signature := range signatures {
		if len(signature) == 0 {
			if allowIncomplete {
				stack = append(stack, []byte{})
			}

			continue
		}

		stack = append(stack, signature)
	}

	return stack
}
