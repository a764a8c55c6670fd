// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"
	"math"

	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/wire"
)

// PSBT returns serialised PSBT of the builder state. Inputs carry spent output, scripts,
// recorded signatures and hash type, global unknowns map script types to input indexes.
func (b *TransactionBuilder) PSBT() ([]byte, error) {
	p, err := b.packet()
	if err != nil {
		return nil, err
	}

	w := bytes.NewBuffer(nil)
	err = p.Serialize(w)
	if err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// PSBTBase64 returns PSBT of the builder state encoded as base64.
func (b *TransactionBuilder) PSBTBase64() (string, error) {
	p, err := b.packet()
	if err != nil {
		return "", err
	}

	return p.B64Encode()
}

func (b *TransactionBuilder) packet() (*psbt.Packet, error) {
	p, err := psbt.NewFromUnsignedTx(b.unsignedTransaction().MsgTx())
	if err != nil {
		return nil, err
	}

	indexes := make(map[InputsHelpingKey][]byte, len(inputsHelpingKeys))
	for i, in := range b.inputs {
		input := &p.Inputs[i]
		if in.hasValue && len(in.prevOutScript) != 0 {
			input.WitnessUtxo = wire.NewTxOut(int64(in.value), bytes.Clone(in.prevOutScript))
		}
		input.RedeemScript = bytes.Clone(in.redeemScript)
		input.WitnessScript = bytes.Clone(in.witnessScript)
		if in.hashType != 0 {
			input.SighashType = in.hashType
		}

		for j, signature := range in.signatures {
			if len(signature) == 0 || j >= len(in.pubKeys) || len(in.pubKeys[j]) == 0 {
				continue
			}

			input.PartialSigs = append(input.PartialSigs, &psbt.PartialSig{
				PubKey:    bytes.Clone(in.pubKeys[j]),
				Signature: bytes.Clone(signature),
			})
		}

		if key, ok := InputsHelpingKeyOf(in.prevOutType); ok && i <= math.MaxUint8 {
			indexes[key] = append(indexes[key], byte(i))
		}
	}

	for _, key := range inputsHelpingKeys {
		if value, ok := indexes[key]; ok {
			p.Unknowns = append(p.Unknowns, &psbt.Unknown{Key: key.Bytes(), Value: value})
		}
	}

	return p, nil
}
