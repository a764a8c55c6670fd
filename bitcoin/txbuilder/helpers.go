// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package txbuilder

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil/psbt"

	"github.com/BoostyLabs/utxobuilder/bitcoin/payments"
)

// ExtractScriptTypeInputIndexesFromPSBT returns map with input script types and indexes to sign.
func ExtractScriptTypeInputIndexesFromPSBT(data []byte) (map[payments.ScriptType][]int, error) {
	p, err := psbt.NewFromRawBytes(bytes.NewBuffer(data), false)
	if err != nil {
		return nil, err
	}

	var result = make(map[payments.ScriptType][]int, len(p.Unknowns))
	for _, unknown := range p.Unknowns {
		if len(unknown.Key) != 1 {
			continue
		}

		key, err := InputsHelpingKeyFromBytes(unknown.Key)
		if err != nil {
			return nil, err
		}

		indexes := make([]int, len(unknown.Value))
		for idx, val := range unknown.Value {
			indexes[idx] = int(val)
		}
		result[key.ScriptType()] = indexes
	}

	return result, nil
}
