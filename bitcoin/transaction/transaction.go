// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

// Package transaction implements bitcoin transaction model with its wire format and signature hashes.
package transaction

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/BoostyLabs/utxobuilder/internal/reverse"
)

const (
	// DefaultVersion is a version of newly created transaction.
	DefaultVersion uint32 = 1
	// DefaultSequence is a sequence of input that does not opt into any relative lock.
	DefaultSequence uint32 = wire.MaxTxInSequenceNum
	// witnessScaleFactor is a weight of non-witness byte.
	witnessScaleFactor = 4
)

var (
	// ErrMalformedTransaction defines that bytes are not a valid transaction encoding.
	ErrMalformedTransaction = errors.New("malformed transaction")
	// ErrIndexOutOfRange defines that input or output index does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Input spends an output of a previous transaction.
type Input struct {
	// Hash of the previous transaction in internal (not reversed) byte order.
	Hash     chainhash.Hash
	Index    uint32
	Sequence uint32
	Script   []byte
	Witness  [][]byte
}

// Output locks value to a script.
type Output struct {
	Value  uint64
	Script []byte
}

// Transaction is a bitcoin transaction.
type Transaction struct {
	Version  uint32
	LockTime uint32
	Inputs   []*Input
	Outputs  []*Output
}

// New is a constructor for Transaction.
func New() *Transaction {
	return &Transaction{Version: DefaultVersion}
}

// AddInput appends input with empty script and returns its index.
func (tx *Transaction) AddInput(hash chainhash.Hash, index, sequence uint32) int {
	tx.Inputs = append(tx.Inputs, &Input{
		Hash:     hash,
		Index:    index,
		Sequence: sequence,
	})

	return len(tx.Inputs) - 1
}

// AddOutput appends output and returns its index.
func (tx *Transaction) AddOutput(script []byte, value uint64) int {
	tx.Outputs = append(tx.Outputs, &Output{Value: value, Script: bytes.Clone(script)})
	return len(tx.Outputs) - 1
}

// SetInputScript sets unlocking script of the input.
func (tx *Transaction) SetInputScript(index int, script []byte) error {
	if index < 0 || index >= len(tx.Inputs) {
		return fmt.Errorf("%w: input %d", ErrIndexOutOfRange, index)
	}

	tx.Inputs[index].Script = bytes.Clone(script)
	return nil
}

// SetWitness sets witness stack of the input.
func (tx *Transaction) SetWitness(index int, witness [][]byte) error {
	if index < 0 || index >= len(tx.Inputs) {
		return fmt.Errorf("%w: input %d", ErrIndexOutOfRange, index)
	}

	tx.Inputs[index].Witness = cloneStack(witness)
	return nil
}

// IsCoinbase returns true if transaction has the single input spending nothing.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].IsCoinbase()
}

// IsCoinbase returns true if input references the all-zero hash.
func (in *Input) IsCoinbase() bool {
	return in.Hash == chainhash.Hash{}
}

// HasWitnesses returns true if any input carries witness data.
func (tx *Transaction) HasWitnesses() bool {
	for _, in := range tx.Inputs {
		if len(in.Witness) > 0 {
			return true
		}
	}

	return false
}

// Clone returns deep copy of the transaction.
func (tx *Transaction) Clone() *Transaction {
	clone := &Transaction{
		Version:  tx.Version,
		LockTime: tx.LockTime,
		Inputs:   make([]*Input, len(tx.Inputs)),
		Outputs:  make([]*Output, len(tx.Outputs)),
	}

	for i, in := range tx.Inputs {
		clone.Inputs[i] = &Input{
			Hash:     in.Hash,
			Index:    in.Index,
			Sequence: in.Sequence,
			Script:   bytes.Clone(in.Script),
			Witness:  cloneStack(in.Witness),
		}
	}

	for i, out := range tx.Outputs {
		clone.Outputs[i] = &Output{Value: out.Value, Script: bytes.Clone(out.Script)}
	}

	return clone
}

// Hash returns double SHA-256 of the encoding without witness data.
func (tx *Transaction) Hash() chainhash.Hash {
	return chainhash.DoubleHashH(tx.SerializeNoWitness())
}

// WitnessHash returns double SHA-256 of the full encoding.
func (tx *Transaction) WitnessHash() chainhash.Hash {
	return chainhash.DoubleHashH(tx.Serialize())
}

// ID returns transaction id: hex of the hash in reversed byte order.
func (tx *Transaction) ID() string {
	hash := tx.Hash()
	return hex.EncodeToString(reverse.Copy(hash[:]))
}

// Hex returns hex of the full encoding.
func (tx *Transaction) Hex() string {
	return hex.EncodeToString(tx.Serialize())
}

// ByteLength returns size of the encoding.
func (tx *Transaction) ByteLength(withWitness bool) int {
	withWitness = withWitness && tx.HasWitnesses()

	size := 8 + wire.VarIntSerializeSize(uint64(len(tx.Inputs))) + wire.VarIntSerializeSize(uint64(len(tx.Outputs)))
	if withWitness {
		size += 2
	}

	for _, in := range tx.Inputs {
		size += chainhash.HashSize + 4 + 4 + varSliceSize(in.Script)
		if withWitness {
			size += wire.VarIntSerializeSize(uint64(len(in.Witness)))
			for _, item := range in.Witness {
				size += varSliceSize(item)
			}
		}
	}

	for _, out := range tx.Outputs {
		size += 8 + varSliceSize(out.Script)
	}

	return size
}

// Weight returns transaction weight: base size * 3 + total size.
func (tx *Transaction) Weight() int {
	return tx.ByteLength(false)*(witnessScaleFactor-1) + tx.ByteLength(true)
}

// VirtualSize returns weight divided by 4, rounded up.
func (tx *Transaction) VirtualSize() int {
	return (tx.Weight() + witnessScaleFactor - 1) / witnessScaleFactor
}

// HashFromID parses transaction id (reversed hex) into hash.
func HashFromID(id string) (chainhash.Hash, error) {
	raw, err := hex.DecodeString(id)
	if err != nil {
		return chainhash.Hash{}, err
	}
	if len(raw) != chainhash.HashSize {
		return chainhash.Hash{}, fmt.Errorf("invalid transaction id length %d", len(raw))
	}

	var hash chainhash.Hash
	copy(hash[:], reverse.Bytes(raw))

	return hash, nil
}

func varSliceSize(b []byte) int {
	return wire.VarIntSerializeSize(uint64(len(b))) + len(b)
}

func cloneStack(stack [][]byte) [][]byte {
	if stack == nil {
		return nil
	}

	clone := make([][]byte, len(stack))
	for i, item := range stack {
		clone[i] = bytes.Clone(item)
		if clone[i] == nil {
			clone[i] = []byte{}
		}
	}

	return clone
}
