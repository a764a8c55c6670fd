// Copyright (C) 2024 Creditor Corp. Group.
// See LICENSE for copying information.

package transaction

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

const (
	witnessMarker byte = 0x00
	witnessFlag   byte = 0x01

	// minInputSize is the size of input with empty script.
	minInputSize = chainhash.HashSize + 4 + 1 + 4
	// minOutputSize is the size of output with empty script.
	minOutputSize = 8 + 1
)

// Serialize returns encoding with witness data when any input carries it.
func (tx *Transaction) Serialize() []byte {
	return tx.serialize(true)
}

// SerializeNoWitness returns legacy encoding.
func (tx *Transaction) SerializeNoWitness() []byte {
	return tx.serialize(false)
}

func (tx *Transaction) serialize(withWitness bool) []byte {
	withWitness = withWitness && tx.HasWitnesses()

	buf := bytes.NewBuffer(make([]byte, 0, tx.ByteLength(withWitness)))
	putUint32(buf, tx.Version)
	if withWitness {
		buf.WriteByte(witnessMarker)
		buf.WriteByte(witnessFlag)
	}

	putVarInt(buf, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		buf.Write(in.Hash[:])
		putUint32(buf, in.Index)
		putVarSlice(buf, in.Script)
		putUint32(buf, in.Sequence)
	}

	putVarInt(buf, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		putUint64(buf, out.Value)
		putVarSlice(buf, out.Script)
	}

	if withWitness {
		for _, in := range tx.Inputs {
			putVarInt(buf, uint64(len(in.Witness)))
			for _, item := range in.Witness {
				putVarSlice(buf, item)
			}
		}
	}

	putUint32(buf, tx.LockTime)

	return buf.Bytes()
}

// FromHex parses transaction from hex.
func FromHex(s string) (*Transaction, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Join(ErrMalformedTransaction, err)
	}

	return Deserialize(raw)
}

// Deserialize parses transaction from its encoding.
// The whole buffer must be consumed.
func Deserialize(raw []byte) (_ *Transaction, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrMalformedTransaction, err)
		}
	}()

	r := bytes.NewReader(raw)
	tx := new(Transaction)
	if tx.Version, err = readUint32(r); err != nil {
		return nil, err
	}

	hasWitnesses := len(raw) > 5 && raw[4] == witnessMarker && raw[5] == witnessFlag
	if hasWitnesses {
		if _, err = r.Seek(2, io.SeekCurrent); err != nil {
			return nil, err
		}
	}

	inputsCount, err := readCount(r, minInputSize)
	if err != nil {
		return nil, err
	}

	tx.Inputs = make([]*Input, 0, inputsCount)
	for i := 0; i < inputsCount; i++ {
		in := new(Input)
		if _, err = io.ReadFull(r, in.Hash[:]); err != nil {
			return nil, err
		}
		if in.Index, err = readUint32(r); err != nil {
			return nil, err
		}
		if in.Script, err = readVarSlice(r); err != nil {
			return nil, err
		}
		if in.Sequence, err = readUint32(r); err != nil {
			return nil, err
		}

		tx.Inputs = append(tx.Inputs, in)
	}

	outputsCount, err := readCount(r, minOutputSize)
	if err != nil {
		return nil, err
	}

	tx.Outputs = make([]*Output, 0, outputsCount)
	for i := 0; i < outputsCount; i++ {
		out := new(Output)
		if out.Value, err = readUint64(r); err != nil {
			return nil, err
		}
		if out.Script, err = readVarSlice(r); err != nil {
			return nil, err
		}

		tx.Outputs = append(tx.Outputs, out)
	}

	if hasWitnesses {
		for _, in := range tx.Inputs {
			itemsCount, err := readCount(r, 1)
			if err != nil {
				return nil, err
			}

			in.Witness = make([][]byte, 0, itemsCount)
			for j := 0; j < itemsCount; j++ {
				item, err := readVarSlice(r)
				if err != nil {
					return nil, err
				}

				in.Witness = append(in.Witness, item)
			}
		}

		if !tx.HasWitnesses() {
			return nil, errors.New("superfluous witness flag")
		}
	}

	if tx.LockTime, err = readUint32(r); err != nil {
		return nil, err
	}

	if r.Len() != 0 {
		return nil, fmt.Errorf("%d unexpected trailing bytes", r.Len())
	}

	return tx, nil
}

func putUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putUint64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

// putVarInt writes into buffer, which never fails.
func putVarInt(buf *bytes.Buffer, v uint64) {
	_ = wire.WriteVarInt(buf, 0, v)
}

func putVarSlice(buf *bytes.Buffer, b []byte) {
	_ = wire.WriteVarBytes(buf, 0, b)
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(b[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint64(b[:]), nil
}

// readCount reads element count and checks that the rest of the buffer may hold that many elements.
func readCount(r *bytes.Reader, minElementSize int) (int, error) {
	count, err := wire.ReadVarInt(r, 0)
	if err != nil {
		return 0, err
	}

	if count > uint64(r.Len()/minElementSize) {
		return 0, fmt.Errorf("count %d exceeds remaining %d bytes", count, r.Len())
	}

	return int(count), nil
}

func readVarSlice(r *bytes.Reader) ([]byte, error) {
	b, err := wire.ReadVarBytes(r, 0, uint32(r.Len()), "slice")
	if err != nil {
		return nil, err
	}
	if b == nil {
		b = []byte{}
	}

	return b, nil
}
