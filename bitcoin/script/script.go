// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

// Package script compiles, decompiles and disassembles bitcoin scripts.
//
// It never executes scripts; it only converts between the canonical byte
// encoding, a chunk list and the human-readable ASM form.
package script

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/txscript"

	"github.com/BoostyLabs/utxobuilder/internal/sequencereader"
)

var (
	// ErrMalformedScript defines that script bytes could not be decompiled.
	ErrMalformedScript = errors.New("malformed script")
	// ErrMalformedASM defines that human-readable script could not be parsed.
	ErrMalformedASM = errors.New("malformed script asm")
	// ErrNotPushOnly defines that script contains non push operations.
	ErrNotPushOnly = errors.New("script is not push only")
)

// Chunk is a single script element: either an operation or a data push.
// For data pushes Opcode holds the push operation the data was read with,
// it is ignored on compilation, where the minimal push is always used.
type Chunk struct {
	Opcode byte
	Data   []byte
}

// Op returns chunk for a plain operation.
func Op(opcode byte) Chunk {
	return Chunk{Opcode: opcode}
}

// Push returns chunk for a data push.
// Data which has a dedicated small-integer operation is returned as that operation.
func Push(data []byte) Chunk {
	if opcode, ok := minimalOpcode(data); ok {
		return Op(opcode)
	}

	return Chunk{Opcode: pushOpcode(len(data)), Data: data}
}

// IsPush returns true if chunk is a data push.
func (c Chunk) IsPush() bool {
	return c.Data != nil
}

// IsSmallInt returns true if chunk is one of OP_0, OP_1NEGATE, OP_1..OP_16.
func (c Chunk) IsSmallInt() bool {
	if c.IsPush() {
		return false
	}

	return c.Opcode == txscript.OP_0 || c.Opcode == txscript.OP_1NEGATE ||
		(c.Opcode >= txscript.OP_1 && c.Opcode <= txscript.OP_16)
}

// Compile encodes chunks into script bytes using minimal data pushes.
func Compile(chunks []Chunk) ([]byte, error) {
	builder := txscript.NewScriptBuilder()
	for _, chunk := range chunks {
		if chunk.IsPush() {
			// AddData would turn a single zero byte into OP_0.
			if len(chunk.Data) == 1 && chunk.Data[0] == 0 {
				builder.AddOps([]byte{txscript.OP_DATA_1, 0})
				continue
			}

			builder.AddData(chunk.Data)
			continue
		}

		builder.AddOp(chunk.Opcode)
	}

	script, err := builder.Script()
	if err != nil {
		return nil, errors.Join(ErrMalformedScript, err)
	}

	return script, nil
}

// MustCompile uses Compile, panics in case of error.
func MustCompile(chunks []Chunk) []byte {
	script, err := Compile(chunks)
	if err != nil {
		panic(err)
	}

	return script
}

// Decompile splits script into chunks.
// Data pushes which have a dedicated small-integer operation are returned as that operation.
func Decompile(script []byte) ([]Chunk, error) {
	chunks := make([]Chunk, 0, 8)
	tokenizer := txscript.MakeScriptTokenizer(0, script)
	for tokenizer.Next() {
		opcode := tokenizer.Opcode()
		if !isPushOpcode(opcode) {
			chunks = append(chunks, Op(opcode))
			continue
		}

		data := tokenizer.Data()
		if minimal, ok := minimalOpcode(data); ok {
			chunks = append(chunks, Op(minimal))
			continue
		}

		chunks = append(chunks, Chunk{Opcode: opcode, Data: append([]byte{}, data...)})
	}
	if err := tokenizer.Err(); err != nil {
		return nil, errors.Join(ErrMalformedScript, err)
	}

	return chunks, nil
}

// ToASM returns human-readable form of the script: operation names and hex encoded pushes.
func ToASM(script []byte) (string, error) {
	chunks, err := Decompile(script)
	if err != nil {
		return "", err
	}

	return ChunksToASM(chunks), nil
}

// ChunksToASM returns human-readable form of the chunks.
func ChunksToASM(chunks []Chunk) string {
	tokens := make([]string, len(chunks))
	for i, chunk := range chunks {
		if chunk.IsPush() {
			if minimal, ok := minimalOpcode(chunk.Data); ok {
				tokens[i] = OpcodeName(minimal)
				continue
			}

			tokens[i] = hex.EncodeToString(chunk.Data)
			continue
		}

		tokens[i] = OpcodeName(chunk.Opcode)
	}

	return strings.Join(tokens, " ")
}

// FromASM parses human-readable script into script bytes.
func FromASM(asm string) ([]byte, error) {
	chunks, err := ASMToChunks(asm)
	if err != nil {
		return nil, err
	}

	return Compile(chunks)
}

// MustFromASM uses FromASM, panics in case of error.
func MustFromASM(asm string) []byte {
	script, err := FromASM(asm)
	if err != nil {
		panic(err)
	}

	return script
}

// ASMToChunks parses human-readable script into chunks.
func ASMToChunks(asm string) ([]Chunk, error) {
	sr := sequencereader.New(strings.Fields(asm))
	chunks := make([]Chunk, 0, sr.Len())
	for sr.HasNext() {
		position := sr.Position()
		token, err := sr.Next()
		if err != nil {
			return nil, err
		}

		if opcode, ok := txscript.OpcodeByName[token]; ok {
			if isPushOpcode(opcode) {
				return nil, fmt.Errorf("%w: push operation %s at %d, use hex data instead", ErrMalformedASM, token, position)
			}

			chunks = append(chunks, Op(opcode))
			continue
		}

		data, err := hex.DecodeString(token)
		if err != nil {
			return nil, fmt.Errorf("%w: unknown token %q at %d", ErrMalformedASM, token, position)
		}

		chunks = append(chunks, Push(data))
	}

	return chunks, nil
}

// IsPushOnly returns true if every chunk pushes data or a small integer.
func IsPushOnly(chunks []Chunk) bool {
	for _, chunk := range chunks {
		if !chunk.IsPush() && !chunk.IsSmallInt() {
			return false
		}
	}

	return true
}

// ToStack converts push only chunks into stack items, as the interpreter would see them.
func ToStack(chunks []Chunk) ([][]byte, error) {
	stack := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		switch {
		case chunk.IsPush():
			stack[i] = chunk.Data
		case chunk.Opcode == txscript.OP_0:
			stack[i] = []byte{}
		case chunk.Opcode == txscript.OP_1NEGATE:
			stack[i] = []byte{0x81}
		case chunk.Opcode >= txscript.OP_1 && chunk.Opcode <= txscript.OP_16:
			stack[i] = []byte{chunk.Opcode - (txscript.OP_1 - 1)}
		default:
			return nil, ErrNotPushOnly
		}
	}

	return stack, nil
}

// FromStack compiles stack items into push only script.
func FromStack(stack [][]byte) ([]byte, error) {
	chunks := make([]Chunk, len(stack))
	for i, item := range stack {
		chunks[i] = Push(item)
	}

	return Compile(chunks)
}

// SmallInt returns value of OP_0, OP_1..OP_16 chunk.
func SmallInt(chunk Chunk) (int, bool) {
	switch {
	case chunk.IsPush():
		return 0, false
	case chunk.Opcode == txscript.OP_0:
		return 0, true
	case chunk.Opcode >= txscript.OP_1 && chunk.Opcode <= txscript.OP_16:
		return int(chunk.Opcode - (txscript.OP_1 - 1)), true
	}

	return 0, false
}

// SmallIntOp returns OP_0, OP_1..OP_16 operation for n.
func SmallIntOp(n int) (byte, error) {
	switch {
	case n == 0:
		return txscript.OP_0, nil
	case n >= 1 && n <= 16:
		return byte(txscript.OP_1 - 1 + n), nil
	}

	return 0, fmt.Errorf("%w: %d is not a small integer", ErrMalformedScript, n)
}

// isPushOpcode returns true for OP_DATA_1..OP_PUSHDATA4.
func isPushOpcode(opcode byte) bool {
	return opcode >= txscript.OP_DATA_1 && opcode <= txscript.OP_PUSHDATA4
}

// pushOpcode returns the minimal push operation for data of given size.
func pushOpcode(size int) byte {
	switch {
	case size < txscript.OP_PUSHDATA1:
		return byte(size)
	case size <= 0xff:
		return txscript.OP_PUSHDATA1
	case size <= 0xffff:
		return txscript.OP_PUSHDATA2
	}

	return txscript.OP_PUSHDATA4
}

// minimalOpcode returns small-integer operation which pushes the same data.
// A single zero byte is not minimized, OP_0 pushes an empty item.
func minimalOpcode(data []byte) (byte, bool) {
	switch {
	case len(data) == 0:
		return txscript.OP_0, true
	case len(data) != 1 || data[0] == 0:
		return 0, false
	case data[0] <= 16:
		return txscript.OP_1 - 1 + data[0], true
	case data[0] == 0x81:
		return txscript.OP_1NEGATE, true
	}

	return 0, false
}
