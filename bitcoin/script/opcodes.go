// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package script

import (
	"fmt"

	"github.com/btcsuite/btcd/txscript"
)

// opcodeAliases are alternative names which are never used for disassembly.
var opcodeAliases = map[string]struct{}{
	"OP_FALSE": {},
	"OP_TRUE":  {},
	"OP_NOP2":  {},
	"OP_NOP3":  {},
}

// opcodeNames maps operation to its canonical name.
var opcodeNames = func() map[byte]string {
	names := make(map[byte]string, len(txscript.OpcodeByName))
	for name, opcode := range txscript.OpcodeByName {
		if _, ok := opcodeAliases[name]; ok {
			continue
		}

		if existing, ok := names[opcode]; ok && existing < name {
			continue
		}

		names[opcode] = name
	}

	return names
}()

// OpcodeName returns canonical name of the operation, e.g. OP_CHECKSIG.
func OpcodeName(opcode byte) string {
	if name, ok := opcodeNames[opcode]; ok {
		return name
	}

	return fmt.Sprintf("OP_UNKNOWN%d", opcode)
}
