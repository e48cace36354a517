package asm

import (
	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// cond evaluates a branch condition against the status flags.
// condAlways is used by plain B.
type cond func(f node.Flags) bool

func condAlways(node.Flags) bool        { return true }
func condEQ(f node.Flags) bool          { return f.Z }
func condNE(f node.Flags) bool          { return !f.Z }
func condCS(f node.Flags) bool          { return f.C }
func condCC(f node.Flags) bool          { return !f.C }
func condMI(f node.Flags) bool          { return f.N }
func condPL(f node.Flags) bool          { return !f.N }
func condVS(f node.Flags) bool          { return f.V }
func condVC(f node.Flags) bool          { return !f.V }
func condHI(f node.Flags) bool          { return f.C && !f.Z }
func condLS(f node.Flags) bool          { return !f.C || f.Z }
func condGE(f node.Flags) bool          { return f.N == f.V }
func condLT(f node.Flags) bool          { return f.N != f.V }
func condGT(f node.Flags) bool          { return !f.Z && f.N == f.V }
func condLE(f node.Flags) bool          { return f.Z || f.N != f.V }

var conditions = map[string]cond{
	"B":   condAlways,
	"BEQ": condEQ, "BNE": condNE,
	"BCS": condCS, "BHS": condCS,
	"BCC": condCC, "BLO": condCC,
	"BMI": condMI, "BPL": condPL,
	"BVS": condVS, "BVC": condVC,
	"BHI": condHI, "BLS": condLS,
	"BGE": condGE, "BLT": condLT,
	"BGT": condGT, "BLE": condLE,
}

// decodeBranch handles B and all Bcc mnemonics: `Label`.
func decodeBranch(c cond) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		t := peek(toks)
		if t.Kind != token.Instruction {
			return errorCell(toks, section, line, "expected branch target label, found %s", t.Kind)
		}
		target := t.Ident
		rest := toks[1:]
		if err := expectEndOfLine(rest); err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = advanceToNewline(rest)

		return node.Instruction(section, line, func(m node.Machine) *node.RunError {
			if !c(m.GetFlags()) {
				return nil
			}
			addr, ok := m.LabelAddress(target)
			if !ok {
				return node.Fatal("unknown label %q", target)
			}
			m.SetReg(node.RegPC, addr-4)
			return nil
		}), rest
	}
}

// decodeBL handles BL `Label`: save the current PC (the BL instruction's
// own address, not yet advanced) into LR, then branch unconditionally.
// LR ends up pointing 4 bytes before the resume point; a callee returning
// via a raw PC=LR copy (as the print_char/print_int syscalls do) relies on
// the interpreter loop's unconditional PC+=4 to land on the instruction
// immediately after this BL.
func decodeBL(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
	t := peek(toks)
	if t.Kind != token.Instruction {
		return errorCell(toks, section, line, "expected branch target label, found %s", t.Kind)
	}
	target := t.Ident
	rest := toks[1:]
	if err := expectEndOfLine(rest); err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	rest = advanceToNewline(rest)

	return node.Instruction(section, line, func(m node.Machine) *node.RunError {
		addr, ok := m.LabelAddress(target)
		if !ok {
			return node.Fatal("unknown label %q", target)
		}
		m.SetReg(node.RegLR, m.GetReg(node.RegPC))
		m.SetReg(node.RegPC, addr-4)
		m.SetHasReturned(false)
		return nil
	}), rest
}

// decodeBX handles BX and BLX `Rm`.
func decodeBX(link bool) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		rm, rest, err := expectRegister(toks)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		if err := expectEndOfLine(rest); err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = advanceToNewline(rest)

		return node.Instruction(section, line, func(m node.Machine) *node.RunError {
			target := m.GetReg(rm)
			if link {
				m.SetReg(node.RegLR, m.GetReg(node.RegPC))
			}
			m.SetReg(node.RegPC, target-4)
			m.SetHasReturned(false)
			return nil
		}), rest
	}
}
