package asm

import (
	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// decodeShift handles LSL, LSR, ASR, ROR. Two operand forms:
//
//	Rd, Rm, #imm5   -- Rd = Rm shifted by the immediate count
//	Rd, Rs          -- Rd = Rd shifted by the register-held count (low
//	                   byte of Rs), matching the Thumb in-place encoding
//
// V is left untouched; N, Z and C (from the bit last shifted out) are
// updated.
func decodeShift(kind shiftKind) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		rd, rest, err := expectRegister(toks)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest, err = expectSeparator(rest, ',')
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}

		reg1, rest, err := expectRegister(rest)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}

		var srcReg int
		var countReg int
		var countImm uint32
		var useImm bool

		if peek(rest).Kind == token.Separator && peek(rest).Sep == ',' {
			rest = rest[1:]
			imm, r2, err := expectImmediate(rest, 5)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = r2
			srcReg, useImm, countImm = reg1, true, uint32(imm)
		} else {
			srcReg, countReg = rd, reg1
		}

		if err := expectEndOfLine(rest); err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = advanceToNewline(rest)

		return node.Instruction(section, line, func(m node.Machine) *node.RunError {
			count := countImm
			if !useImm {
				count = m.GetReg(countReg) & 0xFF
			}
			flags := m.GetFlags()
			result, carry := shiftWithCarry(m.GetReg(srcReg), uint(count), kind, flags.C)
			m.SetReg(rd, result)
			m.SetFlags(node.Flags{N: result&0x80000000 != 0, Z: result == 0, C: carry, V: flags.V})
			return nil
		}), rest
	}
}

// decodeMul handles MUL: `Rd, Rn, Rm` (Rd = Rn*Rm) or `Rd, Rm` (Rd =
// Rd*Rm). Writes the low 32 bits of the product and updates N, Z only.
func decodeMul(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
	rd, rest, err := expectRegister(toks)
	if err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	rest, err = expectSeparator(rest, ',')
	if err != nil {
		return errorCell(toks, section, line, "%v", err)
	}

	threeOperand := peek(rest).Kind == token.Register && peek2(rest).Kind == token.Separator && peek2(rest).Sep == ','
	rn := rd
	if threeOperand {
		rn, rest, err = expectRegister(rest)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest, err = expectSeparator(rest, ',')
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
	}

	rm, rest, err := expectRegister(rest)
	if err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	if err := expectEndOfLine(rest); err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	rest = advanceToNewline(rest)

	return node.Instruction(section, line, func(m node.Machine) *node.RunError {
		result := m.GetReg(rn) * m.GetReg(rm)
		m.SetReg(rd, result)
		flags := m.GetFlags()
		m.SetFlags(node.Flags{N: result&0x80000000 != 0, Z: result == 0, C: flags.C, V: flags.V})
		return nil
	}), rest
}
