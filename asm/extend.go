package asm

import (
	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// decodeExtend handles SXTH, SXTB, UXTH, UXTB: `Rd, Rm`.
func decodeExtend(bits uint, signed bool) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		rd, rest, err := expectRegister(toks)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest, err = expectSeparator(rest, ',')
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
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
			v := zeroExtend(m.GetReg(rm), bits)
			if signed {
				v = signExtend(v, bits)
			}
			m.SetReg(rd, v)
			return nil
		}), rest
	}
}
