package asm

import (
	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// decodeMov handles MOV and MOVN. MOVN inverts the decoded source value
// before writing it to the destination register.
func decodeMov(negate bool) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		rd, rest, err := expectRegister(toks)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest, err = expectSeparator(rest, ',')
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}

		t := peek(rest)
		switch t.Kind {
		case token.Register:
			rm, r2, err := expectRegister(rest)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = r2
			if err := expectEndOfLine(rest); err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = advanceToNewline(rest)
			return node.Instruction(section, line, func(m node.Machine) *node.RunError {
				v := m.GetReg(rm)
				if negate {
					v = ^v
				}
				m.SetReg(rd, v)
				return nil
			}), rest
		case token.Immediate:
			imm, r2, err := expectImmediate(rest, 8)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = r2
			if err := expectEndOfLine(rest); err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = advanceToNewline(rest)
			v := uint32(imm)
			return node.Instruction(section, line, func(m node.Machine) *node.RunError {
				out := v
				if negate {
					out = ^out
				}
				m.SetReg(rd, out)
				return nil
			}), rest
		default:
			return errorCell(toks, section, line, "expected register or immediate, found %s", t.Kind)
		}
	}
}
