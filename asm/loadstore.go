package asm

import (
	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// decodeLoad handles LDR, LDRH, LDRB, LDRSH, LDRSB. plainLDR additionally
// accepts `=imm` and `=Label` operand forms (only LDR may use them).
func decodeLoad(width int, signExt, plainLDR bool) decodeFunc {
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
		switch {
		case plainLDR && t.Kind == token.LoadImmediate:
			v := uint32(t.Value)
			rest = rest[1:]
			if err := expectEndOfLine(rest); err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = advanceToNewline(rest)
			return node.Instruction(section, line, func(m node.Machine) *node.RunError {
				m.SetReg(rd, v)
				return nil
			}), rest

		case plainLDR && t.Kind == token.LoadLabel:
			name := t.Ident
			rest = rest[1:]
			if err := expectEndOfLine(rest); err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = advanceToNewline(rest)
			return node.Instruction(section, line, func(m node.Machine) *node.RunError {
				addr, ok := m.LabelAddress(name)
				if !ok {
					return node.Fatal("unknown label %q", name)
				}
				m.SetReg(rd, addr)
				return nil
			}), rest

		case t.Kind == token.Separator && t.Sep == '[':
			addr, r2, err := parseBracketOperand(rest, width)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = r2
			if err := expectEndOfLine(rest); err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			rest = advanceToNewline(rest)
			return node.Instruction(section, line, func(m node.Machine) *node.RunError {
				a := addr(m)
				v, rerr := m.Load(a, width, signExt)
				if rerr != nil {
					return rerr
				}
				m.SetReg(rd, v)
				return nil
			}), rest

		default:
			return errorCell(toks, section, line, "expected memory operand, found %s", t.Kind)
		}
	}
}

// decodeStore handles STR, STRH, STRB.
func decodeStore(width int) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		rt, rest, err := expectRegister(toks)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest, err = expectSeparator(rest, ',')
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}

		t := peek(rest)
		if t.Kind != token.Separator || t.Sep != '[' {
			return errorCell(toks, section, line, "expected memory operand, found %s", t.Kind)
		}
		addr, rest2, err := parseBracketOperand(rest, width)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = rest2
		if err := expectEndOfLine(rest); err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = advanceToNewline(rest)
		src := regName(rt)
		return node.Instruction(section, line, func(m node.Machine) *node.RunError {
			a := addr(m)
			return m.Store(a, m.GetReg(rt), width, src)
		}), rest
	}
}
