package asm

import (
	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// operand2 is a decoded Rm-or-#imm second source operand.
type operand2 struct {
	isImm bool
	reg   int
	imm   uint32
}

func (o operand2) value(m node.Machine) uint32 {
	if o.isImm {
		return o.imm
	}
	return m.GetReg(o.reg)
}

// parseArithOperands parses the shared `Rd, Rn, Rm|#imm` / `Rd, Rm|#imm`
// shape used by ADD/ADC/SUB/SBC/AND/EOR/ORR/BIC. spScaledThreeOp allows
// the three-operand Rn==SP 8-bit×4 immediate form (ADD only).
func parseArithOperands(toks []token.Token, spScaledThreeOp bool) (rd, rn int, op2 operand2, rest []token.Token, err error) {
	rd, rest, err = expectRegister(toks)
	if err != nil {
		return
	}
	rest, err = expectSeparator(rest, ',')
	if err != nil {
		return
	}

	threeOperand := false
	if peek(rest).Kind == token.Register && peek2(rest).Kind == token.Separator && peek2(rest).Sep == ',' {
		threeOperand = true
	}

	if threeOperand {
		rn, rest, err = expectRegister(rest)
		if err != nil {
			return
		}
		rest, err = expectSeparator(rest, ',')
		if err != nil {
			return
		}
	} else {
		rn = rd
	}

	t := peek(rest)
	switch t.Kind {
	case token.Register:
		var rm int
		rm, rest, err = expectRegister(rest)
		if err != nil {
			return
		}
		op2 = operand2{reg: rm}
	case token.Immediate:
		maxBits := uint(3)
		scale := uint32(1)
		switch {
		case !threeOperand && rn == node.RegSP:
			maxBits, scale = 7, 4
		case !threeOperand:
			maxBits = 8
		case threeOperand && spScaledThreeOp && rn == node.RegSP:
			maxBits, scale = 8, 4
		}
		var imm int32
		imm, rest, err = expectImmediate(rest, maxBits)
		if err != nil {
			return
		}
		op2 = operand2{isImm: true, imm: uint32(imm) * scale}
	default:
		err = unexpectedToken(t)
	}
	return
}

func unexpectedToken(t token.Token) error {
	return &decodeError{message: "unexpected token: " + t.Kind.String()}
}

// decodeArith handles ADD, ADC, SUB, SBC.
func decodeArith(sub, foldCarry, spScaledThreeOp bool) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		rd, rn, op2, rest, err := parseArithOperands(toks, spScaledThreeOp)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		if err := expectEndOfLine(rest); err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = advanceToNewline(rest)

		return node.Instruction(section, line, func(m node.Machine) *node.RunError {
			a := m.GetReg(rn)
			b := op2.value(m)
			flags := m.GetFlags()
			b = foldCarryValue(b, flags.C, foldCarry)
			var result uint32
			var newFlags node.Flags
			if sub {
				result, newFlags = subWithFlags(a, b)
			} else {
				result, newFlags = addWithFlags(a, b)
			}
			m.SetFlags(newFlags)
			m.SetReg(rd, result)
			return nil
		}), rest
	}
}

func foldCarryValue(b uint32, carrySet, applies bool) uint32 {
	if applies && carrySet {
		return b + 1
	}
	return b
}

// bitwiseOp identifies which of AND/EOR/ORR/BIC a decodeBitwise closure
// implements.
type bitwiseOp int

const (
	bitAND bitwiseOp = iota
	bitEOR
	bitORR
	bitBIC
)

// decodeBitwise handles AND, EOR, ORR, BIC. Immediate width is always 8
// bits; there is no SP-scaled three-operand form.
func decodeBitwise(op bitwiseOp) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
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

		var op2 operand2
		t := peek(rest)
		switch t.Kind {
		case token.Register:
			var rm int
			rm, rest, err = expectRegister(rest)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			op2 = operand2{reg: rm}
		case token.Immediate:
			var imm int32
			imm, rest, err = expectImmediate(rest, 8)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			op2 = operand2{isImm: true, imm: uint32(imm)}
		default:
			return errorCell(toks, section, line, "unexpected token: %s", t.Kind)
		}

		if err := expectEndOfLine(rest); err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = advanceToNewline(rest)

		return node.Instruction(section, line, func(m node.Machine) *node.RunError {
			a := m.GetReg(rn)
			b := op2.value(m)
			var result uint32
			switch op {
			case bitAND:
				result = a & b
			case bitEOR:
				result = a ^ b
			case bitORR:
				result = a | b
			case bitBIC:
				result = a &^ b
			}
			m.SetFlags(bitwiseFlags(result))
			m.SetReg(rd, result)
			return nil
		}), rest
	}
}

// compareOp identifies which of CMP/CMN/TST a decodeCompare closure
// implements.
type compareOp int

const (
	cmpCMP compareOp = iota
	cmpCMN
	cmpTST
)

// decodeCompare handles CMP, CMN, TST: a two-operand `Rn, Rm|#imm` form
// that updates flags but leaves Rn unmodified. A stray third operand is
// rejected by expectEndOfLine with "expected End of line".
func decodeCompare(op compareOp) decodeFunc {
	return func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
		rn, rest, err := expectRegister(toks)
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest, err = expectSeparator(rest, ',')
		if err != nil {
			return errorCell(toks, section, line, "%v", err)
		}

		var op2 operand2
		t := peek(rest)
		switch t.Kind {
		case token.Register:
			var rm int
			rm, rest, err = expectRegister(rest)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			op2 = operand2{reg: rm}
		case token.Immediate:
			var imm int32
			imm, rest, err = expectImmediate(rest, 8)
			if err != nil {
				return errorCell(toks, section, line, "%v", err)
			}
			op2 = operand2{isImm: true, imm: uint32(imm)}
		default:
			return errorCell(toks, section, line, "unexpected token: %s", t.Kind)
		}

		if err := expectEndOfLine(rest); err != nil {
			return errorCell(toks, section, line, "%v", err)
		}
		rest = advanceToNewline(rest)

		return node.Instruction(section, line, func(m node.Machine) *node.RunError {
			a := m.GetReg(rn)
			b := op2.value(m)
			switch op {
			case cmpCMP:
				_, flags := subWithFlags(a, b)
				m.SetFlags(flags)
			case cmpCMN:
				_, flags := addWithFlags(a, b)
				m.SetFlags(flags)
			case cmpTST:
				m.SetFlags(bitwiseFlags(a & b))
			}
			return nil
		}), rest
	}
}
