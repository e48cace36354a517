package asm

import (
	"fmt"

	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// addrFunc computes the effective byte address of a bracketed memory
// operand at run time.
type addrFunc func(m node.Machine) uint32

// parseBracketOperand parses `[Rn]`, `[Rn, Rm]` or `[Rn, #imm]` and
// returns a closure computing the effective address, scaling the
// immediate form to the LDR/STR addressing rules.
func parseBracketOperand(toks []token.Token, widthBits int) (addrFunc, []token.Token, error) {
	rest, err := expectSeparator(toks, '[')
	if err != nil {
		return nil, toks, err
	}
	rn, rest, err := expectRegister(rest)
	if err != nil {
		return nil, toks, err
	}

	t := peek(rest)
	if t.Kind == token.Separator && t.Sep == ']' {
		rest = rest[1:]
		return func(m node.Machine) uint32 { return m.GetReg(rn) }, rest, nil
	}

	rest, err = expectSeparator(rest, ',')
	if err != nil {
		return nil, toks, err
	}

	t = peek(rest)
	switch t.Kind {
	case token.Register:
		rm, r2, err := expectRegister(rest)
		if err != nil {
			return nil, toks, err
		}
		rest = r2
		rest, err = expectSeparator(rest, ']')
		if err != nil {
			return nil, toks, err
		}
		return func(m node.Machine) uint32 { return m.GetReg(rn) + m.GetReg(rm) }, rest, nil

	case token.Immediate:
		spRelative := rn == node.RegSP || rn == node.RegPC
		var maxBits uint
		var scale uint32
		switch {
		case spRelative && widthBits == 32:
			maxBits = 8
			scale = 4
		case spRelative:
			return nil, toks, fmt.Errorf("half/byte width with SP or PC base is not allowed")
		case widthBits == 32:
			maxBits = 5
			scale = 4
		case widthBits == 16:
			maxBits = 5
			scale = 2
		default:
			maxBits = 5
			scale = 1
		}
		imm, r2, err := expectImmediate(rest, maxBits)
		if err != nil {
			return nil, toks, err
		}
		rest = r2
		rest, err = expectSeparator(rest, ']')
		if err != nil {
			return nil, toks, err
		}
		offset := uint32(imm) * scale
		if spRelative && widthBits == 32 {
			return func(m node.Machine) uint32 { return m.GetReg(rn) + 4 + offset }, rest, nil
		}
		return func(m node.Machine) uint32 { return m.GetReg(rn) + offset }, rest, nil

	default:
		return nil, toks, fmt.Errorf("expected register or immediate inside [ ], found %s", t.Kind)
	}
}
