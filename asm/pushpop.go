package asm

import (
	"sort"

	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// parseRegList parses a brace-delimited, comma-separated register list
// and returns it sorted and deduplicated.
func parseRegList(toks []token.Token) ([]int, []token.Token, error) {
	rest, err := expectSeparator(toks, '{')
	if err != nil {
		return nil, toks, err
	}

	var regs []int
	for {
		r, r2, err := expectRegister(rest)
		if err != nil {
			return nil, toks, err
		}
		regs = append(regs, r)
		rest = r2

		t := peek(rest)
		if t.Kind == token.Separator && t.Sep == ',' {
			rest = rest[1:]
			continue
		}
		break
	}

	rest, err = expectSeparator(rest, '}')
	if err != nil {
		return nil, toks, err
	}

	seen := map[int]bool{}
	var uniq []int
	for _, r := range regs {
		if !seen[r] {
			seen[r] = true
			uniq = append(uniq, r)
		}
	}
	sort.Ints(uniq)
	return uniq, rest, nil
}

func decodePush(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
	regs, rest, err := parseRegList(toks)
	if err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	if err := expectEndOfLine(rest); err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	rest = advanceToNewline(rest)

	return node.Instruction(section, line, func(m node.Machine) *node.RunError {
		for _, r := range regs {
			sp := m.GetReg(node.RegSP) - 4
			if sp > m.StackSize()-4 {
				return node.Fatal("stack overflow: SP 0x%08X out of range", sp)
			}
			m.SetReg(node.RegSP, sp)
			if rerr := m.Store(sp, m.GetReg(r), 32, regName(r)); rerr != nil {
				return rerr
			}
		}
		return nil
	}), rest
}

func decodePop(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token) {
	regs, rest, err := parseRegList(toks)
	if err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	if err := expectEndOfLine(rest); err != nil {
		return errorCell(toks, section, line, "%v", err)
	}
	rest = advanceToNewline(rest)

	return node.Instruction(section, line, func(m node.Machine) *node.RunError {
		for i := len(regs) - 1; i >= 0; i-- {
			r := regs[i]
			sp := m.GetReg(node.RegSP)
			if sp+4 > m.StackSize() {
				return node.Fatal("stack underflow: SP 0x%08X out of range", sp)
			}
			v, rerr := m.Load(sp, 32, false)
			if rerr != nil {
				return rerr
			}
			m.SetReg(r, v)
			m.SetReg(node.RegSP, sp+4)
		}
		return nil
	}), rest
}
