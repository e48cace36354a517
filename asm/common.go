// Package asm implements the assembler: it turns a token stream into
// sections of node.Cell plus a resolved label table, laying out .text,
// .bss and .data into a single memory image. Each instruction mnemonic is
// compiled here into a node.Behavior closure that mutates a node.Machine.
package asm

import (
	"fmt"

	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// decodeFunc compiles one instruction's operands into a Cell. It returns
// the remaining tokens after consuming through (and past) the
// instruction's terminating NewLine.
type decodeFunc func(toks []token.Token, section node.Section, line int) (node.Cell, []token.Token)

// decodeError is a sentinel used internally to synthesize an ErrorNode
// and skip to the next line, mirroring the reference decoders' shared
// failure path.
type decodeError struct {
	message string
}

func (e *decodeError) Error() string { return e.message }

func errorCell(toks []token.Token, section node.Section, line int, format string, args ...any) (node.Cell, []token.Token) {
	return node.ErrorCell(fmt.Sprintf(format, args...), section, line), advanceToNewline(toks)
}

// advanceToNewline skips to, and past, the next NewLine or EOF token.
func advanceToNewline(toks []token.Token) []token.Token {
	for len(toks) > 0 {
		t := toks[0]
		toks = toks[1:]
		if t.Kind == token.NewLine || t.Kind == token.EOF {
			return toks
		}
	}
	return toks
}

func peek(toks []token.Token) token.Token {
	if len(toks) == 0 {
		return token.Token{Kind: token.EOF}
	}
	return toks[0]
}

func peek2(toks []token.Token) token.Token {
	if len(toks) < 2 {
		return token.Token{Kind: token.EOF}
	}
	return toks[1]
}

// regIndex maps a normalized register name to its 0..15 index.
func regIndex(name string) (int, bool) {
	switch name {
	case "SP":
		return node.RegSP, true
	case "LR":
		return node.RegLR, true
	case "PC":
		return node.RegPC, true
	}
	if len(name) >= 2 && name[0] == 'R' {
		n := 0
		for i := 1; i < len(name); i++ {
			if name[i] < '0' || name[i] > '9' {
				return 0, false
			}
			n = n*10 + int(name[i]-'0')
		}
		if n >= 0 && n <= 12 {
			return n, true
		}
	}
	return 0, false
}

// expectRegister consumes a Register token and returns its index.
func expectRegister(toks []token.Token) (int, []token.Token, error) {
	t := peek(toks)
	if t.Kind != token.Register {
		return 0, toks, fmt.Errorf("expected register, found %s", t.Kind)
	}
	idx, ok := regIndex(t.Reg)
	if !ok {
		return 0, toks, fmt.Errorf("unknown register %q", t.Reg)
	}
	return idx, toks[1:], nil
}

// expectSeparator consumes a Separator token with the given literal byte.
func expectSeparator(toks []token.Token, lit byte) ([]token.Token, error) {
	t := peek(toks)
	if t.Kind != token.Separator || t.Sep != lit {
		return toks, fmt.Errorf("expected %q, found %s", string(lit), t.Kind)
	}
	return toks[1:], nil
}

// expectImmediate consumes an Immediate token and range-checks it against
// an unsigned maxBits-bit field.
func expectImmediate(toks []token.Token, maxBits uint) (int32, []token.Token, error) {
	t := peek(toks)
	if t.Kind != token.Immediate {
		return 0, toks, fmt.Errorf("expected immediate, found %s", t.Kind)
	}
	limit := int64(1) << maxBits
	if int64(t.Value) < 0 || int64(t.Value) >= limit {
		return 0, toks, fmt.Errorf("immediate out of range: value must be below %d but is %d", limit, t.Value)
	}
	return t.Value, toks[1:], nil
}

// regName is the inverse of regIndex, used to tag store provenance with
// the register's name (PUSH relies on this to mark "LR" frames for the
// stacktrace scan).
func regName(idx int) string {
	switch idx {
	case node.RegSP:
		return "SP"
	case node.RegLR:
		return "LR"
	case node.RegPC:
		return "PC"
	default:
		return fmt.Sprintf("R%d", idx)
	}
}

// expectEndOfLine requires the next token to be NewLine, EOF, or a
// trailing Comment (advanceToNewline then skips it with the rest of the
// line).
func expectEndOfLine(toks []token.Token) error {
	t := peek(toks)
	if t.Kind != token.NewLine && t.Kind != token.EOF && t.Kind != token.Comment {
		return fmt.Errorf("expected End of line, found %s", t.Kind)
	}
	return nil
}
