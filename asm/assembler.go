package asm

import (
	"fmt"

	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// Program is the output of Assemble: the three section cell slices and
// the label table, still section/cell-index relative (BuildLayout turns
// it into absolute addresses), plus accumulated .global names.
type Program struct {
	Text    []node.Cell
	BSS     []node.Cell
	Data    []node.Cell
	Labels  []node.Label
	Globals []string
}

// Errors collects every ErrorNode cell across all three sections, in the
// order assembly produced them.
func (p *Program) Errors() []node.Cell {
	var errs []node.Cell
	for _, sec := range [][]node.Cell{p.Text, p.BSS, p.Data} {
		for _, c := range sec {
			if c.Kind == node.KindError {
				errs = append(errs, c)
			}
		}
	}
	return errs
}

// HasErrors reports whether assembly produced any diagnostics.
func (p *Program) HasErrors() bool {
	return len(p.Errors()) > 0
}

// Assemble performs the single-pass token-stream-to-sections translation.
// It never aborts on a bad line: failures are embedded as ErrorNode cells
// in their section so line ordering and the multiplicity of diagnostics
// survive; callers check HasErrors before proceeding to BuildLayout.
func Assemble(toks []token.Token) *Program {
	p := &Program{}
	section := node.SectionText
	labelIndex := map[string]bool{}

	cells := func() *[]node.Cell {
		switch section {
		case node.SectionBSS:
			return &p.BSS
		case node.SectionData:
			return &p.Data
		default:
			return &p.Text
		}
	}

	addError := func(line int, format string, args ...any) {
		c := cells()
		*c = append(*c, node.ErrorCell(fmt.Sprintf(format, args...), section, line))
	}

	// First-writer-wins: a later redefinition of an existing label is
	// silently ignored, matching the reference parser's behavior.
	addLabel := func(name string, line int) {
		if labelIndex[name] {
			return
		}
		idx := len(*cells())
		labelIndex[name] = true
		p.Labels = append(p.Labels, node.Label{Name: name, Section: section, CellIndex: idx})
	}

	for len(toks) > 0 {
		t := toks[0]
		switch t.Kind {
		case token.NewLine, token.Comment:
			toks = toks[1:]

		case token.Error:
			// Warning-severity tokens mark conditions the lexer already
			// recovered from; only error-severity tokens become ErrorNodes.
			if t.Severity == token.SeverityError {
				addError(t.Pos.Line, "%s", t.Message)
			}
			toks = toks[1:]

		case token.EOF:
			toks = toks[1:]

		case token.Section:
			section = sectionFromIdent(t.Ident)
			toks = toks[1:]

		case token.Global:
			names, rest := parseGlobalList(toks[1:])
			p.Globals = append(p.Globals, names...)
			toks = rest

		case token.AsciiAsciz:
			dataCells, rest := decodeAsciiAsciz(t, toks[1:], section)
			c := cells()
			*c = append(*c, dataCells...)
			toks = rest

		case token.Skip:
			n := int(t.Value) / 4
			c := cells()
			for i := 0; i < n; i++ {
				*c = append(*c, node.DataWord(0, "CODE", section, t.Pos.Line))
			}
			toks = advanceToNewline(toks[1:])

		case token.Align, token.Cpu:
			toks = advanceToNewline(toks[1:])

		case token.Register:
			if colon := peek(toks[1:]); colon.Kind == token.Separator && colon.Sep == ':' {
				addLabel(t.Reg, t.Pos.Line)
				toks = toks[2:]
				continue
			}
			addError(t.Pos.Line, "unexpected token: %s", t.Kind)
			toks = advanceToNewline(toks[1:])

		case token.Instruction:
			if colon := peek(toks[1:]); colon.Kind == token.Separator && colon.Sep == ':' {
				addLabel(t.Ident, t.Pos.Line)
				toks = toks[2:]
				continue
			}
			if section == node.SectionBSS {
				addError(t.Pos.Line, "instructions are not allowed in .bss")
				toks = advanceToNewline(toks[1:])
				continue
			}
			dec, ok := lookupDecoder(t.Mnemonic)
			if !ok {
				addError(t.Pos.Line, "unsupported instruction: %q", t.Literal)
				toks = advanceToNewline(toks[1:])
				continue
			}
			cell, rest := dec(toks[1:], section, t.Pos.Line)
			c := cells()
			*c = append(*c, cell)
			toks = rest

		default:
			addError(t.Pos.Line, "unexpected token: %s", t.Kind)
			toks = advanceToNewline(toks[1:])
		}
	}

	return p
}

func sectionFromIdent(ident string) node.Section {
	switch ident {
	case ".bss":
		return node.SectionBSS
	case ".data":
		return node.SectionData
	default:
		return node.SectionText
	}
}

// parseGlobalList consumes a comma-separated list of identifier-like
// tokens (Instruction or Register, since any bare name lexes as one of
// those two kinds) following a .global directive.
func parseGlobalList(toks []token.Token) ([]string, []token.Token) {
	var names []string
	for {
		t := peek(toks)
		switch t.Kind {
		case token.Instruction:
			names = append(names, t.Ident)
			toks = toks[1:]
		case token.Register:
			names = append(names, t.Reg)
			toks = toks[1:]
		case token.Separator:
			if t.Sep == ',' {
				toks = toks[1:]
				continue
			}
			return names, advanceToNewline(toks)
		default:
			return names, advanceToNewline(toks)
		}
	}
}

// decodeAsciiAsciz handles .ascii/.asciz/.string: one or more comma
// separated string literals, concatenated after escape expansion (each
// string individually NUL-terminated for .asciz/.string, none for
// .ascii), then packed MSB-first into 32-bit words.
func decodeAsciiAsciz(directive token.Token, toks []token.Token, section node.Section) ([]node.Cell, []token.Token) {
	terminate := directive.Ident != ".ascii"
	var all []byte
	seen := false

	for {
		t := peek(toks)
		if t.Kind == token.Separator && t.Sep == ',' {
			toks = toks[1:]
			continue
		}
		// The lexer's unterminated-string warning precedes the repaired
		// literal; it does not interrupt the directive.
		if t.Kind == token.Error && t.Severity == token.SeverityWarning {
			toks = toks[1:]
			continue
		}
		if t.Kind != token.StringLiteral {
			break
		}
		seen = true
		s := applyStringEscapes(t.Raw)
		all = append(all, []byte(s)...)
		if terminate {
			all = append(all, 0)
		}
		toks = toks[1:]
	}

	if !seen {
		return []node.Cell{node.ErrorCell(
			fmt.Sprintf("expected string literal after %s", directive.Literal), section, directive.Pos.Line),
		}, advanceToNewline(toks)
	}
	if err := expectEndOfLine(toks); err != nil {
		return []node.Cell{node.ErrorCell(err.Error(), section, directive.Pos.Line)}, advanceToNewline(toks)
	}
	toks = advanceToNewline(toks)

	words := packBigEndianWords(all)
	cells := make([]node.Cell, len(words))
	for i, w := range words {
		cells[i] = node.DataWord(w, "CODE", section, directive.Pos.Line)
	}
	return cells, toks
}
