package machine

import (
	"fmt"
	"strings"

	"github.com/tjbrennan/cm0asm/asm"
	"github.com/tjbrennan/cm0asm/lexer"
	"github.com/tjbrennan/cm0asm/node"
	"github.com/tjbrennan/cm0asm/token"
)

// Diagnostic is one lex- or assemble-time failure, carrying its source
// position.
type Diagnostic struct {
	FileName string
	Line     int
	Section  node.Section
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d: %s", d.FileName, d.Line, d.Message)
}

// Diagnostics accumulates Diagnostic values and implements error.
type Diagnostics []Diagnostic

func (d Diagnostics) Error() string {
	lines := make([]string, len(d))
	for i, diag := range d {
		lines[i] = diag.String()
	}
	return strings.Join(lines, "\n")
}

// Parse lexes and assembles source, then lays out memory and returns a
// runnable State. A non-nil Diagnostics return means parsing failed and
// the *State is nil: lex errors gate assembly, and any assemble error
// gates layout — a single lex error is reported without ever reaching
// the assembler.
func Parse(fileName, source string, stackSize uint32, startLabel string) (*State, Diagnostics) {
	toks := lexer.Lex(fileName, source)

	var diags Diagnostics
	for _, t := range toks {
		if t.Kind == token.Error && t.Severity == token.SeverityError {
			diags = append(diags, Diagnostic{FileName: fileName, Line: t.Pos.Line, Message: t.Message})
		}
	}
	if len(diags) > 0 {
		return nil, diags
	}

	prog := asm.Assemble(toks)
	if prog.HasErrors() {
		for _, c := range prog.Errors() {
			diags = append(diags, Diagnostic{FileName: fileName, Line: c.Line, Section: c.Section, Message: c.Message})
		}
		return nil, diags
	}

	lay := asm.BuildLayout(prog, stackSize, startLabel)
	return New(lay, fileName, strings.Split(source, "\n")), nil
}
