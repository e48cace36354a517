package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjbrennan/cm0asm/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexSimpleInstruction(t *testing.T) {
	toks := Lex("t.s", "MOV R0, #5\n")
	require.GreaterOrEqual(t, len(toks), 5)
	assert.Equal(t, token.Instruction, toks[0].Kind)
	assert.Equal(t, "MOV", toks[0].Mnemonic)
	assert.Equal(t, token.Register, toks[1].Kind)
	assert.Equal(t, "R0", toks[1].Reg)
	assert.Equal(t, token.Separator, toks[2].Kind)
	assert.EqualValues(t, ',', toks[2].Sep)
	assert.Equal(t, token.Immediate, toks[3].Kind)
	assert.EqualValues(t, 5, toks[3].Value)
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestLexLabelColon(t *testing.T) {
	toks := Lex("t.s", "loop: ADD R0, R0, #1\n")
	assert.Equal(t, token.Instruction, toks[0].Kind)
	assert.Equal(t, "loop", toks[0].Ident)
	assert.Equal(t, token.Separator, toks[1].Kind)
	assert.EqualValues(t, ':', toks[1].Sep)
}

func TestLexHexAndBinaryImmediates(t *testing.T) {
	toks := Lex("t.s", "MOV R0, #0xAB\nMOV R1, #0b101\n")
	var imms []int32
	for _, tk := range toks {
		if tk.Kind == token.Immediate {
			imms = append(imms, tk.Value)
		}
	}
	require.Len(t, imms, 2)
	assert.EqualValues(t, 0xAB, imms[0])
	assert.EqualValues(t, 5, imms[1])
}

func TestLexCharLiteralImmediate(t *testing.T) {
	toks := Lex("t.s", "MOV R0, #'A'\n")
	imm := toks[3]
	require.Equal(t, token.Immediate, imm.Kind)
	assert.EqualValues(t, 'A', imm.Value)
}

func TestLexCharLiteralEscape(t *testing.T) {
	toks := Lex("t.s", "MOV R0, #'\\n'\n")
	imm := toks[3]
	require.Equal(t, token.Immediate, imm.Kind)
	assert.EqualValues(t, '\n', imm.Value)
}

func TestLexComments(t *testing.T) {
	toks := Lex("t.s", "MOV R0, #1 // comment\n/* block */\nMOV R1, #2\n")
	var comments int
	for _, tk := range toks {
		if tk.Kind == token.Comment {
			comments++
		}
	}
	assert.Equal(t, 2, comments)
}

func TestLexSections(t *testing.T) {
	toks := Lex("t.s", ".data\nmsg: .asciz \"Hi\"\n")
	assert.Equal(t, token.Section, toks[0].Kind)
	assert.Equal(t, ".data", toks[0].Ident)
}

func TestLexGlobalAlignSkipCpu(t *testing.T) {
	toks := Lex("t.s", ".global _start\n.align 4\n.skip 8\n.cpu cortex-m0\n")
	assert.Equal(t, token.Global, toks[0].Kind)
	// find Align and Skip tokens
	var align, skip *token.Token
	for i := range toks {
		switch toks[i].Kind {
		case token.Align:
			align = &toks[i]
		case token.Skip:
			skip = &toks[i]
		}
	}
	require.NotNil(t, align)
	require.NotNil(t, skip)
	assert.EqualValues(t, 4, align.Value)
	assert.EqualValues(t, 8, skip.Value)
}

// TestLexRecoversFromUnterminatedCharLiteral checks that an unterminated
// character literal is reported as a lex error carrying its line number,
// and that lexing continues on the next line.
func TestLexRecoversFromUnterminatedCharLiteral(t *testing.T) {
	toks := Lex("t.s", "MOV R0, #'a\nMOV R1, #2\n")

	var errTok *token.Token
	for i := range toks {
		if toks[i].Kind == token.Error {
			errTok = &toks[i]
			break
		}
	}
	require.NotNil(t, errTok, "expected a lex error token")
	assert.Equal(t, 1, errTok.Pos.Line)

	// Lexing must continue and find the second line's tokens.
	var sawSecondMov bool
	for _, tk := range toks {
		if tk.Kind == token.Instruction && tk.Mnemonic == "MOV" && tk.Pos.Line == 2 {
			sawSecondMov = true
		}
	}
	assert.True(t, sawSecondMov, "expected lexing to resume on line 2")
}

func TestLexUnterminatedStringSynthesizesClosingQuote(t *testing.T) {
	toks := Lex("t.s", ".data\nmsg: .asciz \"unterminated")

	var warned bool
	for _, tk := range toks {
		if tk.Kind == token.Error && tk.Severity == token.SeverityWarning {
			warned = true
		}
	}
	assert.True(t, warned, "expected a recovery warning, not a hard error")
}

func TestLexAlwaysEndsWithEOF(t *testing.T) {
	toks := Lex("t.s", "MOV R0, #1\n")
	assert.Equal(t, token.EOF, toks[len(toks)-1].Kind)
}

func TestLexIsDeterministic(t *testing.T) {
	src := "MOV R0, #1\nADD R1, R0, #2\n"
	first := kinds(Lex("t.s", src))
	second := kinds(Lex("t.s", src))
	assert.Equal(t, first, second)
}
